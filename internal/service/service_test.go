package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooksheet/cooksheet/internal/state"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// blockingValidator parks until released, so tests can hold a pass
// in flight deterministically.
type blockingValidator struct {
	engine  *validate.Engine
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingValidator() *blockingValidator {
	return &blockingValidator{
		engine:  validate.NewEngine(nil),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingValidator) Validate(ctx context.Context, snap *validate.Snapshot) (*validate.Report, error) {
	first := false
	b.once.Do(func() {
		first = true
		close(b.started)
	})
	if first {
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return b.engine.Validate(ctx, snap)
}

func TestRunner_DeliversReport(t *testing.T) {
	r := NewRunner(validate.NewEngine(nil), nil, nil)

	report, err := r.Submit(context.Background(), &validate.Snapshot{}, state.TriggerCLI)
	require.NoError(t, err)
	assert.True(t, report.IsValid)

	latest, ok := r.LatestReport()
	require.True(t, ok)
	assert.Same(t, report, latest)
}

func TestRunner_SupersedeCancelsInFlight(t *testing.T) {
	bv := newBlockingValidator()
	r := NewRunner(bv, nil, nil)

	type outcome struct {
		report *validate.Report
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		rep, err := r.Submit(context.Background(), &validate.Snapshot{}, state.TriggerHTTP)
		first <- outcome{rep, err}
	}()
	<-bv.started

	// Second submission cancels the first pass and wins.
	report, err := r.Submit(context.Background(), &validate.Snapshot{}, state.TriggerHTTP)
	require.NoError(t, err)
	assert.True(t, report.IsValid)

	select {
	case got := <-first:
		assert.ErrorIs(t, got.err, ErrSuperseded)
		assert.Nil(t, got.report)
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never returned")
	}
}

func TestRunner_RecordsHistory(t *testing.T) {
	store := state.NewStore(nil)
	require.NoError(t, store.Open(":memory:"))
	defer store.Close()

	r := NewRunner(validate.NewEngine(nil), store, nil)
	_, err := r.Submit(context.Background(), &validate.Snapshot{}, state.TriggerWatch)
	require.NoError(t, err)

	latest, err := store.GetLatestPass()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, state.PassStatusCompleted, latest.Status)
	assert.Equal(t, state.TriggerWatch, latest.Trigger)
	assert.True(t, latest.IsValid)
}

func TestRunner_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(validate.NewEngine(nil), nil, nil)
	_, err := r.Submit(ctx, &validate.Snapshot{}, state.TriggerCLI)
	assert.ErrorIs(t, err, context.Canceled)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := state.NewStore(nil)
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { store.Close() })

	runner := NewRunner(validate.NewEngine(nil), store, nil)
	srv := httptest.NewServer(NewServer(runner, store, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Validate(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"clients": [{"ClientID": "C1", "Name": "Acme"}],
		"workers": [{"WorkerID": "W1", "Name": "Dana", "Skills": "Go", "MaxLoad": 2}],
		"tasks": [{"TaskID": "T1", "ClientID": "C1", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go"}],
		"rules": []
	}`
	resp, err := http.Post(srv.URL+"/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Report struct {
			IsValid     bool `json:"is_valid"`
			TotalErrors int  `json:"total_errors"`
		} `json:"report"`
		QualityScore float64 `json:"data_quality_score"`
		Readiness    string  `json:"readiness_status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Report.IsValid)
	assert.Equal(t, 1.0, out.QualityScore)
	assert.Equal(t, "production_ready", out.Readiness)
}

func TestServer_ValidateFindsErrors(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"tasks": [{"TaskID": "T1", "ClientID": "C404", "Duration": 1, "Priority": "Low", "RequiredSkills": "Go"}]
	}`
	resp, err := http.Post(srv.URL+"/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Report struct {
			IsValid bool `json:"is_valid"`
		} `json:"report"`
		Readiness string `json:"readiness_status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Report.IsValid)
	assert.Equal(t, "needs_fixes", out.Readiness)
}

func TestServer_ValidateRejectsBadBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/validate", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ValidateRejectsUnknownRuleKind(t *testing.T) {
	srv := newTestServer(t)

	body := `{"rules": [{"id": "r1", "kind": "teleport"}]}`
	resp, err := http.Post(srv.URL+"/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Passes(t *testing.T) {
	srv := newTestServer(t)

	body := `{"tasks": []}`
	resp, err := http.Post(srv.URL+"/validate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/passes?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Passes []struct {
			ID      string `json:"id"`
			Status  string `json:"status"`
			Trigger string `json:"trigger"`
		} `json:"passes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Passes, 1)
	assert.Equal(t, "completed", out.Passes[0].Status)
	assert.Equal(t, "http", out.Passes[0].Trigger)
}

func TestServer_PassesRejectsBadLimit(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/passes?limit=zero")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
