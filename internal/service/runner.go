// Package service wraps the validation engine for long-running use: a
// supersede runner implementing "last snapshot wins" and a JSON HTTP
// surface. The engine stays a pure function; everything session-shaped
// lives here.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cooksheet/cooksheet/internal/state"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// ErrSuperseded is returned for a pass whose snapshot was replaced by a
// newer submission before its report could be delivered.
var ErrSuperseded = errors.New("service: pass superseded by newer snapshot")

// Validator runs one validation pass. *validate.Engine satisfies it.
type Validator interface {
	Validate(ctx context.Context, snap *validate.Snapshot) (*validate.Report, error)
}

// Runner serializes validation passes with last-snapshot-wins semantics:
// submitting a snapshot cancels any in-flight pass, and a pass that
// finishes after being replaced has its result dropped. At most one
// report per snapshot generation is ever delivered.
type Runner struct {
	engine Validator
	store  *state.Store
	logger *slog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *validate.Report
}

// NewRunner creates a runner. store may be nil to disable pass history;
// a nil logger disables logging.
func NewRunner(engine Validator, store *state.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{engine: engine, store: store, logger: logger}
}

// Submit validates the snapshot and blocks until its pass completes or
// is superseded. Any in-flight pass is cancelled first. Returns
// ErrSuperseded when a newer snapshot arrived before this pass's report
// could be delivered.
func (r *Runner) Submit(ctx context.Context, snap *validate.Snapshot, trigger state.Trigger) (*validate.Report, error) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	gen := r.generation
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	passID := r.recordStart(trigger)
	report, err := r.engine.Validate(runCtx, snap)

	r.mu.Lock()
	stale := gen != r.generation
	if !stale && err == nil {
		r.latest = report
	}
	r.mu.Unlock()

	if stale {
		r.recordFailure(passID, "superseded")
		r.logger.Debug("pass superseded", "generation", gen)
		return nil, ErrSuperseded
	}
	if err != nil {
		r.recordFailure(passID, err.Error())
		return nil, err
	}
	r.recordCompletion(passID, report)
	return report, nil
}

// LatestReport returns the most recently delivered report, if any.
func (r *Runner) LatestReport() (*validate.Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.latest != nil
}

func (r *Runner) recordStart(trigger state.Trigger) string {
	if r.store == nil {
		return ""
	}
	pass, err := r.store.CreatePass(trigger)
	if err != nil {
		r.logger.Warn("failed to record pass start", "error", err)
		return ""
	}
	return pass.ID
}

func (r *Runner) recordCompletion(passID string, report *validate.Report) {
	if r.store == nil || passID == "" {
		return
	}
	if err := r.store.CompletePass(passID, report); err != nil {
		r.logger.Warn("failed to record pass completion", "pass", passID, "error", err)
	}
}

func (r *Runner) recordFailure(passID, cause string) {
	if r.store == nil || passID == "" {
		return
	}
	if err := r.store.FailPass(passID, cause); err != nil {
		r.logger.Warn("failed to record pass failure", "pass", passID, "error", err)
	}
}
