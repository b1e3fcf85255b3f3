package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIsEmpty(t *testing.T) {
	rec := Record{
		"Name":  "Acme",
		"Blank": "   ",
		"Nil":   nil,
		"Zero":  0,
	}

	assert.False(t, rec.IsEmpty("Name"))
	assert.True(t, rec.IsEmpty("Blank"))
	assert.True(t, rec.IsEmpty("Nil"))
	assert.True(t, rec.IsEmpty("Missing"))
	// Zero is a value, not an absence.
	assert.False(t, rec.IsEmpty("Zero"))
}

func TestRecordNumber(t *testing.T) {
	rec := Record{
		"Float":  12.5,
		"Int":    7,
		"Text":   " 42 ",
		"JSON":   json.Number("3"),
		"Junk":   "soon",
		"Struct": []string{"no"},
	}

	for name, want := range map[string]float64{
		"Float": 12.5,
		"Int":   7,
		"Text":  42,
		"JSON":  3,
	} {
		got, err := rec.Number(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := rec.Number("Junk")
	assert.Error(t, err)
	_, err = rec.Number("Struct")
	assert.Error(t, err)
	_, err = rec.Number("Missing")
	assert.Error(t, err)
}

func TestRecordInteger_RejectsFractions(t *testing.T) {
	rec := Record{"Duration": "2.5"}

	_, err := rec.Integer("Duration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")

	rec["Duration"] = "3"
	d, err := rec.Integer("Duration")
	require.NoError(t, err)
	assert.Equal(t, 3, d)
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  []string
		fails bool
	}{
		{name: "nil", in: nil, want: nil},
		{name: "string slice", in: []string{" Go ", "SQL"}, want: []string{"Go", "SQL"}},
		{name: "any slice", in: []any{"Go", 2, nil}, want: []string{"Go", "2"}},
		{name: "json array", in: `["Go", "SQL"]`, want: []string{"Go", "SQL"}},
		{name: "comma separated", in: "Go, SQL,Design", want: []string{"Go", "SQL", "Design"}},
		{name: "semicolon separated", in: "Go; SQL", want: []string{"Go", "SQL"}},
		{name: "single value", in: "Go", want: []string{"Go"}},
		{name: "blank", in: "   ", want: nil},
		{name: "truncated json", in: `["Go", "SQL"`, fails: true},
		{name: "json object", in: `{"skill": "Go"}`, fails: true},
		{name: "unsupported type", in: 42, fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList(tt.in)
			if tt.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeWorker(t *testing.T) {
	w, err := DecodeWorker(Record{
		"WorkerID":    "W1",
		"Name":        "Dana",
		"Skills":      "Go, SQL",
		"MaxLoad":     "3",
		"CurrentLoad": 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "W1", w.WorkerID)
	assert.Equal(t, []string{"Go", "SQL"}, w.Skills)
	assert.Equal(t, 3, w.MaxLoad)
	assert.Equal(t, 1, w.CurrentLoad)
}

func TestDecodeTask_BadCellsLeaveZeroValues(t *testing.T) {
	// Broken cells are dropped rather than failing the whole record;
	// the row validator reports them separately.
	task, err := DecodeTask(Record{
		"TaskID":         "T1",
		"ClientID":       "C1",
		"Duration":       "soon",
		"Priority":       "High",
		"RequiredSkills": `["Go"`,
	})
	require.NoError(t, err)

	assert.Equal(t, "T1", task.TaskID)
	assert.Zero(t, task.Duration)
	assert.Empty(t, task.RequiredSkills)
	assert.Equal(t, PriorityHigh, task.Priority)
}

func TestDecodeClient(t *testing.T) {
	c, err := DecodeClient(Record{
		"ClientID":      "C1",
		"Name":          "Acme",
		"Budget":        "2500.50",
		"PriorityLevel": "Medium",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, 2500.50, c.Budget)
	assert.Equal(t, PriorityMedium, c.PriorityLevel)
}
