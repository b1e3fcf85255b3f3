package validate

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cooksheet/cooksheet/internal/rules"
	"github.com/cooksheet/cooksheet/internal/schema"
)

// Snapshot is the immutable input of one validation pass: the three
// normalized entity tables plus the rule set. The engine never mutates
// it.
type Snapshot struct {
	Clients []schema.Record
	Workers []schema.Record
	Tasks   []schema.Record
	Rules   []rules.Rule
}

// Engine runs validation passes over snapshots. It holds no state
// between passes; a given snapshot always produces the same report.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{logger: logger}
}

// ErrNilSnapshot is returned when Validate receives no snapshot.
var ErrNilSnapshot = errors.New("validate: nil snapshot")

// Validate runs one complete pass and returns the report. Independent
// check groups run concurrently; cancellation is honored cooperatively
// at component boundaries, so a cancelled context aborts the pass
// between checks and Validate returns the context's error.
func (e *Engine) Validate(ctx context.Context, snap *Snapshot) (*Report, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clients := decodeAll(snap.Clients, schema.DecodeClient)
	workers := decodeAll(snap.Workers, schema.DecodeWorker)
	tasks := decodeAll(snap.Tasks, schema.DecodeTask)

	// Fixed slots keep the merge order stable regardless of which
	// component finishes first.
	streams := make([][]Issue, 6)
	g, gctx := errgroup.WithContext(ctx)

	component := func(slot int, run func() []Issue) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			streams[slot] = run()
			return nil
		})
	}

	component(0, func() []Issue { return validateTable(schema.ClientSchema(), snap.Clients) })
	component(1, func() []Issue { return validateTable(schema.WorkerSchema(), snap.Workers) })
	component(2, func() []Issue { return validateTable(schema.TaskSchema(), snap.Tasks) })
	component(3, func() []Issue { return ValidateCrossEntity(clients, workers, tasks) })
	component(4, func() []Issue { return ValidateAggregate(workers, tasks, snap.Rules) })
	component(5, func() []Issue { return ValidateRules(snap.Rules, workers, tasks) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Issue
	for _, s := range streams {
		all = append(all, s...)
	}
	report := BuildReport(all)

	e.logger.Debug("validation pass complete",
		"clients", len(snap.Clients),
		"workers", len(snap.Workers),
		"tasks", len(snap.Tasks),
		"rules", len(snap.Rules),
		"errors", report.TotalErrors,
		"warnings", report.TotalWarnings,
		"valid", report.IsValid)
	return report, nil
}

// validateTable runs the row validator over every record and the
// dataset validator over the table as a whole.
func validateTable(sch *schema.EntitySchema, records []schema.Record) []Issue {
	var issues []Issue
	for i, rec := range records {
		issues = append(issues, ValidateRow(sch, i, rec)...)
	}
	issues = append(issues, ValidateDataset(sch, records)...)
	return issues
}

// decodeAll converts records to typed entities, keeping slice index
// aligned with row index. Decode failures leave a zero-valued entity in
// place; the row validator reports the underlying field problems.
func decodeAll[T any](records []schema.Record, decode func(schema.Record) (T, error)) []T {
	out := make([]T, len(records))
	for i, rec := range records {
		v, err := decode(rec)
		if err != nil {
			continue
		}
		out[i] = v
	}
	return out
}
