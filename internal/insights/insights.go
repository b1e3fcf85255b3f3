// Package insights derives advisory analysis from a snapshot and its
// validation report: a quality score, a readiness grade, candidate
// automatic fixes, and data-shape suggestions. Everything here is
// read-only and deterministic; none of it affects report validity.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cooksheet/cooksheet/internal/depgraph"
	"github.com/cooksheet/cooksheet/internal/schema"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// Readiness grades whether a snapshot can be handed downstream.
type Readiness string

// Readiness grades.
const (
	ReadinessProductionReady   Readiness = "production_ready"
	ReadinessReadyWithWarnings Readiness = "ready_with_warnings"
	ReadinessNeedsFixes        Readiness = "needs_fixes"
)

// AutoFix is one suggested automatic remediation.
type AutoFix struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Suggestion is one data-shape observation with a suggested follow-up.
type Suggestion struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
	SuggestedRule string  `json:"suggested_rule"`
	Impact        string  `json:"impact"`
	Category      string  `json:"category"`
}

// Analysis bundles every insight for one snapshot/report pair.
type Analysis struct {
	QualityScore float64      `json:"quality_score"`
	Readiness    Readiness    `json:"readiness"`
	AutoFixes    []AutoFix    `json:"auto_fixes"`
	Suggestions  []Suggestion `json:"suggestions"`
}

// Analyze produces the full insight bundle.
func Analyze(snap *validate.Snapshot, report *validate.Report) *Analysis {
	return &Analysis{
		QualityScore: QualityScore(report),
		Readiness:    AssessReadiness(report),
		AutoFixes:    AutoFixes(report),
		Suggestions:  Suggestions(snap),
	}
}

// QualityScore condenses the report into a 0..1 score. Errors dominate:
// each costs a tenth; warnings only matter on otherwise-clean data and
// never push the score below 0.7.
func QualityScore(report *validate.Report) float64 {
	switch {
	case report.TotalErrors > 0:
		return math.Max(0.0, 1.0-float64(report.TotalErrors)*0.1)
	case report.TotalWarnings > 0:
		return math.Max(0.7, 1.0-float64(report.TotalWarnings)*0.05)
	default:
		return 1.0
	}
}

// AssessReadiness grades the report for downstream hand-off.
func AssessReadiness(report *validate.Report) Readiness {
	switch {
	case report.TotalErrors > 0:
		return ReadinessNeedsFixes
	case report.TotalWarnings > 0:
		return ReadinessReadyWithWarnings
	default:
		return ReadinessProductionReady
	}
}

// AutoFixes proposes automatic remediations for the error classes that
// have mechanical fixes. Order follows the report's error order.
func AutoFixes(report *validate.Report) []AutoFix {
	var fixes []AutoFix
	for _, is := range report.Errors {
		if is.Column == nil {
			continue
		}
		switch is.ErrorType {
		case validate.ErrMissingRequiredField:
			fixes = append(fixes, AutoFix{
				Type:        "auto_fill",
				Description: fmt.Sprintf("Auto-fill empty %s with a default value", *is.Column),
				Confidence:  0.8,
			})
		case validate.ErrInvalidType:
			fixes = append(fixes, AutoFix{
				Type:        "type_conversion",
				Description: fmt.Sprintf("Convert %s to the expected data type", *is.Column),
				Confidence:  0.9,
			})
		}
	}
	return fixes
}

// Suggestions analyzes the snapshot's data shape. Each analysis has a
// fixed position, so the suggestion list and its IDs are stable for a
// given snapshot.
func Suggestions(snap *validate.Snapshot) []Suggestion {
	if snap == nil {
		return nil
	}

	clients := decodeClients(snap.Clients)
	workers := decodeWorkers(snap.Workers)
	tasks := decodeTasks(snap.Tasks)

	var out []Suggestion
	add := func(s Suggestion) {
		s.ID = fmt.Sprintf("suggest_%03d", len(out)+1)
		out = append(out, s)
	}

	if s, ok := loadImbalance(workers); ok {
		add(s)
	}
	if s, ok := priorityInflation(tasks); ok {
		add(s)
	}
	if s, ok := longDurationTasks(tasks); ok {
		add(s)
	}
	if s, ok := dependencyChains(tasks); ok {
		add(s)
	}
	if s, ok := highBudgetClients(clients); ok {
		add(s)
	}
	if s, ok := industryConcentration(clients); ok {
		add(s)
	}
	if s, ok := skillInventory(workers, tasks); ok {
		add(s)
	}
	if s, ok := dataCompleteness(snap); ok {
		add(s)
	}

	if len(out) == 0 && len(snap.Clients)+len(snap.Workers)+len(snap.Tasks) > 0 {
		add(Suggestion{
			Type:  "general",
			Title: "Data Looks Healthy",
			Description: fmt.Sprintf("Processed %d clients, %d workers, %d tasks with no shape concerns",
				len(snap.Clients), len(snap.Workers), len(snap.Tasks)),
			Confidence:    1.0,
			SuggestedRule: "Review data periodically and add rules as constraints emerge",
			Impact:        "Keeps data integrity visible",
			Category:      "success",
		})
	}
	return out
}

func loadImbalance(workers []schema.Worker) (Suggestion, bool) {
	var loads []float64
	for _, w := range workers {
		if w.MaxLoad > 0 {
			loads = append(loads, float64(w.MaxLoad))
		}
	}
	if len(loads) < 2 {
		return Suggestion{}, false
	}
	mean, std := meanStddev(loads)
	if std <= mean*0.2 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "loadBalance",
		Title:         "Load Imbalance Detected",
		Description:   fmt.Sprintf("Worker capacity varies significantly (std: %.1f)", std),
		Confidence:    0.85,
		SuggestedRule: "Balance workload distribution across all workers",
		Impact:        "Could improve resource utilization",
		Category:      "optimization",
	}, true
}

func priorityInflation(tasks []schema.Task) (Suggestion, bool) {
	if len(tasks) == 0 {
		return Suggestion{}, false
	}
	high := 0
	for _, t := range tasks {
		if t.Priority == schema.PriorityHigh || t.Priority == schema.PriorityCritical {
			high++
		}
	}
	pct := float64(high) / float64(len(tasks))
	if pct <= 0.5 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "priority",
		Title:         "Priority Inflation Detected",
		Description:   fmt.Sprintf("%.0f%% of tasks marked High or Critical", pct*100),
		Confidence:    0.90,
		SuggestedRule: "Review and rebalance task priorities",
		Impact:        "Improves priority system effectiveness",
		Category:      "quality",
	}, true
}

func longDurationTasks(tasks []schema.Task) (Suggestion, bool) {
	var durations []float64
	for _, t := range tasks {
		if t.Duration > 0 {
			durations = append(durations, float64(t.Duration))
		}
	}
	if len(durations) == 0 {
		return Suggestion{}, false
	}
	mean, _ := meanStddev(durations)
	long := 0
	for _, d := range durations {
		if d > mean*1.5 {
			long++
		}
	}
	if long == 0 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "efficiency",
		Title:         "Long Duration Tasks Found",
		Description:   fmt.Sprintf("%d task(s) exceed 1.5x the average duration (%.1f)", long, mean),
		Confidence:    0.75,
		SuggestedRule: "Consider breaking down long tasks",
		Impact:        "Improves scheduling flexibility",
		Category:      "efficiency",
	}, true
}

// minChainDepth is the longest sequential dependency chain tolerated
// before flagging a scheduling bottleneck.
const minChainDepth = 4

func dependencyChains(tasks []schema.Task) (Suggestion, bool) {
	g := depgraph.New()
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		g.AddTask(t.TaskID)
		known[t.TaskID] = true
	}
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if known[dep] {
				g.AddDependency(t.TaskID, dep)
			}
		}
	}

	// Cyclic graphs are the validator's problem, not a shape insight.
	order, err := g.TopologicalOrder()
	if err != nil {
		return Suggestion{}, false
	}

	depth := make(map[string]int, len(order))
	longest := 0
	for _, id := range order {
		d := 1
		for _, dep := range g.Dependencies(id) {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[id] = d
		if d > longest {
			longest = d
		}
	}
	if longest < minChainDepth {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "scheduling",
		Title:         "Deep Dependency Chain Detected",
		Description:   fmt.Sprintf("Longest dependency chain spans %d tasks that must run sequentially", longest),
		Confidence:    0.80,
		SuggestedRule: "Add timing rules to phase long dependency chains",
		Impact:        "Reduces end-to-end completion time risk",
		Category:      "efficiency",
	}, true
}

func highBudgetClients(clients []schema.Client) (Suggestion, bool) {
	var budgets []float64
	for _, c := range clients {
		if c.Budget > 0 {
			budgets = append(budgets, c.Budget)
		}
	}
	if len(budgets) == 0 {
		return Suggestion{}, false
	}
	mean, _ := meanStddev(budgets)
	rich := 0
	for _, b := range budgets {
		if b > mean*1.2 {
			rich++
		}
	}
	if rich == 0 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "business_insight",
		Title:         "High-Value Clients Identified",
		Description:   fmt.Sprintf("%d client(s) have budgets 20%%+ above average", rich),
		Confidence:    0.85,
		SuggestedRule: "Prioritize high-budget clients for premium service",
		Impact:        "Maximizes revenue potential",
		Category:      "business",
	}, true
}

func industryConcentration(clients []schema.Client) (Suggestion, bool) {
	counts := make(map[string]int)
	total := 0
	for _, c := range clients {
		if c.Industry == "" {
			continue
		}
		counts[c.Industry]++
		total++
	}
	if len(counts) < 2 {
		return Suggestion{}, false
	}

	industries := make([]string, 0, len(counts))
	for ind := range counts {
		industries = append(industries, ind)
	}
	sort.Slice(industries, func(a, b int) bool {
		if counts[industries[a]] != counts[industries[b]] {
			return counts[industries[a]] > counts[industries[b]]
		}
		return industries[a] < industries[b]
	})

	top := industries[0]
	pct := float64(counts[top]) / float64(total)
	if pct <= 0.4 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "market_insight",
		Title:         "Industry Concentration Detected",
		Description:   fmt.Sprintf("%.0f%% of clients are in %s", pct*100, top),
		Confidence:    0.80,
		SuggestedRule: "Consider industry-specific workflows",
		Impact:        "Improves service specialization",
		Category:      "business",
	}, true
}

func skillInventory(workers []schema.Worker, tasks []schema.Task) (Suggestion, bool) {
	if len(workers) == 0 || len(tasks) == 0 {
		return Suggestion{}, false
	}
	unique := make(map[string]bool)
	for _, w := range workers {
		for _, s := range w.Skills {
			unique[strings.ToLower(s)] = true
		}
	}
	if len(unique) == 0 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "skill_matching",
		Title:         "Skill Inventory Available",
		Description:   fmt.Sprintf("Found %d unique skills across %d workers", len(unique), len(workers)),
		Confidence:    0.80,
		SuggestedRule: "Implement skill-based task assignment",
		Impact:        "Improves task-worker matching",
		Category:      "quality",
	}, true
}

func dataCompleteness(snap *validate.Snapshot) (Suggestion, bool) {
	total, empty := 0, 0
	count := func(sch *schema.EntitySchema, records []schema.Record) {
		for _, rec := range records {
			for _, f := range sch.Fields {
				total++
				if rec.IsEmpty(f.Name) {
					empty++
				}
			}
		}
	}
	count(schema.ClientSchema(), snap.Clients)
	count(schema.WorkerSchema(), snap.Workers)
	count(schema.TaskSchema(), snap.Tasks)

	if total == 0 {
		return Suggestion{}, false
	}
	completeness := float64(total-empty) / float64(total)
	if completeness >= 0.95 {
		return Suggestion{}, false
	}
	return Suggestion{
		Type:          "data_quality",
		Title:         "Data Completeness Issue",
		Description:   fmt.Sprintf("Data is %.1f%% complete (%d empty cells)", completeness*100, empty),
		Confidence:    0.95,
		SuggestedRule: "Fill missing data values",
		Impact:        "Improves data reliability",
		Category:      "quality",
	}, true
}

// meanStddev returns the mean and sample standard deviation.
func meanStddev(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if len(vals) < 2 {
		return mean, 0
	}
	varSum := 0.0
	for _, v := range vals {
		varSum += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(varSum / float64(len(vals)-1))
}

func decodeClients(records []schema.Record) []schema.Client {
	out := make([]schema.Client, 0, len(records))
	for _, rec := range records {
		c, err := schema.DecodeClient(rec)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func decodeWorkers(records []schema.Record) []schema.Worker {
	out := make([]schema.Worker, 0, len(records))
	for _, rec := range records {
		w, err := schema.DecodeWorker(rec)
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

func decodeTasks(records []schema.Record) []schema.Task {
	out := make([]schema.Task, 0, len(records))
	for _, rec := range records {
		t, err := schema.DecodeTask(rec)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
