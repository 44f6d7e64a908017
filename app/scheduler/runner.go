package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/collector"
	"github.com/lysyi3m/alpha-scanner/app/database"
	"github.com/lysyi3m/alpha-scanner/app/project"
)

// Result reports the outcome of a collection invocation to the caller. It is
// transient: the persistent record lives in collection_logs.
type Result struct {
	Status    string `json:"status"` // "ok" or "error"
	Message   string `json:"message,omitempty"`
	Collected *int   `json:"collected,omitempty"`
}

func okResult(collected int) Result {
	return Result{Status: "ok", Collected: &collected}
}

func errorResult(message string) Result {
	return Result{Status: "error", Message: message}
}

// Runner executes one collection pass per source: collect, normalize, score,
// upsert, and record the outcome. A per-source lock guarantees at most one
// active pass per source; an overlapping trigger is refused, not queued.
type Runner struct {
	collectors  map[string]collector.Collector
	locks       map[string]*sync.Mutex
	projectRepo database.ProjectRepository
	logRepo     database.CollectionLogRepository
}

func NewRunner(collectors []collector.Collector, projectRepo database.ProjectRepository,
	logRepo database.CollectionLogRepository) *Runner {
	r := &Runner{
		collectors:  make(map[string]collector.Collector),
		locks:       make(map[string]*sync.Mutex),
		projectRepo: projectRepo,
		logRepo:     logRepo,
	}

	for _, c := range collectors {
		r.collectors[c.Source()] = c
		r.locks[c.Source()] = &sync.Mutex{}
	}

	return r
}

// Sources returns the registered source names, sorted for stable output
func (r *Runner) Sources() []string {
	sources := make([]string, 0, len(r.collectors))
	for source := range r.collectors {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Run performs one collection pass for the named source. Upstream failures
// are contained here: the pass saves whatever the adapter gathered before
// failing and reports the error in the result, never as a propagated panic
// or a crashed job.
func (r *Runner) Run(ctx context.Context, source string) Result {
	c, ok := r.collectors[source]
	if !ok {
		return errorResult(fmt.Sprintf("unknown source: %s", source))
	}

	lock := r.locks[source]
	if !lock.TryLock() {
		return errorResult(fmt.Sprintf("collection for %s is already in progress", source))
	}
	defer lock.Unlock()

	startedAt := time.Now().UTC()
	slog.Info("Collection started", "source", source, "collector", c.Name())

	raws, collectErr := c.Collect(ctx)

	saved := 0
	created := 0
	for _, raw := range raws {
		p := project.Normalize(raw)

		isNew, err := r.projectRepo.UpsertProject(p)
		if err != nil {
			slog.Error("Failed to upsert project", "source", source, "slug", p.Slug, "error", err)
			continue
		}

		saved++
		if isNew {
			created++
		}
	}

	finishedAt := time.Now().UTC()
	logEntry := database.CollectionLog{
		Source:        source,
		CollectorName: c.Name(),
		StartedAt:     startedAt,
		FinishedAt:    &finishedAt,
		ProjectsFound: saved,
		Success:       collectErr == nil,
	}
	if collectErr != nil {
		logEntry.ErrorMessage = collectErr.Error()
	}
	if err := r.logRepo.InsertLog(logEntry); err != nil {
		slog.Error("Failed to record collection log", "source", source, "error", err)
	}

	if collectErr != nil {
		slog.Warn("Collection finished with error", "source", source,
			"duration", finishedAt.Sub(startedAt).String(), "saved", saved, "error", collectErr)
		result := errorResult(collectErr.Error())
		result.Collected = &saved
		return result
	}

	slog.Info("Collection completed", "source", source,
		"duration", finishedAt.Sub(startedAt).String(),
		"collected", saved, "new", created, "updated", saved-created)

	return okResult(saved)
}

// RunAll runs every registered source sequentially and aggregates the
// outcome. One failing source does not stop the rest.
func (r *Runner) RunAll(ctx context.Context) Result {
	total := 0
	var failures []string

	for _, source := range r.Sources() {
		result := r.Run(ctx, source)
		if result.Collected != nil {
			total += *result.Collected
		}
		if result.Status != "ok" {
			failures = append(failures, fmt.Sprintf("%s: %s", source, result.Message))
		}
	}

	if len(failures) > 0 {
		result := errorResult(fmt.Sprintf("%d source(s) failed: %v", len(failures), failures))
		result.Collected = &total
		return result
	}

	return okResult(total)
}
