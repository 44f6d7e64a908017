package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/collector"
	"github.com/lysyi3m/alpha-scanner/app/database"
)

type fakeCollector struct {
	name    string
	source  string
	records []collector.RawProject
	err     error
	block   chan struct{} // when set, Collect waits until the channel closes

	mu    sync.Mutex
	calls int
}

func (f *fakeCollector) Name() string   { return f.name }
func (f *fakeCollector) Source() string { return f.source }

func (f *fakeCollector) Collect(ctx context.Context) ([]collector.RawProject, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return f.records, f.err
}

func (f *fakeCollector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]database.Project
	upserts  int
	failSlug string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]database.Project)}
}

func (r *fakeProjectRepo) UpsertProject(p database.Project) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Slug == r.failSlug {
		return false, errors.New("simulated write failure")
	}

	r.upserts++
	_, exists := r.projects[p.Slug]
	r.projects[p.Slug] = p
	return !exists, nil
}

func (r *fakeProjectRepo) GetProjectBySlug(slug string) (*database.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[slug]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *fakeProjectRepo) GetProjects(filter database.ProjectFilter) ([]database.Project, error) {
	return nil, nil
}

func (r *fakeProjectRepo) GetProjectCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.projects), nil
}

func (r *fakeProjectRepo) GetStats() (*database.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &database.Stats{
		Total:      len(r.projects),
		ByStatus:   map[string]int{},
		BySource:   map[string]int{},
		ByCategory: map[string]int{},
	}, nil
}

func (r *fakeProjectRepo) GetProjectsDiscoveredSince(since time.Time, limit int) ([]database.Project, error) {
	return nil, nil
}

func (r *fakeProjectRepo) SaveAnalysis(slug string, analysis database.Analysis) error {
	return nil
}

func (r *fakeProjectRepo) ArchiveProject(slug string) error { return nil }

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []database.CollectionLog
}

func (r *fakeLogRepo) InsertLog(log database.CollectionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeLogRepo) GetRecentLogs(limit int) ([]database.CollectionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs, nil
}

func (r *fakeLogRepo) lastLog() *database.CollectionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.logs) == 0 {
		return nil
	}
	return &r.logs[len(r.logs)-1]
}

func TestRunnerRun(t *testing.T) {
	c := &fakeCollector{
		name:   "fake",
		source: "github",
		records: []collector.RawProject{
			{Name: "A", Identity: "x/a", Description: "defi protocol", Source: "github"},
			{Name: "B", Identity: "x/b", Description: "dex aggregator", Source: "github"},
		},
	}
	projectRepo := newFakeProjectRepo()
	logRepo := &fakeLogRepo{}
	runner := NewRunner([]collector.Collector{c}, projectRepo, logRepo)

	result := runner.Run(context.Background(), "github")

	if result.Status != "ok" {
		t.Fatalf("Expected status ok, got '%s' (%s)", result.Status, result.Message)
	}
	if result.Collected == nil || *result.Collected != 2 {
		t.Errorf("Expected 2 collected, got %v", result.Collected)
	}
	if count, _ := projectRepo.GetProjectCount(); count != 2 {
		t.Errorf("Expected 2 projects persisted, got %d", count)
	}

	log := logRepo.lastLog()
	if log == nil {
		t.Fatal("Expected a collection log entry")
	}
	if !log.Success || log.ProjectsFound != 2 {
		t.Errorf("Expected successful log with 2 projects, got success=%v found=%d", log.Success, log.ProjectsFound)
	}
}

func TestRunnerRunUnknownSource(t *testing.T) {
	runner := NewRunner(nil, newFakeProjectRepo(), &fakeLogRepo{})

	result := runner.Run(context.Background(), "galxe")
	if result.Status != "error" {
		t.Errorf("Expected error for unknown source, got '%s'", result.Status)
	}
}

func TestRunnerRunEmptyCollect(t *testing.T) {
	c := &fakeCollector{name: "fake", source: "github"}
	runner := NewRunner([]collector.Collector{c}, newFakeProjectRepo(), &fakeLogRepo{})

	// Zero records is a success, not a failure
	result := runner.Run(context.Background(), "github")
	if result.Status != "ok" {
		t.Errorf("Expected status ok for empty collect, got '%s'", result.Status)
	}
	if result.Collected == nil || *result.Collected != 0 {
		t.Errorf("Expected 0 collected, got %v", result.Collected)
	}
}

func TestRunnerRunPartialOnCollectorError(t *testing.T) {
	c := &fakeCollector{
		name:   "fake",
		source: "github",
		records: []collector.RawProject{
			{Name: "A", Identity: "x/a", Source: "github"},
		},
		err: collector.ErrRateLimited,
	}
	projectRepo := newFakeProjectRepo()
	logRepo := &fakeLogRepo{}
	runner := NewRunner([]collector.Collector{c}, projectRepo, logRepo)

	result := runner.Run(context.Background(), "github")

	// The error is reported but the partial batch is still saved
	if result.Status != "error" {
		t.Errorf("Expected error status, got '%s'", result.Status)
	}
	if result.Collected == nil || *result.Collected != 1 {
		t.Errorf("Expected 1 partial record saved, got %v", result.Collected)
	}
	if count, _ := projectRepo.GetProjectCount(); count != 1 {
		t.Errorf("Expected partial project persisted, got %d", count)
	}

	log := logRepo.lastLog()
	if log == nil || log.Success {
		t.Error("Expected a failed collection log entry")
	}
}

func TestRunnerRunSkipsFailedUpserts(t *testing.T) {
	c := &fakeCollector{
		name:   "fake",
		source: "github",
		records: []collector.RawProject{
			{Name: "A", Identity: "x/a", Source: "github"},
			{Name: "B", Identity: "x/b", Source: "github"},
		},
	}
	projectRepo := newFakeProjectRepo()
	projectRepo.failSlug = "x-a-github"
	runner := NewRunner([]collector.Collector{c}, projectRepo, &fakeLogRepo{})

	result := runner.Run(context.Background(), "github")

	// A single bad record does not fail the pass
	if result.Status != "ok" {
		t.Errorf("Expected status ok, got '%s'", result.Status)
	}
	if result.Collected == nil || *result.Collected != 1 {
		t.Errorf("Expected 1 record saved after skip, got %v", result.Collected)
	}
}

func TestRunnerRunRefusesOverlap(t *testing.T) {
	block := make(chan struct{})
	c := &fakeCollector{name: "fake", source: "github", block: block}
	runner := NewRunner([]collector.Collector{c}, newFakeProjectRepo(), &fakeLogRepo{})

	started := make(chan struct{})
	done := make(chan Result, 1)
	go func() {
		close(started)
		done <- runner.Run(context.Background(), "github")
	}()

	<-started
	// Give the first pass time to take the lock
	for i := 0; i < 100 && c.callCount() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	overlap := runner.Run(context.Background(), "github")
	if overlap.Status != "error" {
		t.Errorf("Expected overlapping run to be refused, got '%s'", overlap.Status)
	}

	close(block)
	first := <-done
	if first.Status != "ok" {
		t.Errorf("Expected first run to complete ok, got '%s'", first.Status)
	}
}

func TestRunnerRunAll(t *testing.T) {
	github := &fakeCollector{
		name: "gh", source: "github",
		records: []collector.RawProject{{Name: "A", Identity: "x/a", Source: "github"}},
	}
	llama := &fakeCollector{
		name: "dl", source: "defillama",
		err: errors.New("upstream down"),
	}
	runner := NewRunner([]collector.Collector{github, llama}, newFakeProjectRepo(), &fakeLogRepo{})

	result := runner.RunAll(context.Background())

	// One failing source does not hide the other's records
	if result.Status != "error" {
		t.Errorf("Expected aggregate error status, got '%s'", result.Status)
	}
	if result.Collected == nil || *result.Collected != 1 {
		t.Errorf("Expected 1 record from the healthy source, got %v", result.Collected)
	}
	if github.callCount() != 1 || llama.callCount() != 1 {
		t.Error("Expected both sources to run")
	}
}

func TestRunnerSources(t *testing.T) {
	runner := NewRunner([]collector.Collector{
		&fakeCollector{name: "dl", source: "defillama"},
		&fakeCollector{name: "gh", source: "github"},
	}, newFakeProjectRepo(), &fakeLogRepo{})

	sources := runner.Sources()
	if len(sources) != 2 || sources[0] != "defillama" || sources[1] != "github" {
		t.Errorf("Expected sorted sources [defillama github], got %v", sources)
	}
}
