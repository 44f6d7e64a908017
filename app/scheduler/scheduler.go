package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/database"
)

// Notifier delivers the daily summary to an external channel. Nil disables
// delivery; the summary is still logged.
type Notifier interface {
	SendDailySummary(total int, fresh []database.Project) error
}

// JobStatus is the externally visible state of one registered job
type JobStatus struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Trigger string     `json:"trigger"`
	NextRun *time.Time `json:"next_run"`
}

type job struct {
	id       string
	name     string
	interval time.Duration
	collects bool // collection jobs are the ones fired by RunNow
	run      func(ctx context.Context)

	mu      sync.Mutex
	nextRun time.Time
}

func (j *job) trigger() string {
	return "every " + j.interval.String()
}

func (j *job) setNextRun(t time.Time) {
	j.mu.Lock()
	j.nextRun = t
	j.mu.Unlock()
}

func (j *job) getNextRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nextRun
}

// Scheduler owns the recurring collection jobs. It is an explicit two-state
// machine (stopped, running): Start registers one recurring job per source
// plus the daily summary, Stop cancels pending firings, RunNow triggers the
// collection jobs once without touching their schedules. All state is held
// on the instance so tests can run isolated schedulers.
type Scheduler struct {
	runner            *Runner
	projectRepo       database.ProjectRepository
	notifier          Notifier
	githubInterval    time.Duration
	defillamaInterval time.Duration

	mu      sync.Mutex
	running bool
	jobs    []*job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(runner *Runner, projectRepo database.ProjectRepository, notifier Notifier,
	githubInterval, defillamaInterval time.Duration) *Scheduler {
	return &Scheduler{
		runner:            runner,
		projectRepo:       projectRepo,
		notifier:          notifier,
		githubInterval:    githubInterval,
		defillamaInterval: defillamaInterval,
	}
}

// Start moves the scheduler to running and launches one goroutine per job.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.jobs = s.buildJobs()
	s.running = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runJob(s.ctx, j)
	}

	slog.Info("Scheduler started", "jobs", len(s.jobs))
}

// Stop cancels all pending job firings and moves to stopped. An in-flight
// collection pass is abandoned to its context; no new firing starts.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.jobs = nil
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// RunNow fires all registered collection jobs once, immediately, without
// altering their next_run schedules.
func (s *Scheduler) RunNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}

	for _, j := range s.jobs {
		if !j.collects {
			continue
		}

		run := j.run
		name := j.name
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			slog.Info("Manual job run", "job", name)
			run(s.ctx)
		}()
	}

	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Jobs returns the status of all registered jobs; empty while stopped
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		next := j.getNextRun()
		status := JobStatus{
			ID:      j.id,
			Name:    j.name,
			Trigger: j.trigger(),
		}
		if !next.IsZero() {
			status.NextRun = &next
		}
		statuses = append(statuses, status)
	}

	return statuses
}

func (s *Scheduler) buildJobs() []*job {
	return []*job{
		{
			id:       "github_collection",
			name:     "GitHub Collection",
			interval: s.githubInterval,
			collects: true,
			run: func(ctx context.Context) {
				s.runner.Run(ctx, database.SourceGithub)
			},
		},
		{
			id:       "defillama_collection",
			name:     "DeFiLlama Collection",
			interval: s.defillamaInterval,
			collects: true,
			run: func(ctx context.Context) {
				s.runner.Run(ctx, database.SourceDefillama)
			},
		},
		{
			id:       "daily_summary",
			name:     "Daily Summary",
			interval: 24 * time.Hour,
			run:      s.runDailySummary,
		},
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	defer s.wg.Done()

	for {
		j.setNextRun(time.Now().UTC().Add(j.interval))

		timer := time.NewTimer(j.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.execute(ctx, j)
		}
	}
}

// execute contains a single firing; a panic or error inside one job must not
// take down the scheduler or the other jobs
func (s *Scheduler) execute(ctx context.Context, j *job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Job panicked", "job", j.name, "panic", r)
		}
	}()

	start := time.Now()
	j.run(ctx)
	slog.Info("Job finished", "job", j.name, "duration", time.Since(start).String())
}

func (s *Scheduler) runDailySummary(ctx context.Context) {
	stats, err := s.projectRepo.GetStats()
	if err != nil {
		slog.Error("Daily summary failed", "error", err)
		return
	}

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	fresh, err := s.projectRepo.GetProjectsDiscoveredSince(yesterday, 10)
	if err != nil {
		slog.Error("Daily summary failed", "error", err)
		return
	}

	slog.Info("Daily summary", "total", stats.Total, "new_24h", len(fresh))
	for i, p := range fresh {
		if i == 5 {
			break
		}
		slog.Info("Top new project", "name", p.Name, "score", p.Score, "category", p.Category)
	}

	if s.notifier != nil {
		if err := s.notifier.SendDailySummary(stats.Total, fresh); err != nil {
			slog.Error("Failed to deliver daily summary", "error", err)
		}
	}
}
