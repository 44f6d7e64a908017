package scheduler

import (
	"testing"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/collector"
)

func newTestScheduler() (*Scheduler, *fakeCollector, *fakeCollector) {
	github := &fakeCollector{name: "gh", source: "github"}
	llama := &fakeCollector{name: "dl", source: "defillama"}

	runner := NewRunner([]collector.Collector{github, llama}, newFakeProjectRepo(), &fakeLogRepo{})
	s := New(runner, newFakeProjectRepo(), nil, time.Hour, time.Hour)

	return s, github, llama
}

func TestSchedulerStartStop(t *testing.T) {
	s, _, _ := newTestScheduler()

	if s.IsRunning() {
		t.Error("Expected scheduler to start stopped")
	}
	if len(s.Jobs()) != 0 {
		t.Error("Expected no jobs while stopped")
	}

	s.Start()
	if !s.IsRunning() {
		t.Error("Expected scheduler running after Start")
	}

	jobs := s.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("Expected 3 jobs (two collections, one summary), got %d", len(jobs))
	}
	for _, j := range jobs {
		if j.NextRun == nil {
			t.Errorf("Expected next_run set for job '%s'", j.ID)
		}
		if j.Trigger == "" {
			t.Errorf("Expected trigger description for job '%s'", j.ID)
		}
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("Expected scheduler stopped after Stop")
	}
	if len(s.Jobs()) != 0 {
		t.Error("Expected no jobs after Stop")
	}
}

func TestSchedulerStartIdempotent(t *testing.T) {
	s, _, _ := newTestScheduler()

	s.Start()
	defer s.Stop()

	// Starting again must not duplicate jobs
	s.Start()
	if len(s.Jobs()) != 3 {
		t.Errorf("Expected 3 jobs after double Start, got %d", len(s.Jobs()))
	}
}

func TestSchedulerStopIdempotent(t *testing.T) {
	s, _, _ := newTestScheduler()

	s.Stop()
	if s.IsRunning() {
		t.Error("Expected stop on a stopped scheduler to be a no-op")
	}

	s.Start()
	s.Stop()
	s.Stop()
}

func TestSchedulerRunNow(t *testing.T) {
	s, github, llama := newTestScheduler()

	if err := s.RunNow(); err == nil {
		t.Error("Expected RunNow to fail while stopped")
	}

	s.Start()
	defer s.Stop()

	before := s.Jobs()

	if err := s.RunNow(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if github.callCount() > 0 && llama.callCount() > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if github.callCount() == 0 || llama.callCount() == 0 {
		t.Error("Expected both collection jobs to fire")
	}

	// Manual runs leave the recurring schedule untouched
	after := s.Jobs()
	for i := range before {
		if before[i].NextRun != nil && after[i].NextRun != nil &&
			!before[i].NextRun.Equal(*after[i].NextRun) {
			t.Errorf("Expected next_run unchanged for job '%s'", before[i].ID)
		}
	}
}

func TestSchedulerRestart(t *testing.T) {
	s, _, _ := newTestScheduler()

	s.Start()
	s.Stop()
	s.Start()
	defer s.Stop()

	if !s.IsRunning() {
		t.Error("Expected scheduler to run again after restart")
	}
	if len(s.Jobs()) != 3 {
		t.Errorf("Expected 3 jobs after restart, got %d", len(s.Jobs()))
	}
}
