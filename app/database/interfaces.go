package database

import (
	"time"
)

type ProjectRepository interface {
	// UpsertProject atomically inserts or refreshes a project keyed by slug.
	// The returned flag reports whether a new row was created.
	UpsertProject(p Project) (bool, error)

	GetProjectBySlug(slug string) (*Project, error)
	GetProjects(filter ProjectFilter) ([]Project, error)
	GetProjectCount() (int, error)
	GetStats() (*Stats, error)
	GetProjectsDiscoveredSince(since time.Time, limit int) ([]Project, error)

	SaveAnalysis(slug string, analysis Analysis) error
	ArchiveProject(slug string) error
}

type CollectionLogRepository interface {
	InsertLog(log CollectionLog) error
	GetRecentLogs(limit int) ([]CollectionLog, error)
}
