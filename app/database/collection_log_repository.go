package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

var _ CollectionLogRepository = (*CollectionLogRepositoryImpl)(nil)

// CollectionLogRepositoryImpl handles database operations for collection logs
type CollectionLogRepositoryImpl struct {
	db *DB
}

func NewCollectionLogRepository(db *DB) *CollectionLogRepositoryImpl {
	return &CollectionLogRepositoryImpl{db: db}
}

func (r *CollectionLogRepositoryImpl) InsertLog(log CollectionLog) error {
	id := log.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO collection_logs (
			id, source, collector_name, started_at, finished_at,
			projects_found, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, log.Source, log.CollectorName, log.StartedAt.UTC(), nullTime(log.FinishedAt),
		log.ProjectsFound, log.Success, log.ErrorMessage)

	if err != nil {
		return fmt.Errorf("failed to insert collection log: %w", err)
	}

	return nil
}

func (r *CollectionLogRepositoryImpl) GetRecentLogs(limit int) ([]CollectionLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, source, collector_name, started_at, finished_at,
		       projects_found, success, error_message
		FROM collection_logs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection logs: %w", err)
	}
	defer rows.Close()

	var logs []CollectionLog
	for rows.Next() {
		var log CollectionLog
		var finishedAt sql.NullTime

		err := rows.Scan(&log.ID, &log.Source, &log.CollectorName, &log.StartedAt,
			&finishedAt, &log.ProjectsFound, &log.Success, &log.ErrorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection log row: %w", err)
		}

		if finishedAt.Valid {
			log.FinishedAt = &finishedAt.Time
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection log rows: %w", err)
	}

	return logs, nil
}
