package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var _ ProjectRepository = (*ProjectRepositoryImpl)(nil)

// ProjectRepositoryImpl handles database operations for projects
type ProjectRepositoryImpl struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepositoryImpl {
	return &ProjectRepositoryImpl{db: db}
}

const projectColumns = `id, slug, name, description, source, source_url,
	github_url, github_org, github_stars, github_forks, github_commits_30d,
	github_contributors, github_created_at, github_language,
	tvl, tvl_change_7d, chains,
	twitter_url, twitter_handle, website_url, discord_url,
	category, score, confidence,
	summary, why_early, red_flags, recommendation,
	status, is_featured, discovered_at, analyzed_at, updated_at`

// UpsertProject inserts a project or refreshes the existing row with the same
// slug. The statement is a single atomic write; the invariants live in its
// guards:
//   - discovered_at and status are set on insert and never touched on update
//   - analysis fields (summary, why_early, red_flags, recommendation,
//     analyzed_at) are never written by a metrics refresh
//   - category, score and confidence are refreshed only while status = 'new'
//   - social links and descriptive fields never replace a non-empty value
//     with an empty one
//
// The preliminary existence check only feeds the created/updated counters; a
// concurrent insert between check and write still resolves to an update.
func (r *ProjectRepositoryImpl) UpsertProject(p Project) (bool, error) {
	var existingID string
	err := r.db.QueryRow(`SELECT id FROM projects WHERE slug = ?`, p.Slug).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check existing project: %w", err)
	}
	created := err == sql.ErrNoRows

	chainsJSON, err := json.Marshal(p.Chains)
	if err != nil {
		return false, fmt.Errorf("failed to marshal chains: %w", err)
	}

	now := time.Now().UTC()

	_, err = r.db.Exec(`
		INSERT INTO projects (
			id, slug, name, description, source, source_url,
			github_url, github_org, github_stars, github_forks, github_commits_30d,
			github_contributors, github_created_at, github_language,
			tvl, tvl_change_7d, chains,
			twitter_url, twitter_handle, website_url, discord_url,
			category, score, confidence, status, discovered_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			name = excluded.name,
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE projects.description END,
			source_url = CASE WHEN excluded.source_url != '' THEN excluded.source_url ELSE projects.source_url END,
			github_url = CASE WHEN excluded.github_url != '' THEN excluded.github_url ELSE projects.github_url END,
			github_org = CASE WHEN excluded.github_org != '' THEN excluded.github_org ELSE projects.github_org END,
			github_stars = excluded.github_stars,
			github_forks = excluded.github_forks,
			github_commits_30d = excluded.github_commits_30d,
			github_contributors = excluded.github_contributors,
			github_created_at = COALESCE(excluded.github_created_at, projects.github_created_at),
			github_language = CASE WHEN excluded.github_language != '' THEN excluded.github_language ELSE projects.github_language END,
			tvl = COALESCE(excluded.tvl, projects.tvl),
			tvl_change_7d = COALESCE(excluded.tvl_change_7d, projects.tvl_change_7d),
			chains = CASE WHEN excluded.chains != '[]' THEN excluded.chains ELSE projects.chains END,
			twitter_url = CASE WHEN projects.twitter_url = '' THEN excluded.twitter_url ELSE projects.twitter_url END,
			twitter_handle = CASE WHEN projects.twitter_handle = '' THEN excluded.twitter_handle ELSE projects.twitter_handle END,
			website_url = CASE WHEN projects.website_url = '' THEN excluded.website_url ELSE projects.website_url END,
			discord_url = CASE WHEN projects.discord_url = '' THEN excluded.discord_url ELSE projects.discord_url END,
			category = CASE WHEN projects.status = 'new' THEN excluded.category ELSE projects.category END,
			score = CASE WHEN projects.status = 'new' THEN excluded.score ELSE projects.score END,
			confidence = CASE WHEN projects.status = 'new' THEN excluded.confidence ELSE projects.confidence END,
			updated_at = excluded.updated_at
	`, uuid.NewString(), p.Slug, p.Name, p.Description, p.Source, p.SourceURL,
		p.GithubURL, p.GithubOrg, p.GithubStars, p.GithubForks, p.GithubCommits30d,
		p.GithubContributors, nullTime(p.GithubCreatedAt), p.GithubLanguage,
		nullFloat(p.TVL), nullFloat(p.TVLChange7d), string(chainsJSON),
		p.TwitterURL, p.TwitterHandle, p.WebsiteURL, p.DiscordURL,
		p.Category, p.Score, p.Confidence, StatusNew, now, now)

	if err != nil {
		return false, fmt.Errorf("failed to upsert project: %w", err)
	}

	return created, nil
}

func (r *ProjectRepositoryImpl) GetProjectBySlug(slug string) (*Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE slug = ?`, slug)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project by slug: %w", err)
	}

	return project, nil
}

func (r *ProjectRepositoryImpl) GetProjects(filter ProjectFilter) ([]Project, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.MinScore > 0 {
		conditions = append(conditions, "score >= ?")
		args = append(args, filter.MinScore)
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY score DESC, discovered_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

func (r *ProjectRepositoryImpl) GetProjectCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get project count: %w", err)
	}
	return count, nil
}

func (r *ProjectRepositoryImpl) GetStats() (*Stats, error) {
	stats := &Stats{
		ByStatus:   make(map[string]int),
		BySource:   make(map[string]int),
		ByCategory: make(map[string]int),
	}

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	groupings := []struct {
		column string
		dest   map[string]int
	}{
		{"status", stats.ByStatus},
		{"source", stats.BySource},
		{"category", stats.ByCategory},
	}

	for _, g := range groupings {
		rows, err := r.db.Query(`SELECT ` + g.column + `, COUNT(*) FROM projects GROUP BY ` + g.column)
		if err != nil {
			return nil, fmt.Errorf("failed to get counts by %s: %w", g.column, err)
		}

		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s count: %w", g.column, err)
			}
			g.dest[key] = count
		}

		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error iterating %s counts: %w", g.column, err)
		}
		rows.Close()
	}

	return stats, nil
}

func (r *ProjectRepositoryImpl) GetProjectsDiscoveredSince(since time.Time, limit int) ([]Project, error) {
	rows, err := r.db.Query(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE discovered_at >= ?
		ORDER BY score DESC
		LIMIT ?
	`, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recently discovered projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

// SaveAnalysis writes the analysis fields and moves the project to analyzed.
// An archived project keeps its status. Optional score/confidence/category
// values replace the heuristic numbers only when present.
func (r *ProjectRepositoryImpl) SaveAnalysis(slug string, analysis Analysis) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE projects SET
			summary = ?,
			why_early = ?,
			red_flags = ?,
			recommendation = ?,
			category = CASE WHEN ? != '' THEN ? ELSE category END,
			score = COALESCE(?, score),
			confidence = COALESCE(?, confidence),
			status = CASE WHEN status = ? THEN status ELSE ? END,
			analyzed_at = ?,
			updated_at = ?
		WHERE slug = ?
	`, analysis.Summary, analysis.WhyEarly, analysis.RedFlags, analysis.Recommendation,
		analysis.Category, analysis.Category,
		nullFloat(analysis.Score), nullFloat(analysis.Confidence),
		StatusArchived, StatusAnalyzed, now, now, slug)

	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *ProjectRepositoryImpl) ArchiveProject(slug string) error {
	result, err := r.db.Exec(`
		UPDATE projects SET status = ?, updated_at = ? WHERE slug = ?
	`, StatusArchived, time.Now().UTC(), slug)
	if err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	var githubCreatedAt, analyzedAt sql.NullTime
	var tvl, tvlChange sql.NullFloat64
	var chainsJSON string

	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Source, &p.SourceURL,
		&p.GithubURL, &p.GithubOrg, &p.GithubStars, &p.GithubForks, &p.GithubCommits30d,
		&p.GithubContributors, &githubCreatedAt, &p.GithubLanguage,
		&tvl, &tvlChange, &chainsJSON,
		&p.TwitterURL, &p.TwitterHandle, &p.WebsiteURL, &p.DiscordURL,
		&p.Category, &p.Score, &p.Confidence,
		&p.Summary, &p.WhyEarly, &p.RedFlags, &p.Recommendation,
		&p.Status, &p.IsFeatured, &p.DiscoveredAt, &analyzedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if githubCreatedAt.Valid {
		p.GithubCreatedAt = &githubCreatedAt.Time
	}
	if analyzedAt.Valid {
		p.AnalyzedAt = &analyzedAt.Time
	}
	if tvl.Valid {
		p.TVL = &tvl.Float64
	}
	if tvlChange.Valid {
		p.TVLChange7d = &tvlChange.Float64
	}
	if chainsJSON != "" {
		if err := json.Unmarshal([]byte(chainsJSON), &p.Chains); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chains: %w", err)
		}
	}

	return &p, nil
}

func collectProjects(rows *sql.Rows) ([]Project, error) {
	var projects []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
