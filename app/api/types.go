package api

import (
	"time"

	"github.com/lysyi3m/alpha-scanner/app/analysis"
	"github.com/lysyi3m/alpha-scanner/app/database"
	"github.com/lysyi3m/alpha-scanner/app/scheduler"
)

// Handler carries the dependencies for all HTTP handlers. Scheduler state is
// injected rather than global so tests can spin up isolated instances.
type Handler struct {
	projectRepo database.ProjectRepository
	logRepo     database.CollectionLogRepository
	runner      *scheduler.Runner
	scheduler   *scheduler.Scheduler
	analyzer    *analysis.Analyzer // nil when no OpenAI key is configured
	version     string
}

func NewHandler(projectRepo database.ProjectRepository, logRepo database.CollectionLogRepository,
	runner *scheduler.Runner, sched *scheduler.Scheduler, analyzer *analysis.Analyzer, version string) *Handler {
	return &Handler{
		projectRepo: projectRepo,
		logRepo:     logRepo,
		runner:      runner,
		scheduler:   sched,
		analyzer:    analyzer,
		version:     version,
	}
}

type projectResponse struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	SourceURL   string `json:"source_url,omitempty"`

	GithubURL          string     `json:"github_url,omitempty"`
	GithubOrg          string     `json:"github_org,omitempty"`
	GithubStars        int        `json:"github_stars"`
	GithubForks        int        `json:"github_forks"`
	GithubCommits30d   int        `json:"github_commits_30d"`
	GithubContributors int        `json:"github_contributors"`
	GithubCreatedAt    *time.Time `json:"github_created_at,omitempty"`
	GithubLanguage     string     `json:"github_language,omitempty"`

	TVL         *float64 `json:"tvl,omitempty"`
	TVLChange7d *float64 `json:"tvl_change_7d,omitempty"`
	Chains      []string `json:"chains,omitempty"`

	TwitterURL    string `json:"twitter_url,omitempty"`
	TwitterHandle string `json:"twitter_handle,omitempty"`
	WebsiteURL    string `json:"website_url,omitempty"`
	DiscordURL    string `json:"discord_url,omitempty"`

	Category   string  `json:"category"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`

	Summary        string `json:"summary,omitempty"`
	WhyEarly       string `json:"why_early,omitempty"`
	RedFlags       string `json:"red_flags,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`

	Status     string `json:"status"`
	IsFeatured bool   `json:"is_featured"`

	DiscoveredAt time.Time  `json:"discovered_at"`
	AnalyzedAt   *time.Time `json:"analyzed_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toProjectResponse(p database.Project) projectResponse {
	return projectResponse{
		Slug:               p.Slug,
		Name:               p.Name,
		Description:        p.Description,
		Source:             p.Source,
		SourceURL:          p.SourceURL,
		GithubURL:          p.GithubURL,
		GithubOrg:          p.GithubOrg,
		GithubStars:        p.GithubStars,
		GithubForks:        p.GithubForks,
		GithubCommits30d:   p.GithubCommits30d,
		GithubContributors: p.GithubContributors,
		GithubCreatedAt:    p.GithubCreatedAt,
		GithubLanguage:     p.GithubLanguage,
		TVL:                p.TVL,
		TVLChange7d:        p.TVLChange7d,
		Chains:             p.Chains,
		TwitterURL:         p.TwitterURL,
		TwitterHandle:      p.TwitterHandle,
		WebsiteURL:         p.WebsiteURL,
		DiscordURL:         p.DiscordURL,
		Category:           p.Category,
		Score:              p.Score,
		Confidence:         p.Confidence,
		Summary:            p.Summary,
		WhyEarly:           p.WhyEarly,
		RedFlags:           p.RedFlags,
		Recommendation:     p.Recommendation,
		Status:             p.Status,
		IsFeatured:         p.IsFeatured,
		DiscoveredAt:       p.DiscoveredAt,
		AnalyzedAt:         p.AnalyzedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type analysisRequest struct {
	Summary        string   `json:"summary"`
	WhyEarly       string   `json:"why_early"`
	RedFlags       string   `json:"red_flags"`
	Recommendation string   `json:"recommendation"`
	Category       string   `json:"category"`
	Score          *float64 `json:"score"`
	Confidence     *float64 `json:"confidence"`
}

var validStatuses = map[string]bool{
	database.StatusNew:      true,
	database.StatusAnalyzed: true,
	database.StatusArchived: true,
}

var validSources = map[string]bool{
	database.SourceGithub:    true,
	database.SourceDefillama: true,
	database.SourceManual:    true,
	database.SourceGalxe:     true,
	database.SourceLayer3:    true,
	database.SourceZealy:     true,
}

var validCategories = map[string]bool{
	database.CategoryDefi:           true,
	database.CategoryL1:             true,
	database.CategoryL2:             true,
	database.CategoryInfrastructure: true,
	database.CategoryTooling:        true,
	database.CategoryGaming:         true,
	database.CategoryNFT:            true,
	database.CategorySocial:         true,
	database.CategoryAI:             true,
	database.CategoryOther:          true,
}
