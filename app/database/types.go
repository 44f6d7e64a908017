package database

import (
	"time"
)

// Project source identifiers
const (
	SourceGithub    = "github"
	SourceDefillama = "defillama"
	SourceManual    = "manual"
	SourceGalxe     = "galxe"
	SourceLayer3    = "layer3"
	SourceZealy     = "zealy"
)

// Project lifecycle statuses. Transitions are forward-only:
// new -> analyzed -> archived.
const (
	StatusNew      = "new"
	StatusAnalyzed = "analyzed"
	StatusArchived = "archived"
)

// Project categories
const (
	CategoryDefi           = "defi"
	CategoryL1             = "l1"
	CategoryL2             = "l2"
	CategoryInfrastructure = "infrastructure"
	CategoryTooling        = "tooling"
	CategoryGaming         = "gaming"
	CategoryNFT            = "nft"
	CategorySocial         = "social"
	CategoryAI             = "ai"
	CategoryOther          = "other"
)

type Project struct {
	ID          string // Database UUID
	Slug        string // Deterministic identifier derived from external identity
	Name        string
	Description string
	Source      string
	SourceURL   string

	// GitHub metrics
	GithubURL          string
	GithubOrg          string
	GithubStars        int
	GithubForks        int
	GithubCommits30d   int
	GithubContributors int
	GithubCreatedAt    *time.Time
	GithubLanguage     string

	// DeFiLlama metrics
	TVL         *float64
	TVLChange7d *float64
	Chains      []string

	// Social links
	TwitterURL    string
	TwitterHandle string
	WebsiteURL    string
	DiscordURL    string

	// Scoring
	Category   string
	Score      float64 // 0-10
	Confidence float64 // 0-1

	// AI analysis, populated by the analysis-save path only
	Summary        string
	WhyEarly       string
	RedFlags       string
	Recommendation string

	Status     string
	IsFeatured bool

	DiscoveredAt time.Time
	AnalyzedAt   *time.Time
	UpdatedAt    time.Time
}

// Analysis is the write-back payload for a project analysis. Score,
// Confidence and Category are optional: when nil/empty the heuristic values
// already stored on the project are kept.
type Analysis struct {
	Summary        string
	WhyEarly       string
	RedFlags       string
	Recommendation string
	Category       string
	Score          *float64
	Confidence     *float64
}

// ProjectFilter narrows GetProjects results. Zero values mean "no filter".
type ProjectFilter struct {
	Status   string
	Category string
	Source   string
	MinScore float64
	Limit    int
	Offset   int
}

// Stats holds aggregate project counts
type Stats struct {
	Total      int
	ByStatus   map[string]int
	BySource   map[string]int
	ByCategory map[string]int
}

// CollectionLog records the outcome of a single collection pass
type CollectionLog struct {
	ID            string
	Source        string
	CollectorName string
	StartedAt     time.Time
	FinishedAt    *time.Time
	ProjectsFound int
	Success       bool
	ErrorMessage  string
}
