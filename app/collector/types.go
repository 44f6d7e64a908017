package collector

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is returned by a collector that had to stop early because
// the upstream API exhausted its quota. Records gathered before the cutoff
// are still returned alongside it.
var ErrRateLimited = errors.New("upstream rate limit exhausted")

// Collector fetches raw project records from one external source.
// Implementations return whatever they gathered before a failure together
// with the error, so one failing source never blocks the others.
type Collector interface {
	Name() string
	Source() string
	Collect(ctx context.Context) ([]RawProject, error)
}

// RawProject is the intermediate record produced by a source adapter before
// normalization. Field names follow the originating API; absent metrics stay
// nil so the scorer can tell "zero" from "unknown".
type RawProject struct {
	Name        string
	Identity    string // stable external identity: "owner/repo" or protocol slug
	Description string
	Source      string
	SourceURL   string

	GithubURL          string
	GithubOrg          string
	GithubStars        int
	GithubForks        int
	GithubCommits30d   int
	GithubContributors int
	GithubCreatedAt    *time.Time
	GithubLanguage     string
	GithubTopics       []string

	TVL         *float64
	TVLChange7d *float64
	Chains      []string
	LlamaCategory string

	TwitterURL string
	WebsiteURL string
	DiscordURL string

	EarlySignals []string
}
