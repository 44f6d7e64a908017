package project

import (
	"regexp"

	"github.com/lysyi3m/alpha-scanner/app/collector"
	"github.com/lysyi3m/alpha-scanner/app/database"
)

var twitterHandleRe = regexp.MustCompile(`(?:twitter\.com|x\.com)/([a-zA-Z0-9_]+)`)

// Normalize maps a raw adapter record onto the canonical project shape:
// deterministic slug, detected category, heuristic score and confidence.
func Normalize(raw collector.RawProject) database.Project {
	score, confidence := Score(raw)

	name := raw.Name
	if name == "" {
		name = "Unknown"
	}

	sourceURL := raw.SourceURL
	if sourceURL == "" {
		sourceURL = raw.GithubURL
	}

	websiteURL := raw.WebsiteURL

	return database.Project{
		Slug:        Slug(raw.Identity, raw.Source),
		Name:        name,
		Description: raw.Description,
		Source:      raw.Source,
		SourceURL:   sourceURL,

		GithubURL:          raw.GithubURL,
		GithubOrg:          raw.GithubOrg,
		GithubStars:        raw.GithubStars,
		GithubForks:        raw.GithubForks,
		GithubCommits30d:   raw.GithubCommits30d,
		GithubContributors: raw.GithubContributors,
		GithubCreatedAt:    raw.GithubCreatedAt,
		GithubLanguage:     raw.GithubLanguage,

		TVL:         raw.TVL,
		TVLChange7d: raw.TVLChange7d,
		Chains:      raw.Chains,

		TwitterURL:    raw.TwitterURL,
		TwitterHandle: TwitterHandle(raw.TwitterURL),
		WebsiteURL:    websiteURL,
		DiscordURL:    raw.DiscordURL,

		Category:   DetectCategory(raw),
		Score:      score,
		Confidence: confidence,
		Status:     database.StatusNew,
	}
}

// TwitterHandle extracts the account name from a twitter.com or x.com URL
func TwitterHandle(url string) string {
	if url == "" {
		return ""
	}
	if m := twitterHandleRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}
