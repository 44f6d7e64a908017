package project

import (
	"math"
	"strings"

	"github.com/lysyi3m/alpha-scanner/app/collector"
)

// Score computes the provisional alpha score (0-10) and a confidence value
// (0-1) from the raw metrics. The score is a weighted sum over whatever
// signals the source provided; confidence grows with the number of signals
// actually present, so a record with no metrics lands at the floor rather
// than pretending certainty.
func Score(raw collector.RawProject) (float64, float64) {
	score := 5.0

	switch {
	case raw.GithubStars > 100:
		score += 2.0
	case raw.GithubStars > 50:
		score += 1.5
	case raw.GithubStars > 20:
		score += 1.0
	case raw.GithubStars > 10:
		score += 0.5
	}

	switch {
	case raw.GithubCommits30d > 50:
		score += 1.5
	case raw.GithubCommits30d > 20:
		score += 1.0
	case raw.GithubCommits30d > 10:
		score += 0.5
	}

	switch {
	case raw.GithubContributors > 5:
		score += 1.0
	case raw.GithubContributors > 2:
		score += 0.5
	}

	for _, signal := range raw.EarlySignals {
		if strings.Contains(signal, "testnet") || strings.Contains(signal, "devnet") {
			score += 0.5
			break
		}
	}

	if raw.TVL != nil && *raw.TVL > 0 && *raw.TVL < 1_000_000 {
		score += 0.5
	}
	if raw.TVLChange7d != nil && *raw.TVLChange7d > 10 {
		score += 0.5
	}

	if raw.TwitterURL != "" {
		score += 0.3
	}
	if raw.DiscordURL != "" {
		score += 0.2
	}

	score = clamp(round1(score), 0, 10)

	return score, confidence(raw)
}

// confidence counts how many of the expected signal groups the record
// actually carries. The floor is 0.1, the cap 0.9: a heuristic never claims
// full certainty.
func confidence(raw collector.RawProject) float64 {
	present := 0

	if raw.Description != "" {
		present++
	}
	if raw.GithubStars > 0 || raw.GithubForks > 0 {
		present++
	}
	if raw.GithubCommits30d > 0 {
		present++
	}
	if raw.GithubContributors > 0 {
		present++
	}
	if raw.GithubCreatedAt != nil {
		present++
	}
	if raw.TVL != nil {
		present++
	}
	if raw.TwitterURL != "" || raw.DiscordURL != "" || raw.WebsiteURL != "" {
		present++
	}
	if len(raw.EarlySignals) > 0 {
		present++
	}

	return clamp(0.1+0.1*float64(present), 0.1, 0.9)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
