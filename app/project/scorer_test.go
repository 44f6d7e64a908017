package project

import (
	"testing"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/collector"
)

func floatPtr(v float64) *float64 { return &v }

func TestScoreBaseline(t *testing.T) {
	// A record with no signals scores the neutral base
	score, confidence := Score(collector.RawProject{})
	if score != 5.0 {
		t.Errorf("Expected base score 5.0, got %f", score)
	}
	if confidence != 0.1 {
		t.Errorf("Expected floor confidence 0.1, got %f", confidence)
	}
}

func TestScoreStarTiers(t *testing.T) {
	tests := []struct {
		stars    int
		expected float64
	}{
		{0, 5.0},
		{10, 5.0},
		{11, 5.5},
		{21, 6.0},
		{51, 6.5},
		{101, 7.0},
	}

	for _, tt := range tests {
		score, _ := Score(collector.RawProject{GithubStars: tt.stars})
		if score != tt.expected {
			t.Errorf("Expected score %f for %d stars, got %f", tt.expected, tt.stars, score)
		}
	}
}

func TestScoreCommitAndContributorTiers(t *testing.T) {
	score, _ := Score(collector.RawProject{GithubCommits30d: 51, GithubContributors: 6})
	// base 5.0 + 1.5 commits + 1.0 contributors
	if score != 7.5 {
		t.Errorf("Expected score 7.5, got %f", score)
	}
}

func TestScoreTestnetSignalCountedOnce(t *testing.T) {
	score, _ := Score(collector.RawProject{
		EarlySignals: []string{"keyword:testnet", "keyword:devnet"},
	})
	// Multiple testnet/devnet signals still add the bonus once
	if score != 5.5 {
		t.Errorf("Expected score 5.5, got %f", score)
	}
}

func TestScoreTVLSignals(t *testing.T) {
	score, _ := Score(collector.RawProject{
		TVL:         floatPtr(500_000),
		TVLChange7d: floatPtr(25),
	})
	if score != 6.0 {
		t.Errorf("Expected score 6.0, got %f", score)
	}

	// TVL above the early threshold earns nothing
	score, _ = Score(collector.RawProject{TVL: floatPtr(5_000_000)})
	if score != 5.0 {
		t.Errorf("Expected score 5.0 for large TVL, got %f", score)
	}

	// Absent TVL is not the same as zero TVL
	score, _ = Score(collector.RawProject{TVL: floatPtr(0)})
	if score != 5.0 {
		t.Errorf("Expected score 5.0 for zero TVL, got %f", score)
	}
}

func TestScoreClampedToTen(t *testing.T) {
	score, _ := Score(collector.RawProject{
		GithubStars:        500,
		GithubCommits30d:   100,
		GithubContributors: 20,
		EarlySignals:       []string{"keyword:testnet"},
		TVL:                floatPtr(500_000),
		TVLChange7d:        floatPtr(50),
		TwitterURL:         "https://twitter.com/project",
		DiscordURL:         "https://discord.gg/project",
	})
	if score > 10 {
		t.Errorf("Expected score clamped to 10, got %f", score)
	}
}

func TestConfidenceGrowsWithSignals(t *testing.T) {
	created := time.Now()

	_, sparse := Score(collector.RawProject{Description: "a defi protocol"})
	if sparse != 0.2 {
		t.Errorf("Expected confidence 0.2 for one signal group, got %f", sparse)
	}

	_, rich := Score(collector.RawProject{
		Description:        "a defi protocol",
		GithubStars:        50,
		GithubCommits30d:   10,
		GithubContributors: 3,
		GithubCreatedAt:    &created,
		TVL:                floatPtr(100_000),
		TwitterURL:         "https://twitter.com/project",
		EarlySignals:       []string{"low_stars"},
	})
	if rich != 0.9 {
		t.Errorf("Expected confidence capped at 0.9 with all signal groups, got %f", rich)
	}

	if rich <= sparse {
		t.Errorf("Expected confidence to grow with signals, got sparse=%f rich=%f", sparse, rich)
	}
}
