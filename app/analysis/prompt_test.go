package analysis

import (
	"strings"
	"testing"

	"github.com/lysyi3m/alpha-scanner/app/database"
)

func TestBuildPrompt(t *testing.T) {
	tvl := 250_000.0
	p := &database.Project{
		Name:        "Tiny Swap",
		Description: "Concentrated liquidity DEX",
		Source:      database.SourceGithub,
		GithubURL:   "https://github.com/tiny/swap",
		GithubStars: 42,
		TVL:         &tvl,
		Chains:      []string{"Base"},
		TwitterURL:  "https://twitter.com/tinyswap",
		Category:    database.CategoryDefi,
		Score:       6.5,
	}

	prompt := BuildPrompt(p)

	for _, want := range []string{
		"Project Name: Tiny Swap",
		"Description: Concentrated liquidity DEX",
		"--- GitHub Data ---",
		"Stars: 42",
		"--- DeFiLlama Data ---",
		"TVL: $250000",
		"Chains: Base",
		"--- Social Links ---",
		"Twitter: https://twitter.com/tinyswap",
		"Category: defi",
		"Initial Score: 6.5/10",
		"**SUMMARY**",
		"**RECOMMENDATION**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain '%s'", want)
		}
	}
}

func TestBuildPromptOmitsAbsentSections(t *testing.T) {
	p := &database.Project{
		Name:     "Bare Project",
		Source:   database.SourceManual,
		Category: database.CategoryOther,
	}

	prompt := BuildPrompt(p)

	for _, unwanted := range []string{
		"--- GitHub Data ---",
		"--- DeFiLlama Data ---",
		"--- Social Links ---",
	} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("Expected prompt without '%s' for a bare project", unwanted)
		}
	}
}

func TestBuildPromptRoundTripsThroughParser(t *testing.T) {
	// The format the prompt requests is the format the parser understands;
	// this keeps the two in sync.
	p := &database.Project{Name: "X", Source: database.SourceGithub, Category: database.CategoryOther}
	prompt := BuildPrompt(p)

	for _, section := range []string{
		"**SUMMARY**", "**WHY EARLY**", "**CATEGORY**", "**SCORE**",
		"**CONFIDENCE**", "**RED FLAGS**", "**RECOMMENDATION**",
	} {
		if !strings.Contains(prompt, section) {
			t.Errorf("Expected prompt to request section '%s'", section)
		}
	}
}
