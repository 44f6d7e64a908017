package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidSources(t *testing.T) {
	// Create temp directory
	tempDir := t.TempDir()

	content := `
github:
  search_queries:
    - "blockchain created:>{date} stars:>10"
  created_days: 14
  per_page: 50
  max_repos: 20

defillama:
  early_chains:
    - "Base"
    - "Blast"
  min_tvl: 5000
  max_tvl: 2000000
  recent_days: 90
  max_protocols: 25

keywords:
  early_stage:
    - "testnet"
  exclude:
    - "tutorial"
`

	path := filepath.Join(tempDir, "sources.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	sources, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(sources.Github.SearchQueries) != 1 {
		t.Errorf("Expected 1 search query, got %d", len(sources.Github.SearchQueries))
	}
	if sources.Github.CreatedDays != 14 {
		t.Errorf("Expected created_days 14, got %d", sources.Github.CreatedDays)
	}
	if sources.Github.MaxRepos != 20 {
		t.Errorf("Expected max_repos 20, got %d", sources.Github.MaxRepos)
	}
	if len(sources.Defillama.EarlyChains) != 2 {
		t.Errorf("Expected 2 early chains, got %d", len(sources.Defillama.EarlyChains))
	}
	if sources.Defillama.MinTVL != 5000 {
		t.Errorf("Expected min_tvl 5000, got %f", sources.Defillama.MinTVL)
	}
}

func TestLoadSourcesWithDefaults(t *testing.T) {
	// Partial file: everything omitted should fall back to built-in defaults
	tempDir := t.TempDir()

	content := `
github:
  created_days: 7
`

	path := filepath.Join(tempDir, "sources.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	sources, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	if sources.Github.CreatedDays != 7 {
		t.Errorf("Expected created_days 7, got %d", sources.Github.CreatedDays)
	}
	if len(sources.Github.SearchQueries) == 0 {
		t.Error("Expected default search queries to be applied")
	}
	if sources.Github.PerPage != 30 {
		t.Errorf("Expected default per_page 30, got %d", sources.Github.PerPage)
	}
	if sources.Defillama.MaxTVL != 10_000_000 {
		t.Errorf("Expected default max_tvl 10000000, got %f", sources.Defillama.MaxTVL)
	}
	if len(sources.Keywords.Exclude) == 0 {
		t.Error("Expected default exclude keywords to be applied")
	}
}

func TestLoadMissingFile(t *testing.T) {
	// A missing sources file is not an error, defaults cover all settings
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	sources, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	defaults := Defaults()
	if len(sources.Github.SearchQueries) != len(defaults.Github.SearchQueries) {
		t.Errorf("Expected %d default search queries, got %d",
			len(defaults.Github.SearchQueries), len(sources.Github.SearchQueries))
	}
	if sources.Defillama.MinTVL != defaults.Defillama.MinTVL {
		t.Errorf("Expected default min_tvl %f, got %f", defaults.Defillama.MinTVL, sources.Defillama.MinTVL)
	}
}

func TestLoadInvalidSources(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "per_page out of range",
			content: `
github:
  per_page: 500
`,
		},
		{
			name: "min_tvl above max_tvl",
			content: `
defillama:
  min_tvl: 5000000
  max_tvl: 1000
`,
		},
		{
			name: "negative created_days",
			content: `
github:
  created_days: -5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sources.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			loader := NewLoader(path)
			_, err := loader.Load()
			if err == nil {
				t.Error("Expected error for invalid configuration")
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte("github: [not: valid"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(path)
	_, err := loader.Load()
	if err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
