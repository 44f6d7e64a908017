package project

import (
	"testing"

	"github.com/lysyi3m/alpha-scanner/app/collector"
	"github.com/lysyi3m/alpha-scanner/app/database"
)

func TestNormalize(t *testing.T) {
	raw := collector.RawProject{
		Name:        "Reth",
		Identity:    "paradigmxyz/reth",
		Description: "Modular blockchain implementation",
		Source:      "github",
		GithubURL:   "https://github.com/paradigmxyz/reth",
		GithubOrg:   "paradigmxyz",
		GithubStars: 120,
		TwitterURL:  "https://twitter.com/paradigm",
	}

	p := Normalize(raw)

	if p.Slug != "paradigmxyz-reth-github" {
		t.Errorf("Expected slug 'paradigmxyz-reth-github', got '%s'", p.Slug)
	}
	if p.Status != database.StatusNew {
		t.Errorf("Expected status '%s', got '%s'", database.StatusNew, p.Status)
	}
	if p.Category != database.CategoryL1 {
		t.Errorf("Expected category '%s', got '%s'", database.CategoryL1, p.Category)
	}
	if p.Score <= 5.0 {
		t.Errorf("Expected score above base for 120 stars, got %f", p.Score)
	}
	if p.TwitterHandle != "paradigm" {
		t.Errorf("Expected twitter handle 'paradigm', got '%s'", p.TwitterHandle)
	}
	// SourceURL falls back to the GitHub URL when the adapter sets none
	if p.SourceURL != raw.GithubURL {
		t.Errorf("Expected source URL '%s', got '%s'", raw.GithubURL, p.SourceURL)
	}
}

func TestNormalizeEmptyName(t *testing.T) {
	p := Normalize(collector.RawProject{Identity: "x/y", Source: "github"})
	if p.Name != "Unknown" {
		t.Errorf("Expected fallback name 'Unknown', got '%s'", p.Name)
	}
}

func TestTwitterHandle(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://twitter.com/project_xyz", "project_xyz"},
		{"https://x.com/project", "project"},
		{"https://example.com/project", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := TwitterHandle(tt.url)
		if got != tt.expected {
			t.Errorf("Expected handle '%s' for '%s', got '%s'", tt.expected, tt.url, got)
		}
	}
}
