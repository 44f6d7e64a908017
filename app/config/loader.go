package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the source tuning configuration
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the sources file, applying built-in defaults for anything the
// file omits. A missing file is not an error: the defaults cover all settings.
func (l *Loader) Load() (*Sources, error) {
	sources := Defaults()

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		slog.Info("Sources file not found, using built-in defaults", "path", l.path)
		return sources, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	if err := yaml.Unmarshal(data, sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	l.setDefaults(sources)

	if err := l.validate(sources); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", l.path, err)
	}

	slog.Info("Loaded source configuration", "path", l.path,
		"github_queries", len(sources.Github.SearchQueries),
		"early_chains", len(sources.Defillama.EarlyChains))

	return sources, nil
}

// setDefaults fills zero values left by a partial YAML file
func (l *Loader) setDefaults(s *Sources) {
	defaults := Defaults()

	if len(s.Github.SearchQueries) == 0 {
		s.Github.SearchQueries = defaults.Github.SearchQueries
	}
	if s.Github.CreatedDays == 0 {
		s.Github.CreatedDays = defaults.Github.CreatedDays
	}
	if s.Github.PerPage == 0 {
		s.Github.PerPage = defaults.Github.PerPage
	}
	if s.Github.MaxRepos == 0 {
		s.Github.MaxRepos = defaults.Github.MaxRepos
	}
	if len(s.Defillama.EarlyChains) == 0 {
		s.Defillama.EarlyChains = defaults.Defillama.EarlyChains
	}
	if s.Defillama.MinTVL == 0 {
		s.Defillama.MinTVL = defaults.Defillama.MinTVL
	}
	if s.Defillama.MaxTVL == 0 {
		s.Defillama.MaxTVL = defaults.Defillama.MaxTVL
	}
	if s.Defillama.RecentDays == 0 {
		s.Defillama.RecentDays = defaults.Defillama.RecentDays
	}
	if s.Defillama.MaxProtocols == 0 {
		s.Defillama.MaxProtocols = defaults.Defillama.MaxProtocols
	}
	if len(s.Keywords.EarlyStage) == 0 {
		s.Keywords.EarlyStage = defaults.Keywords.EarlyStage
	}
	if len(s.Keywords.Exclude) == 0 {
		s.Keywords.Exclude = defaults.Keywords.Exclude
	}
}

// validate checks the configuration for values the adapters cannot work with
func (l *Loader) validate(s *Sources) error {
	if s.Github.CreatedDays < 0 {
		return fmt.Errorf("github.created_days must be non-negative")
	}
	if s.Github.PerPage < 1 || s.Github.PerPage > 100 {
		return fmt.Errorf("github.per_page must be between 1 and 100")
	}
	if s.Github.MaxRepos < 0 {
		return fmt.Errorf("github.max_repos must be non-negative")
	}
	if s.Defillama.MinTVL < 0 || s.Defillama.MaxTVL < 0 {
		return fmt.Errorf("defillama TVL bounds must be non-negative")
	}
	if s.Defillama.MinTVL >= s.Defillama.MaxTVL {
		return fmt.Errorf("defillama.min_tvl must be below defillama.max_tvl")
	}
	if s.Defillama.MaxProtocols < 0 {
		return fmt.Errorf("defillama.max_protocols must be non-negative")
	}
	return nil
}
