package config

// Sources represents the source tuning configuration loaded from sources.yml
type Sources struct {
	Github    GithubSettings    `yaml:"github"`
	Defillama DefillamaSettings `yaml:"defillama"`
	Keywords  KeywordSettings   `yaml:"keywords"`
}

// GithubSettings controls the GitHub search adapter
type GithubSettings struct {
	SearchQueries []string `yaml:"search_queries"` // "{date}" is replaced with the created-after threshold
	CreatedDays   int      `yaml:"created_days"`   // search repos created within N days
	PerPage       int      `yaml:"per_page"`
	MaxRepos      int      `yaml:"max_repos"` // repos enriched per run
}

// DefillamaSettings controls the DeFiLlama protocol adapter
type DefillamaSettings struct {
	EarlyChains  []string `yaml:"early_chains"`
	MinTVL       float64  `yaml:"min_tvl"`
	MaxTVL       float64  `yaml:"max_tvl"`
	RecentDays   int      `yaml:"recent_days"` // listing age considered "recent"
	MaxProtocols int      `yaml:"max_protocols"`
}

// KeywordSettings holds keyword lists shared by adapters and the scorer
type KeywordSettings struct {
	EarlyStage []string `yaml:"early_stage"`
	Exclude    []string `yaml:"exclude"`
}
