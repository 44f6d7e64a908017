package config

// Defaults returns the built-in source tuning configuration. The search
// queries and keyword lists target early-stage crypto/web3 repositories and
// protocols; a sources.yml file can override any of them.
func Defaults() *Sources {
	return &Sources{
		Github: GithubSettings{
			SearchQueries: []string{
				"blockchain created:>{date} stars:>5",
				"web3 created:>{date} stars:>5",
				"ethereum created:>{date} stars:>3",
				"solana created:>{date} stars:>3",
				"defi protocol created:>{date}",
				"layer2 scaling created:>{date}",
				"zk rollup created:>{date}",
				"smart contracts created:>{date} stars:>5",
				"crypto wallet created:>{date}",
				"dex swap created:>{date}",
				"nft marketplace created:>{date}",
				"dao governance created:>{date}",
				"bridge cross-chain created:>{date}",
				"cosmos sdk created:>{date}",
				"substrate polkadot created:>{date}",
				"move language aptos sui created:>{date}",
				"cairo starknet created:>{date}",
			},
			CreatedDays: 30,
			PerPage:     30,
			MaxRepos:    50,
		},
		Defillama: DefillamaSettings{
			EarlyChains: []string{
				"Arbitrum", "Optimism", "Base", "zkSync Era", "Linea",
				"Scroll", "Blast", "Manta", "Mode", "Mantle",
				"Sui", "Aptos", "Sei", "Injective", "Celestia",
				"Starknet", "Polygon zkEVM", "Taiko", "Zora",
			},
			MinTVL:       1_000,
			MaxTVL:       10_000_000,
			RecentDays:   180,
			MaxProtocols: 50,
		},
		Keywords: KeywordSettings{
			EarlyStage: []string{
				"testnet", "devnet", "alpha", "beta", "mvp", "poc",
				"proof of concept", "coming soon", "wip", "work in progress",
				"prototype", "experimental", "early", "pre-launch", "launch soon",
			},
			Exclude: []string{
				"tutorial", "course", "learning", "example", "demo",
				"homework", "assignment", "bootcamp", "lesson", "exercise",
				"sample", "template", "boilerplate", "starter",
			},
		},
	}
}
