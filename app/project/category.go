package project

import (
	"strings"

	"github.com/lysyi3m/alpha-scanner/app/collector"
	"github.com/lysyi3m/alpha-scanner/app/database"
)

// llamaCategories maps DeFiLlama's own category labels onto ours. The label
// wins over keyword detection because it is curated upstream.
var llamaCategories = map[string]string{
	"dexes":       database.CategoryDefi,
	"lending":     database.CategoryDefi,
	"yield":       database.CategoryDefi,
	"derivatives": database.CategoryDefi,
	"cdp":         database.CategoryDefi,
	"liquid staking": database.CategoryDefi,
	"restaking":   database.CategoryDefi,
	"bridge":      database.CategoryInfrastructure,
	"cross chain": database.CategoryInfrastructure,
	"oracle":      database.CategoryInfrastructure,
	"chain":       database.CategoryL1,
	"rollup":      database.CategoryL2,
	"gaming":      database.CategoryGaming,
	"nft marketplace": database.CategoryNFT,
	"nft lending": database.CategoryNFT,
	"socialfi":    database.CategorySocial,
	"ai agents":   database.CategoryAI,
}

var categoryRules = []struct {
	category string
	keywords []string
}{
	{database.CategoryL2, []string{"layer2", "l2", "rollup", "zk-rollup", "optimistic"}},
	{database.CategoryL1, []string{"layer1", "l1", "blockchain", "consensus"}},
	{database.CategoryDefi, []string{"defi", "dex", "swap", "lending", "yield", "amm", "liquidity"}},
	{database.CategoryInfrastructure, []string{"bridge", "cross-chain", "interoperability", "oracle"}},
	{database.CategoryTooling, []string{"sdk", "tool", "library", "framework", "cli", "api"}},
	{database.CategoryGaming, []string{"game", "gaming", "play-to-earn", "metaverse"}},
	{database.CategoryNFT, []string{"nft", "collectible", "marketplace"}},
	{database.CategorySocial, []string{"social", "dao", "governance", "community"}},
	{database.CategoryAI, []string{" ai ", "machine learning", "llm", "gpt", "neural"}},
}

// DetectCategory classifies a raw record from its upstream category label
// when present, otherwise from name/description/topic keywords.
func DetectCategory(raw collector.RawProject) string {
	if raw.LlamaCategory != "" {
		if category, ok := llamaCategories[strings.ToLower(raw.LlamaCategory)]; ok {
			return category
		}
	}

	allText := strings.ToLower(raw.Description + " " + raw.Name + " " + strings.Join(raw.GithubTopics, " "))

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(allText, keyword) {
				return rule.category
			}
		}
	}

	return database.CategoryOther
}
