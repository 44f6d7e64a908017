package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/database"
)

// BuildPrompt renders the structured analysis prompt for a project. The
// response format it requests is what ParseResponse understands, so the
// prompt can be handed to any external model and the answer pasted back.
func BuildPrompt(p *database.Project) string {
	var context []string

	context = append(context, "Project Name: "+p.Name)

	if p.Description != "" {
		context = append(context, "Description: "+p.Description)
	}

	context = append(context, "Source: "+p.Source)
	if p.SourceURL != "" {
		context = append(context, "Source URL: "+p.SourceURL)
	}

	if p.GithubURL != "" {
		context = append(context, "\n--- GitHub Data ---")
		context = append(context, "GitHub URL: "+p.GithubURL)
		if p.GithubOrg != "" {
			context = append(context, "Organization: "+p.GithubOrg)
		}
		context = append(context, fmt.Sprintf("Stars: %d", p.GithubStars))
		context = append(context, fmt.Sprintf("Forks: %d", p.GithubForks))
		context = append(context, fmt.Sprintf("Commits (30d): %d", p.GithubCommits30d))
		context = append(context, fmt.Sprintf("Contributors: %d", p.GithubContributors))
		if p.GithubLanguage != "" {
			context = append(context, "Primary Language: "+p.GithubLanguage)
		}
		if p.GithubCreatedAt != nil {
			context = append(context, "Created: "+p.GithubCreatedAt.Format(time.RFC3339))
		}
	}

	if p.TVL != nil {
		context = append(context, "\n--- DeFiLlama Data ---")
		context = append(context, fmt.Sprintf("TVL: $%.0f", *p.TVL))
		if p.TVLChange7d != nil {
			context = append(context, fmt.Sprintf("TVL change (7d): %.1f%%", *p.TVLChange7d))
		}
		if len(p.Chains) > 0 {
			context = append(context, "Chains: "+strings.Join(p.Chains, ", "))
		}
	}

	var social []string
	if p.TwitterURL != "" {
		social = append(social, "Twitter: "+p.TwitterURL)
	}
	if p.DiscordURL != "" {
		social = append(social, "Discord: "+p.DiscordURL)
	}
	if p.WebsiteURL != "" {
		social = append(social, "Website: "+p.WebsiteURL)
	}
	if len(social) > 0 {
		context = append(context, "\n--- Social Links ---")
		context = append(context, social...)
	}

	context = append(context, "\n--- Current Classification ---")
	context = append(context, "Category: "+p.Category)
	context = append(context, fmt.Sprintf("Initial Score: %.1f/10", p.Score))

	return fmt.Sprintf(`Analyze this early-stage crypto project and provide a structured assessment.

=== PROJECT DATA ===
%s

=== ANALYSIS REQUIRED ===

Please provide your analysis in the following exact format:

**SUMMARY**
[2-3 sentences describing what this project does and its purpose]

**WHY EARLY**
[3-5 bullet points explaining why this appears to be an early-stage project worth watching]

**CATEGORY**
[One of: L1, L2, DeFi, Infrastructure, Tooling, Gaming, NFT, Social, AI, Other]

**SCORE**
[Number from 1-10, where 10 = highest potential for early alpha]

**CONFIDENCE**
[Number from 0.1-1.0, how confident you are in this assessment]

**RED FLAGS**
[List any concerns or red flags, or "None identified" if none]

**RECOMMENDATION**
[One of: WATCH, RESEARCH, SKIP] - [Brief reason]

Be objective and focus on factual signals. Consider:
- Development activity and team credibility
- Technical innovation or unique value proposition
- Stage of development (testnet, mainnet, etc.)
- Community and social presence
- Funding and backing signals
- Competition and market positioning
`, strings.Join(context, "\n"))
}
