package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/config"
)

var _ Collector = (*DefillamaCollector)(nil)

// DefillamaCollector discovers early-stage DeFi protocols from the public
// DeFiLlama API (no authentication required).
type DefillamaCollector struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	settings   config.DefillamaSettings
	throttle   time.Duration
}

func NewDefillamaCollector(httpClient *http.Client, sources *config.Sources, userAgent string) *DefillamaCollector {
	return &DefillamaCollector{
		httpClient: httpClient,
		baseURL:    "https://api.llama.fi",
		userAgent:  userAgent,
		settings:   sources.Defillama,
		throttle:   300 * time.Millisecond,
	}
}

func (c *DefillamaCollector) Name() string {
	return "defillama"
}

func (c *DefillamaCollector) Source() string {
	return "defillama"
}

// Collect fetches the full protocol list, keeps the early-stage subset and
// enriches each kept protocol with detail data. Enrichment failures degrade
// to the list-level record rather than dropping the protocol.
func (c *DefillamaCollector) Collect(ctx context.Context) ([]RawProject, error) {
	protocols, err := c.fetchProtocols(ctx)
	if err != nil {
		return nil, err
	}

	early := c.filterEarlyStage(protocols)
	slog.Info("DeFiLlama protocols filtered", "total", len(protocols), "early_stage", len(early))

	var projects []RawProject
	for i, protocol := range early {
		if i >= c.settings.MaxProtocols {
			break
		}

		project := c.buildProject(ctx, protocol)
		if project != nil {
			projects = append(projects, *project)
		}

		if err := c.wait(ctx, c.throttle); err != nil {
			return projects, err
		}
	}

	return projects, nil
}

func (c *DefillamaCollector) fetchProtocols(ctx context.Context) ([]llamaProtocol, error) {
	var protocols []llamaProtocol
	if err := c.getJSON(ctx, c.baseURL+"/protocols", &protocols); err != nil {
		return nil, fmt.Errorf("failed to fetch protocols: %w", err)
	}
	return protocols, nil
}

// filterEarlyStage keeps protocols that are small on an emerging chain, or
// recently listed with any TVL at all. Results come back smallest-first so
// the per-run cap favors the newest projects.
func (c *DefillamaCollector) filterEarlyStage(protocols []llamaProtocol) []llamaProtocol {
	var early []llamaProtocol

	for _, p := range protocols {
		tvl := p.TVL

		isLowTVL := tvl > c.settings.MinTVL && tvl < c.settings.MaxTVL
		isNewChain := c.onEarlyChain(p.Chains)

		isRecent := false
		if p.ListedAt > 0 {
			listed := time.Unix(p.ListedAt, 0)
			isRecent = time.Since(listed) < time.Duration(c.settings.RecentDays)*24*time.Hour
		}

		if (isLowTVL && isNewChain) || (isRecent && tvl > 0) {
			early = append(early, p)
		}
	}

	sort.Slice(early, func(i, j int) bool {
		return early[i].TVL < early[j].TVL
	})

	return early
}

func (c *DefillamaCollector) buildProject(ctx context.Context, protocol llamaProtocol) *RawProject {
	if protocol.Name == "" || protocol.Slug == "" {
		return nil
	}

	var details llamaProtocolDetails
	if err := c.getJSON(ctx, c.baseURL+"/protocol/"+protocol.Slug, &details); err != nil {
		slog.Debug("Failed to fetch protocol details", "protocol", protocol.Slug, "error", err)
	}

	description := protocol.Description
	if description == "" {
		description = details.Description
	}

	twitter := protocol.Twitter
	if twitter == "" {
		twitter = details.Twitter
	}
	var twitterURL string
	if twitter != "" {
		twitterURL = "https://twitter.com/" + twitter
	}

	tvl := protocol.TVL
	project := &RawProject{
		Name:          protocol.Name,
		Identity:      protocol.Slug,
		Description:   description,
		Source:        "defillama",
		SourceURL:     "https://defillama.com/protocol/" + protocol.Slug,
		TVL:           &tvl,
		Chains:        protocol.Chains,
		LlamaCategory: protocol.Category,
		TwitterURL:    twitterURL,
		WebsiteURL:    protocol.URL,
		GithubURL:     githubURL(protocol.Github, details.Github),
		EarlySignals:  c.detectEarlySignals(protocol, details),
	}

	if protocol.Change7d != nil {
		project.TVLChange7d = protocol.Change7d
	}

	return project
}

func (c *DefillamaCollector) detectEarlySignals(protocol llamaProtocol, details llamaProtocolDetails) []string {
	var signals []string

	switch {
	case protocol.TVL < 100_000:
		signals = append(signals, "very_low_tvl")
	case protocol.TVL < 1_000_000:
		signals = append(signals, "low_tvl")
	}

	var newChains []string
	for _, chain := range protocol.Chains {
		if c.isEarlyChain(chain) {
			newChains = append(newChains, chain)
			if len(newChains) == 3 {
				break
			}
		}
	}
	if len(newChains) > 0 {
		signals = append(signals, "new_chains:"+strings.Join(newChains, ","))
	}

	if protocol.ListedAt > 0 {
		days := int(time.Since(time.Unix(protocol.ListedAt, 0)).Hours() / 24)
		if days < 30 {
			signals = append(signals, fmt.Sprintf("very_new:%dd", days))
		} else if days < 90 {
			signals = append(signals, fmt.Sprintf("new:%dd", days))
		}
	}

	if len(details.Raises) > 0 {
		signals = append(signals, fmt.Sprintf("raised:%d_rounds", len(details.Raises)))
	}

	return signals
}

func (c *DefillamaCollector) onEarlyChain(chains []string) bool {
	for _, chain := range chains {
		if c.isEarlyChain(chain) {
			return true
		}
	}
	return false
}

func (c *DefillamaCollector) isEarlyChain(chain string) bool {
	for _, early := range c.settings.EarlyChains {
		if chain == early {
			return true
		}
	}
	return false
}

func (c *DefillamaCollector) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *DefillamaCollector) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// githubURL resolves the protocol's GitHub link from either the list or the
// detail payload; DeFiLlama serves it as a list of org names.
func githubURL(listGithub, detailsGithub []string) string {
	github := listGithub
	if len(github) == 0 {
		github = detailsGithub
	}
	if len(github) == 0 {
		return ""
	}
	return "https://github.com/" + github[0]
}

type llamaProtocol struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Twitter     string   `json:"twitter"`
	Github      []string `json:"github"`
	TVL         float64  `json:"tvl"`
	Change7d    *float64 `json:"change_7d"`
	Chains      []string `json:"chains"`
	Category    string   `json:"category"`
	ListedAt    int64    `json:"listedAt"`
}

type llamaProtocolDetails struct {
	Description string            `json:"description"`
	Twitter     string            `json:"twitter"`
	Github      []string          `json:"github"`
	Raises      []json.RawMessage `json:"raises"`
}
