package collector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/alpha-scanner/app/config"
)

var _ Collector = (*GithubCollector)(nil)

var (
	twitterRe  = regexp.MustCompile(`(?:twitter\.com|x\.com)/([a-zA-Z0-9_]+)`)
	discordRe  = regexp.MustCompile(`discord\.(?:gg|com/invite)/([a-zA-Z0-9]+)`)
	lastPageRe = regexp.MustCompile(`page=(\d+)>; rel="last"`)
)

// GithubCollector discovers recently created crypto/web3 repositories via
// the GitHub search API and enriches them with activity metrics.
type GithubCollector struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
	settings   config.GithubSettings
	keywords   config.KeywordSettings
	throttle   time.Duration
}

func NewGithubCollector(httpClient *http.Client, sources *config.Sources, token, userAgent string) *GithubCollector {
	return &GithubCollector{
		httpClient: httpClient,
		baseURL:    "https://api.github.com",
		token:      token,
		userAgent:  userAgent,
		settings:   sources.Github,
		keywords:   sources.Keywords,
		throttle:   time.Second,
	}
}

func (c *GithubCollector) Name() string {
	return "github_crypto"
}

func (c *GithubCollector) Source() string {
	return "github"
}

// Collect runs all configured search queries, deduplicates hits by full name
// and enriches up to MaxRepos of them. A rate-limit cutoff returns the
// records gathered so far together with ErrRateLimited.
func (c *GithubCollector) Collect(ctx context.Context) ([]RawProject, error) {
	date := time.Now().UTC().AddDate(0, 0, -c.settings.CreatedDays).Format("2006-01-02")

	seen := make(map[string]bool)
	var repos []githubRepo

	for _, template := range c.settings.SearchQueries {
		query := strings.ReplaceAll(template, "{date}", date)

		found, err := c.searchRepositories(ctx, query)
		if err != nil {
			if err == ErrRateLimited || ctx.Err() != nil {
				slog.Warn("GitHub search stopped early", "query", query, "error", err)
				break
			}
			slog.Error("GitHub search failed, continuing with next query", "query", query, "error", err)
			continue
		}

		for _, repo := range found {
			if !seen[repo.FullName] {
				seen[repo.FullName] = true
				repos = append(repos, repo)
			}
		}

		if err := c.wait(ctx, 2*c.throttle); err != nil {
			return nil, err
		}
	}

	slog.Info("GitHub search complete", "unique_repos", len(repos))

	var projects []RawProject
	for i, repo := range repos {
		if i >= c.settings.MaxRepos {
			break
		}

		project, err := c.processRepository(ctx, repo)
		if err != nil {
			if err == ErrRateLimited || ctx.Err() != nil {
				return projects, ErrRateLimited
			}
			slog.Error("Failed to process repository", "repo", repo.FullName, "error", err)
			continue
		}

		if project != nil && c.passesFilter(*project) {
			projects = append(projects, *project)
		}

		if err := c.wait(ctx, c.throttle); err != nil {
			return projects, err
		}
	}

	return projects, nil
}

func (c *GithubCollector) searchRepositories(ctx context.Context, query string) ([]githubRepo, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "updated")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(c.settings.PerPage))

	var result githubSearchResponse
	err := c.getJSON(ctx, c.baseURL+"/search/repositories?"+params.Encode(), &result)
	if err != nil {
		return nil, err
	}

	return result.Items, nil
}

func (c *GithubCollector) processRepository(ctx context.Context, repo githubRepo) (*RawProject, error) {
	commits, err := c.commitCount(ctx, repo.FullName)
	if err != nil {
		return nil, err
	}

	contributors, err := c.contributorCount(ctx, repo.FullName)
	if err != nil {
		return nil, err
	}

	twitterURL, discordURL := c.readmeSocialLinks(ctx, repo.FullName)

	var createdAt *time.Time
	if repo.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, repo.CreatedAt); err == nil {
			utc := t.UTC()
			createdAt = &utc
		}
	}

	websiteURL := repo.Homepage

	return &RawProject{
		Name:               repo.Name,
		Identity:           repo.FullName,
		Description:        repo.Description,
		Source:             "github",
		SourceURL:          repo.HTMLURL,
		GithubURL:          repo.HTMLURL,
		GithubOrg:          repo.Owner.Login,
		GithubStars:        repo.StargazersCount,
		GithubForks:        repo.ForksCount,
		GithubCommits30d:   commits,
		GithubContributors: contributors,
		GithubCreatedAt:    createdAt,
		GithubLanguage:     repo.Language,
		GithubTopics:       repo.Topics,
		TwitterURL:         twitterURL,
		WebsiteURL:         websiteURL,
		DiscordURL:         discordURL,
		EarlySignals:       c.detectEarlySignals(repo),
	}, nil
}

// commitCount fetches the number of commits in the last 30 days, capped by
// one page of 100.
func (c *GithubCollector) commitCount(ctx context.Context, fullName string) (int, error) {
	since := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339)

	var commits []json.RawMessage
	err := c.getJSON(ctx, fmt.Sprintf("%s/repos/%s/commits?since=%s&per_page=100", c.baseURL, fullName, url.QueryEscape(since)), &commits)
	if err == ErrRateLimited {
		return 0, err
	}
	if err != nil {
		// Empty repositories respond 409; treat any non-limit failure as no data
		return 0, nil
	}

	return len(commits), nil
}

// contributorCount reads the total from the Link header's last-page marker,
// falling back to the body length for single-page results.
func (c *GithubCollector) contributorCount(ctx context.Context, fullName string) (int, error) {
	req, err := c.newRequest(ctx, fmt.Sprintf("%s/repos/%s/contributors?per_page=1&anon=true", c.baseURL, fullName))
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil
	}
	defer resp.Body.Close()

	if limited(resp) {
		return 0, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return 0, nil
	}

	if link := resp.Header.Get("Link"); strings.Contains(link, `rel="last"`) {
		if m := lastPageRe.FindStringSubmatch(link); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, nil
			}
		}
	}

	var contributors []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&contributors); err != nil {
		return 0, nil
	}

	return len(contributors), nil
}

// readmeSocialLinks extracts Twitter and Discord links from the repository
// README. Failures here are not worth aborting the record for.
func (c *GithubCollector) readmeSocialLinks(ctx context.Context, fullName string) (twitterURL, discordURL string) {
	var readme struct {
		Content string `json:"content"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/repos/%s/readme", c.baseURL, fullName), &readme); err != nil {
		return "", ""
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(readme.Content, "\n", ""))
	if err != nil {
		return "", ""
	}
	text := string(decoded)

	if m := twitterRe.FindStringSubmatch(text); m != nil {
		twitterURL = "https://twitter.com/" + m[1]
	}
	if m := discordRe.FindStringSubmatch(text); m != nil {
		discordURL = "https://discord.gg/" + m[1]
	}

	return twitterURL, discordURL
}

func (c *GithubCollector) detectEarlySignals(repo githubRepo) []string {
	var signals []string

	description := strings.ToLower(repo.Description)
	topics := make([]string, len(repo.Topics))
	for i, t := range repo.Topics {
		topics[i] = strings.ToLower(t)
	}
	topicText := strings.Join(topics, " ")

	for _, keyword := range c.keywords.EarlyStage {
		if strings.Contains(description, keyword) || strings.Contains(topicText, keyword) {
			signals = append(signals, "keyword:"+keyword)
		}
	}

	if repo.StargazersCount < 100 {
		signals = append(signals, "low_stars")
	}

	if repo.CreatedAt != "" {
		if created, err := time.Parse(time.RFC3339, repo.CreatedAt); err == nil {
			if days := int(time.Since(created).Hours() / 24); days < 90 {
				signals = append(signals, fmt.Sprintf("new_repo:%dd", days))
			}
		}
	}

	return signals
}

// passesFilter drops records that look like tutorials or dead repositories
func (c *GithubCollector) passesFilter(project RawProject) bool {
	if project.Description == "" {
		return false
	}
	if project.GithubCommits30d == 0 {
		return false
	}

	haystack := strings.ToLower(project.Name + " " + project.Description)
	for _, keyword := range c.keywords.Exclude {
		if strings.Contains(haystack, keyword) {
			return false
		}
	}

	return true
}

func (c *GithubCollector) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	return req, nil
}

func (c *GithubCollector) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if limited(resp) {
		// Wait for a nearby reset instead of failing the run; a reset too far
		// out turns into a clean early stop
		if wait, ok := resetWait(resp); ok && wait <= 2*time.Minute {
			slog.Warn("GitHub rate limit hit, backing off", "wait", wait.String())
			if err := c.wait(ctx, wait); err != nil {
				return ErrRateLimited
			}
			return c.getJSON(ctx, rawURL, dest)
		}
		return ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *GithubCollector) wait(ctx context.Context, d time.Duration) error {
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

// limited reports whether the response indicates quota exhaustion
func limited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// resetWait computes how long until the quota window resets
func resetWait(resp *http.Response) (time.Duration, bool) {
	reset := resp.Header.Get("X-RateLimit-Reset")
	if reset == "" {
		return 0, false
	}
	epoch, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return 0, false
	}
	wait := time.Until(time.Unix(epoch, 0)) + time.Second
	if wait < 0 {
		wait = time.Second
	}
	return wait, true
}

type githubSearchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []githubRepo `json:"items"`
}

type githubRepo struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	Homepage        string   `json:"homepage"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	CreatedAt       string   `json:"created_at"`
	Topics          []string `json:"topics"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}
