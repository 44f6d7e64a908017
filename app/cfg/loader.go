package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/alpha_scanner.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port           string   `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SourcesFile    string   `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"Path to the source tuning configuration file"`
	AdminAPIKey    string   `long:"admin-key" env:"ADMIN_API_KEY" description:"API key required for write endpoints (required)" required:"true"`
	CORSOrigins    []string `long:"cors-origin" env:"CORS_ORIGINS" env-delim:"," default:"http://localhost:3000" description:"Allowed CORS origins"`
	RequestTimeout int      `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Upstream HTTP request timeout in seconds"`

	// Collection configuration
	GithubToken            string `long:"github-token" env:"GITHUB_TOKEN" description:"GitHub API token (unauthenticated requests are heavily rate limited)"`
	GithubIntervalHours    int    `long:"github-interval" env:"GITHUB_COLLECT_INTERVAL_HOURS" default:"6" description:"GitHub collection interval in hours"`
	DefillamaIntervalHours int    `long:"defillama-interval" env:"DEFILLAMA_COLLECT_INTERVAL_HOURS" default:"12" description:"DeFiLlama collection interval in hours"`

	// Analysis configuration
	OpenAIAPIKey string `long:"openai-key" env:"OPENAI_API_KEY" description:"OpenAI API key for the built-in analyzer (optional)"`
	OpenAIModel  string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"OpenAI model used by the built-in analyzer"`

	// Notification configuration
	TelegramBotToken string `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token for daily summary delivery (optional)"`
	TelegramChatID   int64  `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID for daily summary delivery"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Alpha Scanner/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:                 raw.DBPath,
		Port:                   raw.Port,
		SourcesFile:            raw.SourcesFile,
		AdminAPIKey:            raw.AdminAPIKey,
		CORSOrigins:            raw.CORSOrigins,
		RequestTimeout:         raw.RequestTimeout,
		GithubToken:            raw.GithubToken,
		GithubIntervalHours:    raw.GithubIntervalHours,
		DefillamaIntervalHours: raw.DefillamaIntervalHours,
		OpenAIAPIKey:           raw.OpenAIAPIKey,
		OpenAIModel:            raw.OpenAIModel,
		TelegramBotToken:       raw.TelegramBotToken,
		TelegramChatID:         raw.TelegramChatID,
		UserAgent:              raw.UserAgent,
		Timezone:               raw.Timezone,
		Debug:                  raw.Debug,
		Version:                GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
