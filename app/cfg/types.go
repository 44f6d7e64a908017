package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port           string
	SourcesFile    string
	AdminAPIKey    string
	CORSOrigins    []string
	RequestTimeout int

	// Collection configuration
	GithubToken            string
	GithubIntervalHours    int
	DefillamaIntervalHours int

	// Analysis configuration
	OpenAIAPIKey string
	OpenAIModel  string

	// Notification configuration
	TelegramBotToken string
	TelegramChatID   int64

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
