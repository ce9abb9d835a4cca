package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/apidrift"
	"github.com/agentstation/apidrift/internal/ai"
	"github.com/agentstation/apidrift/pkg/reconciler"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file
	ConfigFile string

	// Pipeline configuration
	Mode              string
	Report            string
	Workers           int
	CachePath         string
	ProvenancePath    string
	Exclude           []string
	SeverityOverrides map[string]string

	// Text-generation collaborator
	AIProvider        string
	AIModel           string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	MaxConcurrency    int
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (APIDRIFT_ prefixed, plus provider API keys)
// 3. .env files
// 4. Config file (~/.apidrift.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v.SetEnvPrefix("APIDRIFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindAPIKeys(v)
	setDefaults(v)

	if configFile := os.Getenv("APIDRIFT_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".apidrift")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !asNotFound(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Output:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		Mode:              v.GetString("mode"),
		Report:            v.GetString("report"),
		Workers:           v.GetInt("workers"),
		CachePath:         v.GetString("cache"),
		ProvenancePath:    v.GetString("provenance"),
		Exclude:           v.GetStringSlice("exclude"),
		SeverityOverrides: v.GetStringMapString("severity"),

		AIProvider:        v.GetString("ai.provider"),
		AIModel:           v.GetString("ai.model"),
		GeminiAPIKey:      firstNonEmpty(v.GetString("GEMINI_API_KEY"), v.GetString("GOOGLE_API_KEY")),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:     v.GetString("ai.base_url"),
		MaxConcurrency:    v.GetInt("ai.max_concurrency"),
		RequestTimeout:    v.GetDuration("ai.request_timeout"),
		RequestsPerSecond: v.GetFloat64("ai.requests_per_second"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(reconciler.ModeRuleBased))
	v.SetDefault("report", "annotated_markdown")
	v.SetDefault("workers", apidrift.DefaultWorkers)
	v.SetDefault("ai.provider", string(ai.ProviderGemini))
	v.SetDefault("ai.max_concurrency", reconciler.DefaultConcurrency)
	v.SetDefault("ai.request_timeout", reconciler.DefaultRequestTimeout)
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if output != "" {
		c.Output = output
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// APIKey returns the key for the configured AI provider.
func (c *Config) APIKey() string {
	if ai.Provider(strings.ToLower(c.AIProvider)) == ai.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// bindAPIKeys explicitly binds provider API key environment variables,
// which carry no APIDRIFT_ prefix.
func bindAPIKeys(v *viper.Viper) {
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"} {
		if err := v.BindEnv(key, key); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", key, err)
		}
	}
}

func asNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	nf, ok := err.(viper.ConfigFileNotFoundError) //nolint:errorlint // viper returns the value type unwrapped
	if ok {
		*target = nf
	}
	return ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
