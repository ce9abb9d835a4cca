package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfig verifies basic config loading and defaults.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.Mode != "rule_based" {
		t.Errorf("Mode = %q, want rule_based", config.Mode)
	}
	if config.Report != "annotated_markdown" {
		t.Errorf("Report = %q, want annotated_markdown", config.Report)
	}
	if config.AIProvider != "gemini" {
		t.Errorf("AIProvider = %q, want gemini", config.AIProvider)
	}
	if config.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", config.RequestTimeout)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies APIDRIFT_ and API key variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("APIDRIFT_MODE", "ai_assisted")
	t.Setenv("APIDRIFT_AI_PROVIDER", "openai")
	t.Setenv("APIDRIFT_AI_REQUEST_TIMEOUT", "5s")
	t.Setenv("APIDRIFT_WORKERS", "3")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.Mode != "ai_assisted" {
		t.Errorf("Mode = %q, want ai_assisted", config.Mode)
	}
	if config.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", config.RequestTimeout)
	}
	if config.Workers != 3 {
		t.Errorf("Workers = %d, want 3", config.Workers)
	}
	if got := config.APIKey(); got != "sk-test" {
		t.Errorf("APIKey() = %q, want the OpenAI key", got)
	}

	config.AIProvider = "gemini"
	if got := config.APIKey(); got != "gm-test" {
		t.Errorf("APIKey() = %q, want the Gemini key", got)
	}
}

// TestConfig_File verifies values from an explicit config file.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apidrift.yaml")
	content := `
report: json
exclude:
  - "_internal.*"
severity:
  missing_in_docs: low
ai:
  model: gpt-4o
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APIDRIFT_CONFIG", path)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	if config.Report != "json" {
		t.Errorf("Report = %q, want json", config.Report)
	}
	if len(config.Exclude) != 1 || config.Exclude[0] != "_internal.*" {
		t.Errorf("Exclude = %v", config.Exclude)
	}
	if config.SeverityOverrides["missing_in_docs"] != "low" {
		t.Errorf("SeverityOverrides = %v", config.SeverityOverrides)
	}
	if config.AIModel != "gpt-4o" {
		t.Errorf("AIModel = %q, want gpt-4o", config.AIModel)
	}
}

// TestConfig_BadFile verifies that an unreadable config file is an error.
func TestConfig_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("report: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APIDRIFT_CONFIG", path)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() succeeded on a malformed file")
	}
}

// TestUpdateFromFlags verifies flag precedence.
func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Output: "json", LogLevel: "info"}
	config.UpdateFromFlags(true, false, true, "", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Output != "json" || config.LogLevel != "info" {
		t.Error("empty flags must not clear configured values")
	}

	config.UpdateFromFlags(false, false, false, "yaml", "debug")
	if config.Output != "yaml" || config.LogLevel != "debug" {
		t.Errorf("Output = %q, LogLevel = %q", config.Output, config.LogLevel)
	}
}
