package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDefaults(t *testing.T) {
	t.Setenv(BaseURLEnv, "")

	cfg := Config{}.Resolve()

	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "chrome", cfg.Browser)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, "SEVERE", cfg.LogLevel)
	assert.Equal(t, "/", cfg.HomePagePath)
	assert.Equal(t, "tmp/selenium-debug", cfg.DebugDirectory)
}

func TestResolveKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Timeout:        5 * time.Second,
		Browser:        "firefox",
		BaseURL:        "http://app.test:8080",
		LogLevel:       "ALL",
		HomePagePath:   "/login",
		DebugDirectory: "tmp/debug",
	}.Resolve()

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, "http://app.test:8080", cfg.BaseURL)
	assert.Equal(t, "ALL", cfg.LogLevel)
	assert.Equal(t, "/login", cfg.HomePagePath)
	assert.Equal(t, "tmp/debug", cfg.DebugDirectory)
}

func TestResolveBaseURLFromEnvironment(t *testing.T) {
	t.Setenv(BaseURLEnv, "http://staging.example.com")

	cfg := Config{}.Resolve()
	assert.Equal(t, "http://staging.example.com", cfg.BaseURL)

	// An explicit value still wins over the environment.
	cfg = Config{BaseURL: "http://app.test"}.Resolve()
	assert.Equal(t, "http://app.test", cfg.BaseURL)
}

func TestResolveLogLevel(t *testing.T) {
	for _, level := range []string{"OFF", "SEVERE", "WARNING", "INFO", "DEBUG", "ALL"} {
		cfg := Config{LogLevel: level}.Resolve()
		assert.Equal(t, level, cfg.LogLevel)
	}

	for _, level := range []string{"TRACE", "severe", "VERBOSE", "bogus"} {
		cfg := Config{LogLevel: level}.Resolve()
		assert.Equal(t, "SEVERE", cfg.LogLevel, "level %q should fall back to the default", level)
	}
}
