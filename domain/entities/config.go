package entities

import (
	"os"
	"time"
)

// Defaults applied by Config.Resolve.
const (
	DefaultTimeout        = time.Second
	DefaultBrowser        = "chrome"
	DefaultBaseURL        = "http://localhost:3000"
	DefaultLogLevel       = "SEVERE"
	DefaultHomePagePath   = "/"
	DefaultDebugDirectory = "tmp/selenium-debug"
)

// BaseURLEnv overrides the default base URL when set.
const BaseURLEnv = "BASE_URL"

// Config holds the options for a browser session. Values are merged
// over defaults once at construction and are immutable afterwards.
type Config struct {
	Timeout        time.Duration // upper bound for every wait operation
	Browser        string        // target browser identifier
	BaseURL        string        // prefix for navigation and URL comparisons
	LogLevel       string        // console capture verbosity
	HomePagePath   string        // path visited by Start
	DebugDirectory string        // root directory for failure artifacts
}

// logLevels is the set of console capture levels the WebDriver logging
// endpoint understands.
var logLevels = map[string]bool{
	"OFF":     true,
	"SEVERE":  true,
	"WARNING": true,
	"INFO":    true,
	"DEBUG":   true,
	"ALL":     true,
}

// Resolve - fills unset fields with defaults. An unrecognized LogLevel
// silently falls back to the default, and an empty BaseURL falls back
// to the BASE_URL environment variable before the built-in default.
func (c Config) Resolve() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Browser == "" {
		c.Browser = DefaultBrowser
	}
	if c.BaseURL == "" {
		if env := os.Getenv(BaseURLEnv); env != "" {
			c.BaseURL = env
		} else {
			c.BaseURL = DefaultBaseURL
		}
	}
	if !logLevels[c.LogLevel] {
		c.LogLevel = DefaultLogLevel
	}
	if c.HomePagePath == "" {
		c.HomePagePath = DefaultHomePagePath
	}
	if c.DebugDirectory == "" {
		c.DebugDirectory = DefaultDebugDirectory
	}
	return c
}
