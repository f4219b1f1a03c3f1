package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	slog "github.com/tebeka/selenium/log"

	"browser_e2e/domain/entities"
	"browser_e2e/domain/interfaces"
	"browser_e2e/infrastructure/storage"
)

const (
	driverPort   = 9515
	pollInterval = 50 * time.Millisecond
)

// Session owns one browser session and provides navigation,
// interaction and wait operations for end-to-end tests, all bounded by
// the configured timeout. Every failure routes through Fail, which
// captures debug artifacts before the error is returned.
type Session struct {
	wd        selenium.WebDriver
	service   *selenium.Service
	cfg       entities.Config
	logger    *logrus.Logger
	artifacts interfaces.ArtifactWriter
}

// findChromeDriver - finds the ChromeDriver executable path
func findChromeDriver() (string, error) {
	if path := os.Getenv("BROWSER_DRIVER_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// NewSession - resolves cfg over defaults, starts a ChromeDriver
// service and opens one browser session with console-log capture
// enabled at the resolved level. A setup failure propagates
// immediately without artifact capture; no session exists yet to query
// logs or a screenshot from.
func NewSession(cfg entities.Config, logger *logrus.Logger) (*Session, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional
		logger.Debug(".env file not found, using environment variables")
	}
	cfg = cfg.Resolve()

	driverPath, err := findChromeDriver()
	if err != nil {
		return nil, &SessionError{Kind: FailureSetup, Message: "failed to find chromedriver", Err: err}
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	service, err := selenium.NewChromeDriverService(driverPath, driverPort)
	if err != nil {
		return nil, &SessionError{Kind: FailureSetup, Message: "failed to start chromedriver", Err: err}
	}

	caps := selenium.Capabilities{"browserName": cfg.Browser}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	// Buffer console output at the configured verbosity so failures can
	// dump it into browser.log.
	caps["loggingPrefs"] = map[string]string{"browser": cfg.LogLevel}

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", driverPort))
	if err != nil {
		if stopErr := service.Stop(); stopErr != nil {
			logger.Warnf("Failed to stop chromedriver after session error: %v", stopErr)
		}
		return nil, &SessionError{Kind: FailureSetup, Message: "failed to create webdriver session", Err: err}
	}

	return &Session{
		wd:        wd,
		service:   service,
		cfg:       cfg,
		logger:    logger,
		artifacts: storage.NewDebugArtifacts(cfg.DebugDirectory, logger),
	}, nil
}

// Config returns the resolved session configuration.
func (s *Session) Config() entities.Config {
	return s.cfg
}

// Start - clears all session cookies and navigates to the configured
// home page, leaving the session in a known clean state.
func (s *Session) Start(ctx context.Context) error {
	s.logger.Debug("Starting session on a clean cookie jar")
	if err := s.wd.DeleteAllCookies(); err != nil {
		return s.fail(FailureInteraction, fmt.Sprintf("unable to delete cookies: %v", err))
	}
	return s.Visit(ctx, s.cfg.HomePagePath)
}

// Quit - releases the browser session and stops the driver service.
func (s *Session) Quit() error {
	s.logger.Debug("Quitting browser session")
	err := s.wd.Quit()
	if s.service != nil {
		if stopErr := s.service.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	return err
}

// Visit - navigates to the base URL with the normalized path appended.
func (s *Session) Visit(ctx context.Context, path string) error {
	url := s.cfg.BaseURL + normalizePath(path)
	s.logger.Infof("Visiting %s", url)
	if err := s.wd.Get(url); err != nil {
		return s.fail(FailureInteraction, fmt.Sprintf("unable to visit: '%s'", url))
	}
	return nil
}

// normalizePath ensures a leading slash so paths can be appended to
// the base URL directly. Idempotent.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// ExpectElement - waits for an element matching selector to exist and
// become visible, then, when a text match is given, for its text to
// satisfy it. The located element is returned on success; ownership
// passes to the caller. Every interaction method is built on this.
func (s *Session) ExpectElement(ctx context.Context, selector string, text ...entities.Match) (selenium.WebElement, error) {
	var el selenium.WebElement
	found := s.waitUntil(ctx, func() (bool, error) {
		e, err := s.wd.FindElement(selenium.ByCSSSelector, selector)
		if err != nil {
			return false, err
		}
		el = e
		return true, nil
	})
	if !found {
		return nil, s.fail(FailureTimeout, expectDescription(selector, text))
	}

	visible := s.waitUntil(ctx, func() (bool, error) {
		return el.IsDisplayed()
	})
	if !visible {
		return nil, s.fail(FailureTimeout, expectDescription(selector, text))
	}

	if len(text) > 0 {
		m := text[0]
		matched := s.waitUntil(ctx, func() (bool, error) {
			actual, err := el.Text()
			if err != nil {
				return false, err
			}
			return m.Test(actual), nil
		})
		if !matched {
			return nil, s.fail(FailureTimeout, expectDescription(selector, text))
		}
	}

	return el, nil
}

// expectDescription names the selector and, when text was expected,
// the match being waited for.
func expectDescription(selector string, text []entities.Match) string {
	if len(text) == 0 {
		return fmt.Sprintf("unable to find element with selector: '%s'", selector)
	}
	return fmt.Sprintf("unable to find element with selector: '%s' whose text %s", selector, text[0].Description())
}

// Click - resolves the element, scrolls it into view and clicks it.
func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.ExpectElement(ctx, selector)
	if err != nil {
		return err
	}

	s.scrollIntoView(el)

	if err := el.Click(); err != nil {
		return s.fail(FailureInteraction, fmt.Sprintf("unable to click selector: '%s'", selector))
	}
	return nil
}

// scrollIntoView centers the element before interacting with it. A
// scroll failure is non-fatal; the subsequent action reports the real
// problem if the element stayed out of reach.
func (s *Session) scrollIntoView(el selenium.WebElement) {
	script := `arguments[0].scrollIntoView({ behavior: 'instant', block: 'center' });`
	if _, err := s.wd.ExecuteScript(script, []interface{}{el}); err != nil {
		s.logger.Warnf("Failed to scroll element into view: %v", err)
	}
}

// FillIn - resolves the element, replaces its content with value and
// optionally follows up with an Enter keystroke.
func (s *Session) FillIn(ctx context.Context, selector, value string, enter bool) error {
	el, err := s.ExpectElement(ctx, selector)
	if err != nil {
		return err
	}

	if err := el.Clear(); err != nil {
		s.logger.Warnf("Failed to clear '%s' before typing: %v", selector, err)
	}

	keys := value
	if enter {
		keys += selenium.EnterKey
	}
	if err := el.SendKeys(keys); err != nil {
		return s.fail(FailureInteraction, fmt.Sprintf("unable to send keys to selector: '%s'", selector))
	}
	return nil
}

// Select - opens the dropdown matching selector, picks the first
// option in document order whose value attribute or visible text
// equals value, clicks it and waits for it to report itself selected.
// Options are inspected concurrently; ties between duplicate options
// still resolve deterministically to the lowest document index.
func (s *Session) Select(ctx context.Context, selector, value string) error {
	el, err := s.ExpectElement(ctx, selector)
	if err != nil {
		return err
	}

	failMsg := fmt.Sprintf("unable to select value/text: '%s' from selector: '%s'", value, selector)

	if err := el.Click(); err != nil {
		return s.fail(FailureInteraction, failMsg)
	}
	options, err := el.FindElements(selenium.ByTagName, "option")
	if err != nil {
		return s.fail(FailureInteraction, failMsg)
	}

	option := matchOption(options, value)
	if option == nil {
		return s.fail(FailureInteraction, failMsg)
	}
	if err := option.Click(); err != nil {
		return s.fail(FailureInteraction, failMsg)
	}

	selected := s.waitUntil(ctx, func() (bool, error) {
		return option.IsSelected()
	})
	if !selected {
		return s.fail(FailureTimeout, failMsg)
	}
	return nil
}

// matchOption fans out one read-only inspection per option and returns
// the first match in document order, or nil when nothing matches.
func matchOption(options []selenium.WebElement, value string) selenium.WebElement {
	matched := make([]bool, len(options))
	var wg sync.WaitGroup
	for i, opt := range options {
		wg.Add(1)
		go func(i int, opt selenium.WebElement) {
			defer wg.Done()
			if v, err := opt.GetAttribute("value"); err == nil && v == value {
				matched[i] = true
				return
			}
			if text, err := opt.Text(); err == nil && text == value {
				matched[i] = true
			}
		}(i, opt)
	}
	wg.Wait()

	for i, ok := range matched {
		if ok {
			return options[i]
		}
	}
	return nil
}

// ExpectTitle - waits for the page title to satisfy the match.
func (s *Session) ExpectTitle(ctx context.Context, m entities.Match) error {
	ok := s.waitUntil(ctx, func() (bool, error) {
		title, err := s.wd.Title()
		if err != nil {
			return false, err
		}
		return m.Test(title), nil
	})
	if !ok {
		return s.fail(FailureTimeout, fmt.Sprintf("title %s", m.NegativeDescription()))
	}
	return nil
}

// ExpectPage - waits for the current URL to satisfy the match. An
// exact match compares against the base URL with the normalized path
// appended; contains and pattern matches compare the raw URL.
func (s *Session) ExpectPage(ctx context.Context, m entities.Match) error {
	expected := m
	if m.IsExact() {
		expected = entities.Is(s.cfg.BaseURL + normalizePath(m.Value()))
	}

	ok := s.waitUntil(ctx, func() (bool, error) {
		url, err := s.wd.CurrentURL()
		if err != nil {
			return false, err
		}
		return expected.Test(url), nil
	})
	if !ok {
		return s.fail(FailureTimeout, fmt.Sprintf("page %s", expected.NegativeDescription()))
	}
	return nil
}

// ExpectStale - waits for the element reference to detach from the
// DOM it was located in.
func (s *Session) ExpectStale(ctx context.Context, el selenium.WebElement) error {
	ok := s.waitUntil(ctx, func() (bool, error) {
		if _, err := el.TagName(); err != nil {
			return isStaleError(err), nil
		}
		return false, nil
	})
	if !ok {
		return s.fail(FailureTimeout, fmt.Sprintf("element is not stale: '%s'", s.ElementSelector(el)))
	}
	return nil
}

func isStaleError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "stale")
}

// ElementSelector - composes a CSS-like description of the element
// from its tag name, id and class attributes: tag, then "#id" when id
// is non-blank, then ".cls1.cls2" with space-separated classes turned
// into dot-separated ones. Pure read, no waiting.
func (s *Session) ElementSelector(el selenium.WebElement) string {
	sel, err := el.TagName()
	if err != nil {
		sel = ""
	}
	if id, err := el.GetAttribute("id"); err == nil && strings.TrimSpace(id) != "" {
		sel += "#" + id
	}
	if class, err := el.GetAttribute("class"); err == nil && strings.TrimSpace(class) != "" {
		sel += "." + strings.Join(strings.Fields(class), ".")
	}
	return sel
}

// Fail - captures debug artifacts for msg and returns the failure as
// a SessionError. Exposed so tests can report their own assertion
// failures with the same diagnostics attached.
func (s *Session) Fail(msg string) error {
	return s.fail(FailureInteraction, msg)
}

// fail is the unified failure path and the sole owner of debug
// artifact creation. It drains the browser console log, captures a
// screenshot, hands both to the artifact writer and returns an error
// whose message names the artifact location.
func (s *Session) fail(kind FailureKind, msg string) error {
	entries := s.consoleLog()

	screenshot, err := s.wd.Screenshot()
	if err != nil {
		s.logger.Warnf("Failed to capture screenshot: %v", err)
		screenshot = nil
	}

	bundle, saveErr := s.artifacts.Save(msg, entries, screenshot)
	if saveErr != nil {
		s.logger.Warnf("Failed to write debug artifacts: %v", saveErr)
		return &SessionError{Kind: kind, Message: msg}
	}

	s.logger.Errorf("%s (debug artifacts in %s)", msg, bundle.Dir)
	augmented := fmt.Sprintf("%s\ndebug artifacts in %s: %s", msg, bundle.Dir, strings.Join(bundle.Files, ", "))
	return &SessionError{Kind: kind, Message: augmented, ArtifactDir: bundle.Dir}
}

// consoleLog drains the buffered browser console entries.
func (s *Session) consoleLog() []entities.LogEntry {
	messages, err := s.wd.Log(slog.Browser)
	if err != nil {
		s.logger.Warnf("Failed to read browser console log: %v", err)
		return nil
	}

	entries := make([]entities.LogEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, entities.LogEntry{
			Timestamp: m.Timestamp,
			Severity:  string(m.Level),
			Message:   m.Message,
		})
	}
	return entries
}

// waitUntil polls cond every pollInterval until it holds or the
// configured timeout elapses. Condition errors count as "not yet": a
// transiently failing read is indistinguishable from a page still
// settling.
func (s *Session) waitUntil(ctx context.Context, cond func() (bool, error)) bool {
	deadline := time.Now().Add(s.cfg.Timeout)
	for {
		if ok, _ := cond(); ok {
			return true
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			return false
		}
		time.Sleep(pollInterval)
	}
}
