package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"browser_e2e/domain/entities"
	"browser_e2e/domain/interfaces"
)

const (
	logFileName        = "browser.log"
	screenshotFileName = "screenshot.png"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify - lowercases msg and collapses every non-alphanumeric run
// into a single hyphen, trimming hyphens at both ends.
func Slugify(msg string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(msg), "-"), "-")
}

// DebugArtifacts writes failure bundles under a root directory, one
// timestamp-and-slug named directory per failure. Bundles are never
// read back and never cleaned up.
type DebugArtifacts struct {
	fs     afero.Fs
	root   string
	logger *logrus.Logger
	now    func() time.Time
}

// NewDebugArtifacts - creates a writer rooted at root on the real
// filesystem.
func NewDebugArtifacts(root string, logger *logrus.Logger) *DebugArtifacts {
	return &DebugArtifacts{
		fs:     afero.NewOsFs(),
		root:   root,
		logger: logger,
		now:    time.Now,
	}
}

// Save - writes browser.log synchronously and screenshot.png from a
// background goroutine. The screenshot write is best effort: its error
// is logged and delivered on the bundle's channel, never returned.
func (d *DebugArtifacts) Save(msg string, entries []entities.LogEntry, screenshot []byte) (entities.ArtifactBundle, error) {
	dir := filepath.Join(d.root, fmt.Sprintf("%d-%s", d.now().UnixMilli(), Slugify(msg)))
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return entities.ArtifactBundle{}, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Line())
	}
	logPath := filepath.Join(dir, logFileName)
	if err := afero.WriteFile(d.fs, logPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return entities.ArtifactBundle{}, fmt.Errorf("failed to write %s: %w", logFileName, err)
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		if len(screenshot) == 0 {
			return
		}
		shotPath := filepath.Join(dir, screenshotFileName)
		if err := afero.WriteFile(d.fs, shotPath, screenshot, 0o644); err != nil {
			d.logger.Warnf("Failed to write screenshot to %s: %v", shotPath, err)
			done <- err
		}
	}()

	infos, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		d.logger.Warnf("Failed to list artifact directory %s: %v", dir, err)
	}
	files := make([]string, 0, len(infos))
	for _, info := range infos {
		files = append(files, info.Name())
	}

	return entities.ArtifactBundle{Dir: dir, Files: files, ScreenshotWritten: done}, nil
}

// Ensure DebugArtifacts implements ArtifactWriter interface
var _ interfaces.ArtifactWriter = (*DebugArtifacts)(nil)
