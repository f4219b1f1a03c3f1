package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser_e2e/domain/entities"
)

const fixedMillis = 1700000000000

func newMemWriter() (*DebugArtifacts, afero.Fs) {
	fs := afero.NewMemMapFs()
	return newWriterWithFs(fs), fs
}

func newWriterWithFs(fs afero.Fs) *DebugArtifacts {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &DebugArtifacts{
		fs:     fs,
		root:   "tmp/selenium-debug",
		logger: logger,
		now:    func() time.Time { return time.UnixMilli(fixedMillis) },
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "bad-thing", Slugify("Bad Thing!"))
	assert.Equal(t, "already-clean", Slugify("already-clean"))
	assert.Equal(t, "weird-message", Slugify("  --Weird__Message!! "))
	assert.Equal(t, "abc123", Slugify("abc123"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestSaveWritesLogAndScreenshot(t *testing.T) {
	w, fs := newMemWriter()

	when := time.UnixMilli(fixedMillis).UTC()
	entries := []entities.LogEntry{
		{Timestamp: when, Severity: "SEVERE", Message: "boom"},
		{Timestamp: when, Severity: "WARNING", Message: "careful"},
	}

	bundle, err := w.Save("Bad Thing!", entries, []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tmp/selenium-debug", fmt.Sprintf("%d-bad-thing", fixedMillis)), bundle.Dir)

	// The screenshot write is asynchronous; wait for its acknowledgment.
	require.NoError(t, <-bundle.ScreenshotWritten)

	logData, err := afero.ReadFile(fs, filepath.Join(bundle.Dir, "browser.log"))
	require.NoError(t, err)
	lines := strings.Split(string(logData), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "(SEVERE) - boom")
	assert.Contains(t, lines[1], "(WARNING) - careful")

	shot, err := afero.ReadFile(fs, filepath.Join(bundle.Dir, "screenshot.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), shot)

	assert.Contains(t, bundle.Files, "browser.log")
}

func TestSaveWithoutScreenshot(t *testing.T) {
	w, fs := newMemWriter()

	bundle, err := w.Save("no screenshot", nil, nil)
	require.NoError(t, err)
	require.NoError(t, <-bundle.ScreenshotWritten)

	exists, err := afero.Exists(fs, filepath.Join(bundle.Dir, "screenshot.png"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = afero.Exists(fs, filepath.Join(bundle.Dir, "browser.log"))
	require.NoError(t, err)
	assert.True(t, exists)
}

// screenshotFailFs rejects writes to screenshot.png only.
type screenshotFailFs struct {
	afero.Fs
}

func (f *screenshotFailFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if strings.HasSuffix(name, "screenshot.png") {
		return nil, fmt.Errorf("disk full")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestSaveScreenshotFailureIsNotPropagated(t *testing.T) {
	fs := &screenshotFailFs{Fs: afero.NewMemMapFs()}
	w := newWriterWithFs(fs)

	bundle, err := w.Save("screenshot fails", nil, []byte("png-bytes"))
	require.NoError(t, err, "a failing screenshot write must not fail the bundle")

	assert.Error(t, <-bundle.ScreenshotWritten)

	exists, err := afero.Exists(fs, filepath.Join(bundle.Dir, "browser.log"))
	require.NoError(t, err)
	assert.True(t, exists)
}
