package interfaces

import "browser_e2e/domain/entities"

// ArtifactWriter persists the debug bundle captured when a session
// operation fails.
type ArtifactWriter interface {
	// Save writes a fresh bundle for the failure message: browser.log
	// with the captured console entries, plus screenshot.png written in
	// the background when screenshot data is present. Bundles are never
	// read back or cleaned up.
	Save(msg string, entries []entities.LogEntry, screenshot []byte) (entities.ArtifactBundle, error)
}
