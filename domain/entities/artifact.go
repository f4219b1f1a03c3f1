package entities

// ArtifactBundle summarizes the debug files written for one failure.
type ArtifactBundle struct {
	// Dir is the directory the bundle was written to.
	Dir string
	// Files lists the directory entries present right after the
	// synchronous writes finished.
	Files []string
	// ScreenshotWritten receives the result of the background
	// screenshot write. Best effort: the writer logs the error, it is
	// never propagated to the failure being reported.
	ScreenshotWritten <-chan error
}
