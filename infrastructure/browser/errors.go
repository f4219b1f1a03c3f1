package browser

import "fmt"

// FailureKind distinguishes the broad classes of session failure so
// callers can branch without matching on message text.
type FailureKind string

const (
	// FailureSetup - the session could not be created.
	FailureSetup FailureKind = "setup"
	// FailureTimeout - a wait condition did not hold within the timeout.
	FailureTimeout FailureKind = "timeout"
	// FailureInteraction - an action failed for a reason other than a
	// timeout, e.g. the element was not interactable.
	FailureInteraction FailureKind = "interaction"
)

// SessionError is returned by every failed session operation. Message
// already names the debug artifact location when a bundle was written.
type SessionError struct {
	Kind        FailureKind
	Message     string
	ArtifactDir string
	Err         error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
