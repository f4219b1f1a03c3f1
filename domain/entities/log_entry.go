package entities

import (
	"fmt"
	"time"
)

// LogEntry is one captured browser console message.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
}

// Line renders the entry the way it is written to browser.log.
func (e LogEntry) Line() string {
	return fmt.Sprintf("[%s] (%s) - %s", e.Timestamp.Format(time.RFC3339), e.Severity, e.Message)
}
