package fsm

import "time"

// LogLevel classifies a log entry. Values are the wire tokens used in
// serialized results.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
	LevelSuccess LogLevel = "success"
	LevelDebug   LogLevel = "debug"
)

// LogEntry is one line of the simulation's append-only audit log.
// Entries are never mutated after being appended.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
}
