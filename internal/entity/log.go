package entity

import "time"

// LogEntry is a diagnostic event received by the log collector.
type LogEntry struct {
	ID        int64
	Stack     string
	Level     string
	Package   string
	Message   string
	Service   string
	Timestamp time.Time
	Received  time.Time
}

// LogFilter narrows a log query. Zero values match everything.
type LogFilter struct {
	Level   string
	Package string
	Limit   int
}

// LogStats summarises the collected log entries.
type LogStats struct {
	Total          int
	ByLevel        map[string]int
	ByPackage      map[string]int
	RecentActivity []LogEntry
}

// LogInput holds a log entry submitted to the collector.
type LogInput struct {
	Stack     string     `json:"stack" validate:"required"`
	Level     string     `json:"level" validate:"required"`
	Package   string     `json:"package" validate:"required"`
	Message   string     `json:"message" validate:"required"`
	Timestamp *time.Time `json:"timestamp"`
	Service   string     `json:"service"`
}
