package collector

import (
	"time"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const recentMessageLength = 50

type logResponse struct {
	ID        int64     `json:"id"`
	Stack     string    `json:"stack"`
	Level     string    `json:"level"`
	Package   string    `json:"package"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Received  time.Time `json:"received"`
}

func toLogResponses(entries []entity.LogEntry) []logResponse {
	resp := make([]logResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, logResponse{
			ID:        e.ID,
			Stack:     e.Stack,
			Level:     e.Level,
			Package:   e.Package,
			Message:   e.Message,
			Timestamp: e.Timestamp,
			Service:   e.Service,
			Received:  e.Received,
		})
	}
	return resp
}

type collectResponse struct {
	Success bool   `json:"success"`
	LogID   int64  `json:"logId"`
	Message string `json:"message"`
}

type queryResponse struct {
	Total    int           `json:"total"`
	Returned int           `json:"returned"`
	Logs     []logResponse `json:"logs"`
}

type clearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Uptime    float64   `json:"uptime"`
	LogsCount int       `json:"logs_count"`
	Timestamp time.Time `json:"timestamp"`
}

type recentActivity struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Package   string    `json:"package"`
	Message   string    `json:"message"`
}

type statsResponse struct {
	TotalLogs      int              `json:"total_logs"`
	LogsByLevel    map[string]int   `json:"logs_by_level"`
	LogsByPackage  map[string]int   `json:"logs_by_package"`
	RecentActivity []recentActivity `json:"recent_activity"`
}

func toStatsResponse(stats *entity.LogStats) statsResponse {
	recent := make([]recentActivity, 0, len(stats.RecentActivity))
	for _, e := range stats.RecentActivity {
		recent = append(recent, recentActivity{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Package:   e.Package,
			Message:   truncate(e.Message, recentMessageLength),
		})
	}

	return statsResponse{
		TotalLogs:      stats.Total,
		LogsByLevel:    stats.ByLevel,
		LogsByPackage:  stats.ByPackage,
		RecentActivity: recent,
	}
}

// truncate cuts s to n runes and marks the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
