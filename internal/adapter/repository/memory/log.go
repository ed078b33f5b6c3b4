package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const recentActivitySize = 10

// LogRepository keeps the entries received by the log collector in arrival order.
type LogRepository struct {
	mu      sync.RWMutex
	entries []entity.LogEntry
}

func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

// Save appends the entry and assigns its ID.
func (r *LogRepository) Save(_ context.Context, entry entity.LogEntry) (*entity.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, entry)

	return &entry, nil
}

// Find returns the total number of matching entries and at most filter.Limit of them,
// most recent first.
func (r *LogRepository) Find(_ context.Context, filter entity.LogFilter) (int, []entity.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []entity.LogEntry
	for _, e := range r.entries {
		if filter.Level != "" && e.Level != filter.Level {
			continue
		}
		if filter.Package != "" && e.Package != filter.Package {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	if filter.Limit > 0 && filter.Limit < total {
		matched = matched[total-filter.Limit:]
	}

	result := slices.Clone(matched)
	slices.Reverse(result)

	if result == nil {
		result = []entity.LogEntry{}
	}

	return total, result, nil
}

// Clear removes every entry and returns how many were removed.
func (r *LogRepository) Clear(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	r.entries = nil

	return n, nil
}

func (r *LogRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries), nil
}

func (r *LogRepository) Stats(_ context.Context) (*entity.LogStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &entity.LogStats{
		Total:     len(r.entries),
		ByLevel:   make(map[string]int),
		ByPackage: make(map[string]int),
	}

	for _, e := range r.entries {
		stats.ByLevel[e.Level]++
		stats.ByPackage[e.Package]++
	}

	start := max(len(r.entries)-recentActivitySize, 0)
	stats.RecentActivity = slices.Clone(r.entries[start:])
	if stats.RecentActivity == nil {
		stats.RecentActivity = []entity.LogEntry{}
	}

	return stats, nil
}
