// Package memory provides process-local repositories for URLs, click
// ledgers and collected log entries.
//
// URL and click data are indexed by short code in independent keyed maps.
// Every entry carries its own lock, so operations on different short codes
// never contend with each other.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

type urlRecord struct {
	mu  sync.Mutex
	seq uint64
	url entity.URL
}

func (r *urlRecord) snapshot() entity.URL {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.url
}

// URLRepository stores shortened URLs keyed by short code.
// Records are never removed: an expired short code stays allocated.
type URLRepository struct {
	urls sync.Map // map[string]*urlRecord
	seq  atomic.Uint64
}

func NewURLRepository() *URLRepository {
	return &URLRepository{}
}

// Save inserts the URL unless its short code is already allocated.
// The existence check and the insert are one atomic step.
func (r *URLRepository) Save(_ context.Context, url entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.Save"

	rec := &urlRecord{seq: r.seq.Add(1), url: url}

	if _, loaded := r.urls.LoadOrStore(url.ShortCode, rec); loaded {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	return &url, nil
}

func (r *URLRepository) RetrieveByShortCode(_ context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveByShortCode"

	rec, ok := r.load(shortCode)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	url := rec.snapshot()
	return &url, nil
}

// RetrieveAndUpdateStats resolves a short code for a redirect at the given instant.
// While the record is locked it rejects expired URLs, calls record and, only when
// record succeeds, increments the access count. Concurrent redirects of the same
// short code are serialised, so every successful call accounts exactly one access.
func (r *URLRepository) RetrieveAndUpdateStats(
	_ context.Context,
	shortCode string,
	now time.Time,
	record func(url entity.URL) error,
) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.RetrieveAndUpdateStats"

	rec, ok := r.load(shortCode)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.url.IsExpired(now) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLExpired)
	}

	if record != nil {
		if err := record(rec.url); err != nil {
			return nil, fmt.Errorf("%s: failed to record access: %w", op, err)
		}
	}

	rec.url.AccessCount++

	url := rec.url
	return &url, nil
}

// List returns a snapshot of all URLs in creation order.
func (r *URLRepository) List(_ context.Context) ([]entity.URL, error) {
	var recs []*urlRecord

	r.urls.Range(func(_, value any) bool {
		recs = append(recs, value.(*urlRecord))
		return true
	})

	slices.SortFunc(recs, func(a, b *urlRecord) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})

	urls := make([]entity.URL, 0, len(recs))
	for _, rec := range recs {
		urls = append(urls, rec.snapshot())
	}

	return urls, nil
}

func (r *URLRepository) load(shortCode string) (*urlRecord, bool) {
	v, ok := r.urls.Load(shortCode)
	if !ok {
		return nil, false
	}
	return v.(*urlRecord), true
}
