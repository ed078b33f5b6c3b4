package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vadimbarashkov/shorturls/internal/entity"
)

type clickLedger struct {
	mu     sync.RWMutex
	clicks []entity.Click
}

// ClickRepository keeps an append-only click ledger per short code.
// The total of a ledger is derived from its events, so the two can never disagree.
type ClickRepository struct {
	ledgers sync.Map // map[string]*clickLedger
}

func NewClickRepository() *ClickRepository {
	return &ClickRepository{}
}

// Init creates an empty ledger for the short code. An existing ledger is left untouched.
func (r *ClickRepository) Init(_ context.Context, shortCode string) error {
	r.ledgers.LoadOrStore(shortCode, &clickLedger{})
	return nil
}

func (r *ClickRepository) Append(_ context.Context, shortCode string, click entity.Click) error {
	const op = "adapter.repository.memory.ClickRepository.Append"

	ledger, ok := r.load(shortCode)
	if !ok {
		return fmt.Errorf("%s: no ledger for short code %q: %w", op, shortCode, entity.ErrURLNotFound)
	}

	ledger.mu.Lock()
	ledger.clicks = append(ledger.clicks, click)
	ledger.mu.Unlock()

	return nil
}

func (r *ClickRepository) Stats(_ context.Context, shortCode string) (*entity.ClickStats, error) {
	const op = "adapter.repository.memory.ClickRepository.Stats"

	ledger, ok := r.load(shortCode)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	ledger.mu.RLock()
	clicks := slices.Clone(ledger.clicks)
	ledger.mu.RUnlock()

	if clicks == nil {
		clicks = []entity.Click{}
	}

	return &entity.ClickStats{
		TotalClicks: int64(len(clicks)),
		Clicks:      clicks,
	}, nil
}

func (r *ClickRepository) load(shortCode string) (*clickLedger, bool) {
	v, ok := r.ledgers.Load(shortCode)
	if !ok {
		return nil, false
	}
	return v.(*clickLedger), true
}
