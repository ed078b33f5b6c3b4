package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const (
	defaultLogLimit = 100
	unknownService  = "unknown"
)

type logRepository interface {
	Save(ctx context.Context, entry entity.LogEntry) (*entity.LogEntry, error)
	Find(ctx context.Context, filter entity.LogFilter) (int, []entity.LogEntry, error)
	Clear(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*entity.LogStats, error)
}

type LogOption func(*LogUseCase)

// WithDefaultLimit sets the number of entries returned when a query has no limit.
func WithDefaultLimit(n int) LogOption {
	return func(uc *LogUseCase) {
		uc.defaultLimit = n
	}
}

func WithLogClock(now func() time.Time) LogOption {
	return func(uc *LogUseCase) {
		uc.now = now
	}
}

// LogUseCase accepts and queries the entries of the log collector.
type LogUseCase struct {
	defaultLimit int
	now          func() time.Time
	validate     *validator.Validate
	repo         logRepository
}

func NewLogUseCase(repo logRepository, opts ...LogOption) *LogUseCase {
	uc := &LogUseCase{
		defaultLimit: defaultLogLimit,
		now:          time.Now,
		validate:     newValidate(),
		repo:         repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Collect validates and stores a log entry. A missing timestamp defaults to
// the time of receipt and a missing service to "unknown".
func (uc *LogUseCase) Collect(ctx context.Context, in entity.LogInput) (*entity.LogEntry, error) {
	const op = "usecase.LogUseCase.Collect"

	if err := validateStruct(uc.validate, in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	received := uc.now().UTC()

	entry := entity.LogEntry{
		Stack:     in.Stack,
		Level:     in.Level,
		Package:   in.Package,
		Message:   in.Message,
		Service:   in.Service,
		Timestamp: received,
		Received:  received,
	}
	if in.Timestamp != nil {
		entry.Timestamp = in.Timestamp.UTC()
	}
	if entry.Service == "" {
		entry.Service = unknownService
	}

	saved, err := uc.repo.Save(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to save log entry: %w", op, err)
	}

	return saved, nil
}

// Query returns the number of matching entries and the most recent of them.
func (uc *LogUseCase) Query(ctx context.Context, filter entity.LogFilter) (int, []entity.LogEntry, error) {
	const op = "usecase.LogUseCase.Query"

	if filter.Limit <= 0 {
		filter.Limit = uc.defaultLimit
	}

	total, entries, err := uc.repo.Find(ctx, filter)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: failed to find log entries: %w", op, err)
	}

	return total, entries, nil
}

func (uc *LogUseCase) Clear(ctx context.Context) (int, error) {
	const op = "usecase.LogUseCase.Clear"

	n, err := uc.repo.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to clear log entries: %w", op, err)
	}

	return n, nil
}

func (uc *LogUseCase) Count(ctx context.Context) (int, error) {
	const op = "usecase.LogUseCase.Count"

	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count log entries: %w", op, err)
	}

	return n, nil
}

func (uc *LogUseCase) Stats(ctx context.Context) (*entity.LogStats, error) {
	const op = "usecase.LogUseCase.Stats"

	stats, err := uc.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get log stats: %w", op, err)
	}

	return stats, nil
}
