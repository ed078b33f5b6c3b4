package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shorturls/internal/entity"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Save(ctx context.Context, url entity.URL) (*entity.URL, error) {
	args := r.Called(ctx, url)
	saved, _ := args.Get(0).(*entity.URL)
	return saved, args.Error(1)
}

func (r *MockURLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

// RetrieveAndUpdateStats follows the repository contract: record is only
// called when the lookup succeeds, and its error fails the whole call.
func (r *MockURLRepository) RetrieveAndUpdateStats(
	ctx context.Context,
	shortCode string,
	now time.Time,
	record func(url entity.URL) error,
) (*entity.URL, error) {
	args := r.Called(ctx, shortCode, now)
	url, _ := args.Get(0).(*entity.URL)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	if err := record(*url); err != nil {
		return nil, err
	}

	return url, nil
}

func (r *MockURLRepository) List(ctx context.Context) ([]entity.URL, error) {
	args := r.Called(ctx)
	urls, _ := args.Get(0).([]entity.URL)
	return urls, args.Error(1)
}

type MockClickRepository struct {
	mock.Mock
}

func (r *MockClickRepository) Init(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

func (r *MockClickRepository) Append(ctx context.Context, shortCode string, click entity.Click) error {
	args := r.Called(ctx, shortCode, click)
	return args.Error(0)
}

func (r *MockClickRepository) Stats(ctx context.Context, shortCode string) (*entity.ClickStats, error) {
	args := r.Called(ctx, shortCode)
	stats, _ := args.Get(0).(*entity.ClickStats)
	return stats, args.Error(1)
}

type MockLogRepository struct {
	mock.Mock
}

func (r *MockLogRepository) Save(ctx context.Context, entry entity.LogEntry) (*entity.LogEntry, error) {
	args := r.Called(ctx, entry)
	saved, _ := args.Get(0).(*entity.LogEntry)
	return saved, args.Error(1)
}

func (r *MockLogRepository) Find(ctx context.Context, filter entity.LogFilter) (int, []entity.LogEntry, error) {
	args := r.Called(ctx, filter)
	entries, _ := args.Get(1).([]entity.LogEntry)
	return args.Int(0), entries, args.Error(2)
}

func (r *MockLogRepository) Clear(ctx context.Context) (int, error) {
	args := r.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (r *MockLogRepository) Count(ctx context.Context) (int, error) {
	args := r.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (r *MockLogRepository) Stats(ctx context.Context) (*entity.LogStats, error) {
	args := r.Called(ctx)
	stats, _ := args.Get(0).(*entity.LogStats)
	return stats, args.Error(1)
}
