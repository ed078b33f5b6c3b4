package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/shorturls/internal/entity"
)

const maxRetries = 10

var (
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")
	ErrClickNotRecorded   = errors.New("click not recorded")
)

type urlRepository interface {
	Save(ctx context.Context, url entity.URL) (*entity.URL, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string, now time.Time, record func(url entity.URL) error) (*entity.URL, error)
	List(ctx context.Context) ([]entity.URL, error)
}

type clickRepository interface {
	Init(ctx context.Context, shortCode string) error
	Append(ctx context.Context, shortCode string, click entity.Click) error
	Stats(ctx context.Context, shortCode string) (*entity.ClickStats, error)
}

type Option func(*URLUseCase)

func WithShortCodeLength(n int) Option {
	return func(uc *URLUseCase) {
		uc.shortCodeLength = n
	}
}

// WithDefaultValidity sets the validity in minutes applied when a request omits it.
func WithDefaultValidity(minutes int) Option {
	return func(uc *URLUseCase) {
		uc.defaultValidity = minutes
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *URLUseCase) {
		uc.now = now
	}
}

// URLUseCase coordinates the URL registry and the click ledger.
type URLUseCase struct {
	shortCodeLength int
	defaultValidity int
	now             func() time.Time
	validate        *validator.Validate
	urlRepo         urlRepository
	clickRepo       clickRepository
}

func New(urlRepo urlRepository, clickRepo clickRepository, opts ...Option) *URLUseCase {
	uc := &URLUseCase{
		shortCodeLength: defaultShortCodeLength,
		defaultValidity: entity.DefaultValidity,
		now:             time.Now,
		validate:        newValidate(),
		urlRepo:         urlRepo,
		clickRepo:       clickRepo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ShortenURL validates the input and allocates a short code for it. A requested
// short code is used as is; otherwise random codes are drawn until an unused one
// is found. Nothing is stored when validation fails.
func (uc *URLUseCase) ShortenURL(ctx context.Context, in entity.ShortenInput) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	if err := uc.validateInput(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	validity := uc.defaultValidity
	if in.Validity != nil {
		validity = *in.Validity
	}

	now := uc.now().UTC()
	url := entity.URL{
		OriginalURL:     in.OriginalURL,
		ValidityMinutes: validity,
		CreatedAt:       now,
		ExpiresAt:       now.Add(time.Duration(validity) * time.Minute),
	}

	if in.ShortCode != nil {
		url.ShortCode = *in.ShortCode

		saved, err := uc.save(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return saved, nil
	}

	for range maxRetries {
		shortCode, err := generateShortCode(uc.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url.ShortCode = shortCode

		saved, err := uc.save(ctx, url)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return saved, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// save creates the ledger before the record becomes visible, so a redirect can
// never find a record without a ledger.
func (uc *URLUseCase) save(ctx context.Context, url entity.URL) (*entity.URL, error) {
	if err := uc.clickRepo.Init(ctx, url.ShortCode); err != nil {
		return nil, err
	}

	return uc.urlRepo.Save(ctx, url)
}

// ResolveShortCode resolves a short code for a redirect and records the visit.
// The click is appended and the access count incremented as one unit; if the
// click cannot be recorded the redirect fails.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string, visit entity.Visit) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	now := uc.now().UTC()

	referrer := visit.Referrer
	if referrer == "" {
		referrer = entity.DirectReferrer
	}

	click := entity.Click{
		ID:         uuid.NewString(),
		Timestamp:  now,
		Referrer:   referrer,
		UserAgent:  visit.UserAgent,
		ClientAddr: visit.ClientAddr,
	}

	url, err := uc.urlRepo.RetrieveAndUpdateStats(ctx, shortCode, now, func(entity.URL) error {
		if err := uc.clickRepo.Append(ctx, shortCode, click); err != nil {
			return fmt.Errorf("%w: %v", ErrClickNotRecorded, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLStats returns the URL and its click ledger. Expired URLs remain readable.
func (uc *URLUseCase) GetURLStats(ctx context.Context, shortCode string) (*entity.URLReport, error) {
	const op = "usecase.URLUseCase.GetURLStats"

	url, err := uc.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	stats, err := uc.clickRepo.Stats(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return &entity.URLReport{URL: *url, Stats: *stats}, nil
}

// ListURLs returns every URL with its click total and whether it has expired.
func (uc *URLUseCase) ListURLs(ctx context.Context) ([]entity.URLSummary, error) {
	const op = "usecase.URLUseCase.ListURLs"

	urls, err := uc.urlRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	now := uc.now().UTC()
	summaries := make([]entity.URLSummary, 0, len(urls))

	for _, url := range urls {
		stats, err := uc.clickRepo.Stats(ctx, url.ShortCode)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get stats of %q: %w", op, url.ShortCode, err)
		}

		summaries = append(summaries, entity.URLSummary{
			URL:         url,
			TotalClicks: stats.TotalClicks,
			IsExpired:   url.IsExpired(now),
		})
	}

	return summaries, nil
}

func (uc *URLUseCase) validateInput(in entity.ShortenInput) error {
	return validateStruct(uc.validate, in)
}

// validateStruct converts validator failures into an *entity.ValidationError.
func validateStruct(validate *validator.Validate, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	validationErr := &entity.ValidationError{}
	for _, e := range errs {
		validationErr.Fields = append(validationErr.Fields, entity.FieldError{
			Field: e.Field(),
			Tag:   e.Tag(),
			Param: e.Param(),
		})
	}

	return validationErr
}

func newValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}
