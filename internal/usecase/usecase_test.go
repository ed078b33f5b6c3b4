package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shorturls/internal/entity"
)

var shortCodePattern = regexp.MustCompile(`^[0-9A-Za-z]{6}$`)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown    error
	now           time.Time
	urlRepoMock   *MockURLRepository
	clickRepoMock *MockClickRepository
	uc            *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	suite.clickRepoMock = new(MockClickRepository)
	suite.uc = New(suite.urlRepoMock, suite.clickRepoMock, WithClock(func() time.Time {
		return suite.now
	}))
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
	suite.clickRepoMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	suite.Run("invalid url", func() {
		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{OriginalURL: "not a url"})

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInvalidInput)
		suite.Nil(url)

		var validationErr *entity.ValidationError
		suite.Require().ErrorAs(err, &validationErr)
		suite.Equal("url", validationErr.Fields[0].Field)
		suite.urlRepoMock.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
	})

	suite.Run("invalid validity", func() {
		for _, v := range []int{0, -5, entity.MaxValidity + 1} {
			url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{
				OriginalURL: "https://example.com",
				Validity:    intPtr(v),
			})

			suite.ErrorIs(err, entity.ErrInvalidInput, "validity %d", v)
			suite.Nil(url)
		}
	})

	suite.Run("invalid short code", func() {
		for _, code := range []string{"", "abc", "abcdefghijk", "ab-cd", "abc d"} {
			url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{
				OriginalURL: "https://example.com",
				ShortCode:   strPtr(code),
			})

			suite.ErrorIs(err, entity.ErrInvalidInput, "short code %q", code)
			suite.Nil(url)
		}
	})

	suite.Run("short code generation error", func() {
		suite.uc.shortCodeLength = -1

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{OriginalURL: "https://example.com"})

		suite.Error(err)
		suite.Nil(url)
	})

	suite.Run("custom short code exists", func() {
		suite.clickRepoMock.
			On("Init", context.Background(), "abcd").
			Once().
			Return(nil)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Once().
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{
			OriginalURL: "https://example.com",
			ShortCode:   strPtr("abcd"),
		})

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrShortCodeExists)
		suite.Nil(url)
	})

	suite.Run("maximum retries error", func() {
		suite.clickRepoMock.
			On("Init", context.Background(), mock.Anything).
			Times(maxRetries).
			Return(nil)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Times(maxRetries).
			Return(nil, entity.ErrShortCodeExists)

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{OriginalURL: "https://example.com"})

		suite.Error(err)
		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(url)
	})

	suite.Run("retries after collision", func() {
		suite.clickRepoMock.
			On("Init", context.Background(), mock.Anything).
			Twice().
			Return(nil)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Once().
			Return(nil, entity.ErrShortCodeExists)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Once().
			Return(&entity.URL{ShortCode: "Ab3dE6"}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{OriginalURL: "https://example.com"})

		suite.NoError(err)
		suite.Equal("Ab3dE6", url.ShortCode)
	})

	suite.Run("unknown error", func() {
		suite.clickRepoMock.
			On("Init", context.Background(), mock.Anything).
			Once().
			Return(nil)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{OriginalURL: "https://example.com"})

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success with defaults", func() {
		var saved entity.URL

		suite.clickRepoMock.
			On("Init", context.Background(), mock.Anything).
			Once().
			Return(nil)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Once().
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(entity.URL)
			}).
			Return(&entity.URL{ShortCode: "Ab3dE6"}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{OriginalURL: "https://example.com"})

		suite.NoError(err)
		suite.NotNil(url)
		suite.Regexp(shortCodePattern, saved.ShortCode)
		suite.Equal("https://example.com", saved.OriginalURL)
		suite.Equal(entity.DefaultValidity, saved.ValidityMinutes)
		suite.Equal(suite.now, saved.CreatedAt)
		suite.Equal(suite.now.Add(30*time.Minute), saved.ExpiresAt)
		suite.Zero(saved.AccessCount)
	})

	suite.Run("success with custom short code and validity", func() {
		var saved entity.URL

		suite.clickRepoMock.
			On("Init", context.Background(), "abcd").
			Once().
			Return(nil)
		suite.urlRepoMock.
			On("Save", context.Background(), mock.AnythingOfType("entity.URL")).
			Once().
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(entity.URL)
			}).
			Return(&entity.URL{ShortCode: "abcd"}, nil)

		url, err := suite.uc.ShortenURL(context.Background(), entity.ShortenInput{
			OriginalURL: "https://example.com/a",
			Validity:    intPtr(1),
			ShortCode:   strPtr("abcd"),
		})

		suite.NoError(err)
		suite.Equal("abcd", url.ShortCode)
		suite.Equal("abcd", saved.ShortCode)
		suite.Equal(1, saved.ValidityMinutes)
		suite.Equal(suite.now.Add(time.Minute), saved.ExpiresAt)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortCode() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abcd", suite.now).
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abcd", entity.Visit{})

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("url expired", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abcd", suite.now).
			Once().
			Return(nil, entity.ErrURLExpired)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abcd", entity.Visit{})

		suite.ErrorIs(err, entity.ErrURLExpired)
		suite.Nil(url)
	})

	suite.Run("click not recorded", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abcd", suite.now).
			Once().
			Return(&entity.URL{ShortCode: "abcd"}, nil)
		suite.clickRepoMock.
			On("Append", context.Background(), "abcd", mock.AnythingOfType("entity.Click")).
			Once().
			Return(entity.ErrURLNotFound)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abcd", entity.Visit{})

		suite.ErrorIs(err, ErrClickNotRecorded)
		suite.NotErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("direct visit", func() {
		var click entity.Click

		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abcd", suite.now).
			Once().
			Return(&entity.URL{ShortCode: "abcd", OriginalURL: "https://example.com"}, nil)
		suite.clickRepoMock.
			On("Append", context.Background(), "abcd", mock.AnythingOfType("entity.Click")).
			Once().
			Run(func(args mock.Arguments) {
				click = args.Get(2).(entity.Click)
			}).
			Return(nil)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abcd", entity.Visit{
			UserAgent:  "curl/8.0",
			ClientAddr: "10.0.0.1",
		})

		suite.NoError(err)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.NotEmpty(click.ID)
		suite.Equal(suite.now, click.Timestamp)
		suite.Equal(entity.DirectReferrer, click.Referrer)
		suite.Equal("curl/8.0", click.UserAgent)
		suite.Equal("10.0.0.1", click.ClientAddr)
	})

	suite.Run("referred visit", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", context.Background(), "abcd", suite.now).
			Once().
			Return(&entity.URL{ShortCode: "abcd"}, nil)
		suite.clickRepoMock.
			On("Append", context.Background(), "abcd", mock.MatchedBy(func(c entity.Click) bool {
				return c.Referrer == "https://news.example.com"
			})).
			Once().
			Return(nil)

		_, err := suite.uc.ResolveShortCode(context.Background(), "abcd", entity.Visit{Referrer: "https://news.example.com"})

		suite.NoError(err)
	})
}

func (suite *URLUseCaseTestSuite) TestGetURLStats() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", context.Background(), "abcd").
			Once().
			Return(nil, entity.ErrURLNotFound)

		report, err := suite.uc.GetURLStats(context.Background(), "abcd")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(report)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", context.Background(), "abcd").
			Once().
			Return(&entity.URL{ShortCode: "abcd"}, nil)
		suite.clickRepoMock.
			On("Stats", context.Background(), "abcd").
			Once().
			Return(nil, suite.errUnknown)

		report, err := suite.uc.GetURLStats(context.Background(), "abcd")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(report)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", context.Background(), "abcd").
			Once().
			Return(&entity.URL{ShortCode: "abcd", OriginalURL: "https://example.com"}, nil)
		suite.clickRepoMock.
			On("Stats", context.Background(), "abcd").
			Once().
			Return(&entity.ClickStats{
				TotalClicks: 1,
				Clicks:      []entity.Click{{Referrer: entity.DirectReferrer}},
			}, nil)

		report, err := suite.uc.GetURLStats(context.Background(), "abcd")

		suite.NoError(err)
		suite.Equal("abcd", report.URL.ShortCode)
		suite.Equal(int64(1), report.Stats.TotalClicks)
		suite.Len(report.Stats.Clicks, 1)
	})
}

func (suite *URLUseCaseTestSuite) TestListURLs() {
	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("List", context.Background()).
			Once().
			Return(nil, suite.errUnknown)

		urls, err := suite.uc.ListURLs(context.Background())

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(urls)
	})

	suite.Run("stats error", func() {
		suite.urlRepoMock.
			On("List", context.Background()).
			Once().
			Return([]entity.URL{{ShortCode: "live", ExpiresAt: suite.now}}, nil)
		suite.clickRepoMock.
			On("Stats", context.Background(), "live").
			Once().
			Return(nil, suite.errUnknown)

		urls, err := suite.uc.ListURLs(context.Background())

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(urls)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("List", context.Background()).
			Once().
			Return([]entity.URL{
				{ShortCode: "live", ExpiresAt: suite.now},
				{ShortCode: "gone", ExpiresAt: suite.now.Add(-time.Second)},
			}, nil)
		suite.clickRepoMock.
			On("Stats", context.Background(), "live").
			Once().
			Return(&entity.ClickStats{TotalClicks: 3}, nil)
		suite.clickRepoMock.
			On("Stats", context.Background(), "gone").
			Once().
			Return(&entity.ClickStats{TotalClicks: 0}, nil)

		urls, err := suite.uc.ListURLs(context.Background())

		suite.NoError(err)
		suite.Require().Len(urls, 2)
		suite.Equal("live", urls[0].URL.ShortCode)
		suite.Equal(int64(3), urls[0].TotalClicks)
		suite.False(urls[0].IsExpired)
		suite.Equal("gone", urls[1].URL.ShortCode)
		suite.True(urls[1].IsExpired)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
