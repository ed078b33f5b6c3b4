// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, the click
// events recorded when it is visited, and the log entries accepted by the
// log collector.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when a request carries a malformed URL, validity or short code.
	ErrInvalidInput = errors.New("invalid input")
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrURLExpired is returned when a URL is known but its validity period has passed.
	ErrURLExpired = errors.New("url expired")
)

const (
	// DefaultValidity is the validity period applied when none is requested.
	DefaultValidity = 30
	// MaxValidity is the longest accepted validity period, one year in minutes.
	MaxValidity = 525600
)

// URL represents a shortened URL.
type URL struct {
	ShortCode       string    // ShortCode is the code used to shorten the original URL.
	OriginalURL     string    // OriginalURL is the full URL that the short code resolves to.
	ValidityMinutes int       // ValidityMinutes is the lifetime of the short code in minutes.
	URLStats                  // URLStats contains statistics about the URL.
	CreatedAt       time.Time // CreatedAt is the timestamp when the URL was created.
	ExpiresAt       time.Time // ExpiresAt is CreatedAt plus ValidityMinutes.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	AccessCount int64 // AccessCount is the number of times the shortened URL has been followed.
}

// IsExpired reports whether the URL can no longer be followed at the given instant.
// A URL is still valid exactly at its expiry time.
func (u *URL) IsExpired(now time.Time) bool {
	return now.After(u.ExpiresAt)
}

// ShortenInput holds the parameters of a shorten request.
type ShortenInput struct {
	OriginalURL string  `json:"url" validate:"required,url"`
	Validity    *int    `json:"validity" validate:"omitempty,min=1,max=525600"`
	ShortCode   *string `json:"shortcode" validate:"omitempty,alphanum,min=4,max=10"`
}

// URLReport is a URL together with its click ledger.
type URLReport struct {
	URL   URL
	Stats ClickStats
}

// URLSummary is a single row of the URL listing.
type URLSummary struct {
	URL         URL
	TotalClicks int64
	IsExpired   bool
}
