package http

import (
	"encoding/json"
	"time"

	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/pkg/response"
)

// unknownLocation is reported for every click; clients are not geolocated.
const unknownLocation = "Unknown"

// shortenRequest represents the structure for a request to shorten a URL.
// Optional fields stay raw so an explicit null can be told apart from an absent field.
type shortenRequest struct {
	URL       string          `json:"url"`
	Validity  json.RawMessage `json:"validity,omitempty"`
	ShortCode json.RawMessage `json:"shortcode,omitempty"`
}

func (req shortenRequest) toInput() (entity.ShortenInput, []response.Detail) {
	in := entity.ShortenInput{OriginalURL: req.URL}

	var details []response.Detail

	if req.Validity != nil {
		var validity int
		if isNull(req.Validity) || json.Unmarshal(req.Validity, &validity) != nil {
			details = append(details, response.Detail{
				Field:   "validity",
				Message: response.MessageForType("int"),
			})
		} else {
			in.Validity = &validity
		}
	}

	if req.ShortCode != nil {
		var shortCode string
		if isNull(req.ShortCode) || json.Unmarshal(req.ShortCode, &shortCode) != nil {
			details = append(details, response.Detail{
				Field:   "shortcode",
				Message: response.MessageForType("string"),
			})
		} else {
			in.ShortCode = &shortCode
		}
	}

	return in, details
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// shortenResponse is returned when a short link is created.
type shortenResponse struct {
	ShortLink string    `json:"shortLink"`
	Expiry    time.Time `json:"expiry"`
}

func toShortenResponse(baseURL string, url *entity.URL) shortenResponse {
	return shortenResponse{
		ShortLink: baseURL + "/shorturls/" + url.ShortCode,
		Expiry:    url.ExpiresAt,
	}
}

type clickData struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Location  string    `json:"location"`
}

// urlStatsResponse represents the analytics of a single short code.
type urlStatsResponse struct {
	ShortCode   string      `json:"shortcode"`
	OriginalURL string      `json:"originalUrl"`
	Created     time.Time   `json:"created"`
	Expiry      time.Time   `json:"expiry"`
	TotalClicks int64       `json:"totalClicks"`
	ClickData   []clickData `json:"clickData"`
}

func toURLStatsResponse(report *entity.URLReport) urlStatsResponse {
	clicks := make([]clickData, 0, len(report.Stats.Clicks))
	for _, c := range report.Stats.Clicks {
		clicks = append(clicks, clickData{
			Timestamp: c.Timestamp,
			Source:    c.Referrer,
			Location:  unknownLocation,
		})
	}

	return urlStatsResponse{
		ShortCode:   report.URL.ShortCode,
		OriginalURL: report.URL.OriginalURL,
		Created:     report.URL.CreatedAt,
		Expiry:      report.URL.ExpiresAt,
		TotalClicks: report.Stats.TotalClicks,
		ClickData:   clicks,
	}
}

// urlSummaryResponse is a single item of the URL listing.
type urlSummaryResponse struct {
	ShortCode   string    `json:"shortcode"`
	OriginalURL string    `json:"originalUrl"`
	Created     time.Time `json:"created"`
	Expiry      time.Time `json:"expiry"`
	TotalClicks int64     `json:"totalClicks"`
	IsExpired   bool      `json:"isExpired"`
}

func toURLSummaryResponses(summaries []entity.URLSummary) []urlSummaryResponse {
	resp := make([]urlSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, urlSummaryResponse{
			ShortCode:   s.URL.ShortCode,
			OriginalURL: s.URL.OriginalURL,
			Created:     s.URL.CreatedAt,
			Expiry:      s.URL.ExpiresAt,
			TotalClicks: s.TotalClicks,
			IsExpired:   s.IsExpired,
		})
	}
	return resp
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
