package entity

import "time"

// DirectReferrer is recorded as the source of a click that carries no referrer.
const DirectReferrer = "direct"

// Visit describes the request that follows a short link.
type Visit struct {
	Referrer   string
	UserAgent  string
	ClientAddr string
}

// Click is a single recorded redirect.
type Click struct {
	ID         string
	Timestamp  time.Time
	Referrer   string
	UserAgent  string
	ClientAddr string
}

// ClickStats is the click ledger of a short code.
type ClickStats struct {
	TotalClicks int64
	Clicks      []Click
}
