package entity

import (
	"time"
)

// DateLayout is the ISO form used for every date leaving the service
const DateLayout = "2006-01-02"

// ExchangeQuery is a validated request for one currency rate
type ExchangeQuery struct {
	CurrencyCode  string
	RequestedDate time.Time
}

// ExchangeRecord is one dated entry of the central bank feed.
// Rate keeps the feed's decimal-comma text so the price format can be checked after selection.
type ExchangeRecord struct {
	Date    time.Time
	Rate    string
	Nominal int
}

// ExchangeResult is the rate returned for a query
type ExchangeResult struct {
	Code string  `json:"code"`
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// CalendarDate strips the clock part of t, keeping the year, month and day
// as seen in t's own location. The result is midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
