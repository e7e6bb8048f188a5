package entity

import (
	"time"
)

// Lookup is a journal entry for a rate that was served to a caller
type Lookup struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	RequestedDate string    `json:"requested_date,omitempty"`
	RateDate      string    `json:"rate_date"`
	Rate          float64   `json:"rate"`
	RequestID     string    `json:"request_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Result returns the rate part of the lookup
func (l *Lookup) Result() ExchangeResult {
	return ExchangeResult{
		Code: l.Code,
		Date: l.RateDate,
		Rate: l.Rate,
	}
}
