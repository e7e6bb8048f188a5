package handler

import "github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"

// RateResponse represents the response for the rate endpoints
type RateResponse struct {
	Code     string  `json:"code"`
	Date     string  `json:"date"`
	Rate     float64 `json:"rate"`
	LookupID string  `json:"lookup_id"`
}

// LookupResponse represents one journal entry
type LookupResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	RequestedDate string  `json:"requested_date,omitempty"`
	RateDate      string  `json:"rate_date"`
	Rate          float64 `json:"rate"`
	RequestID     string  `json:"request_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// LookupListResponse represents the response for the journal listing
type LookupListResponse struct {
	Lookups []LookupResponse `json:"lookups"`
	Count   int              `json:"count"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

func toLookupResponse(l *entity.Lookup) LookupResponse {
	return LookupResponse{
		ID:            l.ID,
		Code:          l.Code,
		RequestedDate: l.RequestedDate,
		RateDate:      l.RateDate,
		Rate:          l.Rate,
		RequestID:     l.RequestID,
		CreatedAt:     l.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
