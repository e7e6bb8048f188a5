// Package service internal/application/service/rate_service.go
package service

import (
	"context"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	domainservice "github.com/damon-houk/cbr-exchange-rate/internal/domain/service"
)

// Clock returns the current time. Its location decides what "today" is.
type Clock func() time.Time

// RateService retrieves one central bank rate per call.
// It holds no mutable state and never logs; every failure is returned to the caller.
type RateService struct {
	feed  domainservice.RateFeed
	clock Clock
}

// NewRateService creates a new rate service. A nil clock uses time.Now.
func NewRateService(feed domainservice.RateFeed, clock Clock) *RateService {
	if clock == nil {
		clock = time.Now
	}

	return &RateService{
		feed:  feed,
		clock: clock,
	}
}

// GetRate returns the rate of currency on date (YYYY-M-D, empty for today).
// Holidays resolve to the last trading day before them.
func (s *RateService) GetRate(ctx context.Context, currency, date string) (*entity.ExchangeResult, error) {
	today := entity.CalendarDate(s.clock())

	query, err := NormalizeQuery(date, currency, today)
	if err != nil {
		return nil, err
	}

	url := s.feed.QueryURL(query.RequestedDate, query.CurrencyCode)

	records, err := s.feed.FetchRecords(ctx, url)
	if err != nil {
		return nil, err
	}

	result, err := SelectLastRecord(currency, records, query.RequestedDate, today)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
