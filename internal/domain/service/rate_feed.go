package service

import (
	"context"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
)

// RateFeed defines the interface for the central bank rate feed
type RateFeed interface {
	// QueryURL builds the feed URL covering the month that ends on date
	QueryURL(date time.Time, currency string) string

	// FetchRecords performs one request and returns the records in feed order
	FetchRecords(ctx context.Context, url string) ([]entity.ExchangeRecord, error)
}
