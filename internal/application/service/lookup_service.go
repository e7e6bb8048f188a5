// Package service internal/application/service/lookup_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/repository"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// RateGetter is the rate retrieval the lookup service builds on
type RateGetter interface {
	GetRate(ctx context.Context, currency, date string) (*entity.ExchangeResult, error)
}

// LookupService serves rates to callers and journals what it served
type LookupService struct {
	rates  RateGetter
	repo   repository.LookupRepository
	logger logger.Logger
	group  singleflight.Group
}

// NewLookupService creates a new lookup service
func NewLookupService(rates RateGetter, repo repository.LookupRepository, log logger.Logger) *LookupService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &LookupService{
		rates:  rates,
		repo:   repo,
		logger: log,
	}
}

// Lookup retrieves the rate of currency on date and records it in the journal.
// Identical calls in flight at the same time share one feed request.
func (s *LookupService) Lookup(ctx context.Context, currency, date string) (*entity.Lookup, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Info("Looking up exchange rate", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
		"date":       date,
	})

	// The shared call outlives any one caller; each caller still stops waiting on its own context.
	ch := s.group.DoChan(currency+"|"+date, func() (interface{}, error) {
		return s.lookup(context.WithoutCancel(ctx), currency, date)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		s.logFailure(requestID, currency, date, ctx.Err())
		return nil, fmt.Errorf("failed to get exchange rate: %w", ctx.Err())
	}

	if res.Err != nil {
		s.logFailure(requestID, currency, date, res.Err)
		return nil, fmt.Errorf("failed to get exchange rate: %w", res.Err)
	}

	lookup := res.Val.(*entity.Lookup)
	shared := res.Shared

	s.logger.Info("Exchange rate found", map[string]interface{}{
		"request_id": requestID,
		"lookup_id":  lookup.ID,
		"currency":   lookup.Code,
		"rate_date":  lookup.RateDate,
		"rate":       lookup.Rate,
		"shared":     shared,
	})

	return lookup, nil
}

func (s *LookupService) lookup(ctx context.Context, currency, date string) (*entity.Lookup, error) {
	result, err := s.rates.GetRate(ctx, currency, date)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	lookup := &entity.Lookup{
		ID:            id.String(),
		Code:          result.Code,
		RequestedDate: date,
		RateDate:      result.Date,
		Rate:          result.Rate,
		RequestID:     middleware.GetRequestID(ctx),
		CreatedAt:     time.Now().UTC(),
	}

	// the rate is still served when the journal is unavailable
	if err := s.repo.Store(ctx, lookup); err != nil {
		s.logger.Warn("Failed to journal lookup", map[string]interface{}{
			"request_id": lookup.RequestID,
			"lookup_id":  lookup.ID,
			"error":      err.Error(),
		})
	}

	return lookup, nil
}

func (s *LookupService) logFailure(requestID, currency, date string, err error) {
	fields := map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
		"date":       date,
		"kind":       apperrors.KindOf(err).String(),
		"error":      err.Error(),
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindXML {
		fields["xml_line"] = appErr.Diagnostic.Line
		fields["xml_column"] = appErr.Diagnostic.Column
		fields["xml_message"] = appErr.Diagnostic.Message
		s.logger.Error("Feed request failed", fields)
		return
	}

	s.logger.Warn("Exchange rate lookup rejected", fields)
}

// GetLookup retrieves a journal entry by ID
func (s *LookupService) GetLookup(ctx context.Context, id string) (*entity.Lookup, error) {
	lookup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lookup: %w", err)
	}
	return lookup, nil
}

// RecentLookups returns up to limit journal entries, newest first
func (s *LookupService) RecentLookups(ctx context.Context, limit int) ([]*entity.Lookup, error) {
	lookups, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	return lookups, nil
}
