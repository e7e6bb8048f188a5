// internal/application/service/lookup_service_test.go
package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/repository"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/middleware"
	"github.com/damon-houk/cbr-exchange-rate/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	ctx := middleware.WithRequestID(context.Background(), "req-1")
	usd := &entity.ExchangeResult{Code: "R01235", Date: "2021-01-01", Rate: 73.8757}
	// the shared call runs detached from cancellation but keeps the request's values
	sameRequest := mock.MatchedBy(func(c context.Context) bool {
		return middleware.GetRequestID(c) == "req-1"
	})

	t.Run("Successful lookup is journaled", func(t *testing.T) {
		rates := new(mocks.MockRateGetter)
		repo := new(mocks.MockLookupRepository)
		svc := NewLookupService(rates, repo, logger.NewJSONLogger(&bytes.Buffer{}, logger.DebugLevel))

		rates.On("GetRate", sameRequest, "R01235", "2021-01-04").Return(usd, nil).Once()
		repo.On("Store", sameRequest, mock.MatchedBy(func(l *entity.Lookup) bool {
			return l.Code == "R01235" && l.RequestedDate == "2021-01-04" && l.RateDate == "2021-01-01" && l.RequestID == "req-1"
		})).Return(nil).Once()

		lookup, err := svc.Lookup(ctx, "R01235", "2021-01-04")

		require.NoError(t, err)
		assert.Equal(t, *usd, lookup.Result())
		id, err := uuid.Parse(lookup.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), id.Version())
		rates.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Journal failure does not fail the lookup", func(t *testing.T) {
		var buf bytes.Buffer
		rates := new(mocks.MockRateGetter)
		repo := new(mocks.MockLookupRepository)
		svc := NewLookupService(rates, repo, logger.NewJSONLogger(&buf, logger.InfoLevel))

		rates.On("GetRate", sameRequest, "R01235", "").Return(usd, nil).Once()
		repo.On("Store", sameRequest, mock.Anything).Return(errors.New("disk full")).Once()

		lookup, err := svc.Lookup(ctx, "R01235", "")

		require.NoError(t, err)
		assert.Equal(t, 73.8757, lookup.Rate)
		assert.Contains(t, buf.String(), "disk full")
	})

	t.Run("Rate errors keep their kind", func(t *testing.T) {
		var buf bytes.Buffer
		rates := new(mocks.MockRateGetter)
		repo := new(mocks.MockLookupRepository)
		svc := NewLookupService(rates, repo, logger.NewJSONLogger(&buf, logger.InfoLevel))

		diag := apperrors.XMLDiagnostic{Line: 2, Column: 7, Message: "unexpected EOF"}
		rates.On("GetRate", sameRequest, "R01235", "2021-01-01").
			Return(nil, apperrors.NewXML("failed to decode feed response", errors.New("unexpected EOF"), diag)).Once()

		lookup, err := svc.Lookup(ctx, "R01235", "2021-01-01")

		assert.Nil(t, lookup)
		assert.True(t, errors.Is(err, apperrors.ErrXML))
		assert.Contains(t, err.Error(), "failed to get exchange rate")
		assert.Contains(t, buf.String(), `"xml_line":2`)
		repo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	})
}

func TestLookupCollapsesConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	rates := new(mocks.MockRateGetter)
	repo := new(mocks.MockLookupRepository)
	svc := NewLookupService(rates, repo, logger.NewJSONLogger(&bytes.Buffer{}, logger.InfoLevel))

	release := make(chan struct{})
	rates.On("GetRate", mock.Anything, "R01239", "2021-01-16").
		Run(func(args mock.Arguments) { <-release }).
		Return(&entity.ExchangeResult{Code: "R01239", Date: "2021-01-16", Rate: 89.2546}, nil)
	repo.On("Store", mock.Anything, mock.Anything).Return(nil)

	const callers = 5
	var wg sync.WaitGroup
	ids := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lookup, err := svc.Lookup(ctx, "R01239", "2021-01-16")
			if assert.NoError(t, err) {
				ids[i] = lookup.ID
			}
		}(i)
	}

	// let every caller join the in-flight call before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	rates.AssertNumberOfCalls(t, "GetRate", 1)
	repo.AssertNumberOfCalls(t, "Store", 1)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestLookupSurvivesCancelledFirstCaller(t *testing.T) {
	rates := new(mocks.MockRateGetter)
	repo := new(mocks.MockLookupRepository)
	svc := NewLookupService(rates, repo, logger.NewJSONLogger(&bytes.Buffer{}, logger.InfoLevel))

	started := make(chan struct{})
	release := make(chan struct{})
	var sharedCtxErr error
	rates.On("GetRate", mock.Anything, "R01235", "2021-01-04").
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			sharedCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(&entity.ExchangeResult{Code: "R01235", Date: "2021-01-01", Rate: 73.8757}, nil).Once()
	repo.On("Store", mock.Anything, mock.Anything).Return(nil).Once()

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Lookup(firstCtx, "R01235", "2021-01-04")
		firstErr <- err
	}()
	<-started

	type outcome struct {
		lookup *entity.Lookup
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		lookup, err := svc.Lookup(context.Background(), "R01235", "2021-01-04")
		second <- outcome{lookup, err}
	}()

	// let the second caller join before the first one gives up
	time.Sleep(50 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second

	require.NoError(t, got.err)
	assert.Equal(t, 73.8757, got.lookup.Rate)
	assert.NoError(t, sharedCtxErr)
	rates.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestGetLookup(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockLookupRepository)
	svc := NewLookupService(new(mocks.MockRateGetter), repo, logger.NewJSONLogger(&bytes.Buffer{}, logger.InfoLevel))

	stored := &entity.Lookup{ID: "id-1", Code: "R01235", RateDate: "2021-01-01", Rate: 73.8757}
	repo.On("FindByID", ctx, "id-1").Return(stored, nil).Once()
	repo.On("FindByID", ctx, "missing").Return(nil, repository.ErrLookupNotFound).Once()
	repo.On("ListRecent", ctx, 10).Return([]*entity.Lookup{stored}, nil).Once()

	found, err := svc.GetLookup(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, stored, found)

	_, err = svc.GetLookup(ctx, "missing")
	assert.True(t, errors.Is(err, repository.ErrLookupNotFound))

	recent, err := svc.RecentLookups(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	repo.AssertExpectations(t)
}
