// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRateFeed mocks the RateFeed interface
type MockRateFeed struct {
	mock.Mock
}

func (m *MockRateFeed) QueryURL(date time.Time, currency string) string {
	args := m.Called(date, currency)
	return args.String(0)
}

func (m *MockRateFeed) FetchRecords(ctx context.Context, url string) ([]entity.ExchangeRecord, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExchangeRecord), args.Error(1)
}

// MockRateGetter mocks the rate retrieval used by the lookup service
type MockRateGetter struct {
	mock.Mock
}

func (m *MockRateGetter) GetRate(ctx context.Context, currency, date string) (*entity.ExchangeResult, error) {
	args := m.Called(ctx, currency, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExchangeResult), args.Error(1)
}

// MockLookupRepository mocks the LookupRepository interface
type MockLookupRepository struct {
	mock.Mock
}

func (m *MockLookupRepository) Store(ctx context.Context, lookup *entity.Lookup) error {
	args := m.Called(ctx, lookup)
	return args.Error(0)
}

func (m *MockLookupRepository) FindByID(ctx context.Context, id string) (*entity.Lookup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lookup), args.Error(1)
}

func (m *MockLookupRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Lookup, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lookup), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
