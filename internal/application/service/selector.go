package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var priceFormat = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// SelectLastRecord takes the latest published rate and checks it against the bank's rules.
// Records must be in feed order and non-empty.
func SelectLastRecord(code string, records []entity.ExchangeRecord, requested, today time.Time) (entity.ExchangeResult, error) {
	if len(records) == 0 {
		return entity.ExchangeResult{}, apperrors.New(apperrors.KindEmptyResponse, "empty API response")
	}

	last := records[len(records)-1]
	lastDate := entity.CalendarDate(last.Date)
	requested = entity.CalendarDate(requested)

	// Tomorrow's rate is announced during the day before. Other dates
	// fall back to the last trading day without a check.
	tomorrow := entity.CalendarDate(today).AddDate(0, 0, 1)
	if requested.Equal(tomorrow) && !lastDate.Equal(requested) {
		return entity.ExchangeResult{}, apperrors.New(apperrors.KindRateNotYetAnnounced,
			"the exchange rate for tomorrow has not yet been announced")
	}

	value := strings.Replace(last.Rate, ",", ".", 1)
	if !priceFormat.MatchString(value) {
		return entity.ExchangeResult{}, apperrors.New(apperrors.KindBadFormat, "currency rate has not the price format")
	}

	rate, err := decimal.NewFromString(value)
	if err != nil {
		return entity.ExchangeResult{}, apperrors.New(apperrors.KindBadFormat, "currency rate has not the price format")
	}
	f, _ := rate.Float64()

	return entity.ExchangeResult{
		Code: code,
		Date: lastDate.Format(entity.DateLayout),
		Rate: f,
	}, nil
}
