package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
)

const (
	currencyPrefix    = "R0"
	currencyMinLength = 6
)

// NormalizeQuery validates the caller's date and currency code against today.
// An empty date means today.
func NormalizeQuery(date, currency string, today time.Time) (entity.ExchangeQuery, error) {
	today = entity.CalendarDate(today)

	requested := today
	if date != "" {
		parsed, err := parseDate(date)
		if err != nil {
			return entity.ExchangeQuery{}, err
		}
		requested = parsed
	}

	if requested.After(today.AddDate(0, 0, 1)) {
		return entity.ExchangeQuery{}, apperrors.Newf(apperrors.KindInvalidInput,
			"invalid date: the date '%s' is too far in the future", requested.Format(entity.DateLayout))
	}

	if !strings.HasPrefix(currency, currencyPrefix) || len(currency) < currencyMinLength {
		return entity.ExchangeQuery{}, apperrors.New(apperrors.KindBadFormat, "currency code unexpected format")
	}

	return entity.ExchangeQuery{
		CurrencyCode:  currency,
		RequestedDate: requested,
	}, nil
}

// parseDate reads Y-M-D with numeric parts of any width, rejecting impossible dates
func parseDate(value string) (time.Time, error) {
	invalid := apperrors.New(apperrors.KindInvalidInput, "invalid date format")

	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return time.Time{}, invalid
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, invalid
		}
		nums[i] = n
	}

	y, m, d := nums[0], nums[1], nums[2]
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, invalid
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, invalid
	}

	return t, nil
}
