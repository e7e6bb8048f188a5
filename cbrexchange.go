// Package cbrexchange retrieves official Central Bank of Russia exchange rates.
//
// A rate is looked up for a currency code such as R01235 (US dollar) on a calendar
// date. Dates on which the bank published nothing resolve to the last published rate.
package cbrexchange

import (
	"context"
	"net/http"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/application/service"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/api"
)

// ServiceName is the name host applications register the client under
const ServiceName = "cbrApiExchange"

// Currency codes of the bank's internal registry
const (
	USD = "R01235"
	EUR = "R01239"
	GBP = "R01035"

	DefaultCurrency = USD
)

// DefaultBaseURL is the cbr.ru dynamic rates endpoint
const DefaultBaseURL = api.DefaultBaseURL

type (
	// Result is a resolved rate: the code asked for, the date the rate was published and its value in rubles
	Result = entity.ExchangeResult
	// Error is a failed retrieval tagged with its Kind
	Error = apperrors.Error
	// Kind identifies which stage of a retrieval failed
	Kind = apperrors.Kind
	// XMLDiagnostic locates a parse failure in the feed document
	XMLDiagnostic = apperrors.XMLDiagnostic
)

// Failure kinds, see Error.Kind
const (
	KindInvalidInput        = apperrors.KindInvalidInput
	KindBadFormat           = apperrors.KindBadFormat
	KindEmptyResponse       = apperrors.KindEmptyResponse
	KindXML                 = apperrors.KindXML
	KindRateNotYetAnnounced = apperrors.KindRateNotYetAnnounced
)

// Sentinels matched by errors.Is against an *Error of the same kind
var (
	ErrInvalidInput        = apperrors.ErrInvalidInput
	ErrBadFormat           = apperrors.ErrBadFormat
	ErrEmptyResponse       = apperrors.ErrEmptyResponse
	ErrXML                 = apperrors.ErrXML
	ErrRateNotYetAnnounced = apperrors.ErrRateNotYetAnnounced
)

type options struct {
	httpClient *http.Client
	baseURL    string
	clock      func() time.Time
	timeout    time.Duration
}

// Option configures a Client
type Option func(*options)

// WithHTTPClient sets the client used for feed requests
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL points the client at another feed endpoint
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithClock sets the source of the current time. Its location decides what "today" is.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithTimeout bounds each feed request. Ignored when WithHTTPClient is given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Client retrieves rates. It is safe for concurrent use.
type Client struct {
	rates *service.RateService
}

// New creates a client for the public cbr.ru feed
func New(opts ...Option) *Client {
	o := options{
		baseURL: DefaultBaseURL,
		clock:   time.Now,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		rates: service.NewRateService(api.NewCBRAPIClient(o.baseURL, httpClient), o.clock),
	}
}

// Get returns the rate of currency on date (YYYY-MM-DD).
// An empty currency means DefaultCurrency and an empty date means today.
func (c *Client) Get(ctx context.Context, currency, date string) (Result, error) {
	if currency == "" {
		currency = DefaultCurrency
	}

	result, err := c.rates.GetRate(ctx, currency, date)
	if err != nil {
		return Result{}, err
	}
	return *result, nil
}

var defaultClient = New()

// Get looks a rate up with a client using the default options
func Get(ctx context.Context, currency, date string) (Result, error) {
	return defaultClient.Get(ctx, currency, date)
}
