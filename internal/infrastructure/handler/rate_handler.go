// Package handler internal/infrastructure/handler/rate_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/damon-houk/cbr-exchange-rate/internal/application/service"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/apperrors"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/repository"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

const (
	defaultLookupLimit = 20
	maxLookupLimit     = 100
)

// RateHandler handles HTTP requests for exchange rates and the lookup journal
type RateHandler struct {
	service         *service.LookupService
	defaultCurrency string
	logger          logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(service *service.LookupService, defaultCurrency string, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		service:         service,
		defaultCurrency: defaultCurrency,
		logger:          log,
	}
}

// GetRate handles retrieving the rate of a currency on a date
func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	currency := mux.Vars(r)["code"]
	if currency == "" {
		currency = h.defaultCurrency
	}
	date := r.URL.Query().Get("date")

	h.logger.Debug("Handling get rate request", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
		"date":       date,
	})

	lookup, err := h.service.Lookup(r.Context(), currency, date)
	if err != nil {
		h.sendRateError(w, err, requestID)
		return
	}

	sendJSON(w, http.StatusOK, RateResponse{
		Code:     lookup.Code,
		Date:     lookup.RateDate,
		Rate:     lookup.Rate,
		LookupID: lookup.ID,
	})
}

// sendRateError maps a retrieval failure kind to an HTTP status
func (h *RateHandler) sendRateError(w http.ResponseWriter, err error, requestID string) {
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput:
		sendErrorResponse(w, h.logger, "Invalid date", cause(err), http.StatusBadRequest, requestID)
	case apperrors.KindBadFormat:
		sendErrorResponse(w, h.logger, "Bad format", cause(err), http.StatusBadRequest, requestID)
	case apperrors.KindEmptyResponse:
		sendErrorResponse(w, h.logger, "No exchange rate available",
			"The central bank returned no rates for this currency code", http.StatusNotFound, requestID)
	case apperrors.KindRateNotYetAnnounced:
		sendErrorResponse(w, h.logger, "Rate not yet announced", cause(err), http.StatusTooEarly, requestID)
	case apperrors.KindXML:
		sendErrorResponse(w, h.logger, "Exchange rate service unavailable",
			"Unable to retrieve exchange rate data from the central bank. Please try again later.",
			http.StatusBadGateway, requestID)
	default:
		h.logger.Error("Unexpected error in rate handler", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
	}
}

// GetLookup handles retrieving a journal entry by ID
func (h *RateHandler) GetLookup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	lookup, err := h.service.GetLookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLookupNotFound) {
			sendErrorResponse(w, h.logger, "Lookup not found",
				"The requested lookup could not be found", http.StatusNotFound, requestID)
			return
		}

		h.logger.Error("Unexpected error in get lookup", map[string]interface{}{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while retrieving the lookup", http.StatusInternalServerError, requestID)
		return
	}

	sendJSON(w, http.StatusOK, toLookupResponse(lookup))
}

// ListLookups handles listing the most recent journal entries
func (h *RateHandler) ListLookups(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit := defaultLookupLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLookupLimit {
			sendErrorResponse(w, h.logger, "Invalid limit",
				"limit must be a number between 1 and 100", http.StatusBadRequest, requestID)
			return
		}
		limit = n
	}

	lookups, err := h.service.RecentLookups(r.Context(), limit)
	if err != nil {
		h.logger.Error("Unexpected error in list lookups", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred while listing lookups", http.StatusInternalServerError, requestID)
		return
	}

	resp := LookupListResponse{Lookups: make([]LookupResponse, 0, len(lookups))}
	for _, l := range lookups {
		resp.Lookups = append(resp.Lookups, toLookupResponse(l))
	}
	resp.Count = len(resp.Lookups)

	sendJSON(w, http.StatusOK, resp)
}

// Health reports that the process is serving
func (h *RateHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates", h.GetRate).Methods("GET")
	router.HandleFunc("/rates/{code}", h.GetRate).Methods("GET")
	router.HandleFunc("/lookups", h.ListLookups).Methods("GET")
	router.HandleFunc("/lookups/{id}", h.GetLookup).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /rates",
			"GET /rates/{code}",
			"GET /lookups",
			"GET /lookups/{id}",
			"GET /health",
		},
	})
}

// cause returns the message of the retrieval error without the service's wrapping
func cause(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}
