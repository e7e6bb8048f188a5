package handler

import (
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires the rate routes behind the request ID, logging and recovery middleware.
// Recovery runs inside logging so a panicking request still logs its response.
func NewRouter(rates *RateHandler, log logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.RecoveryMiddleware(log),
	)
	rates.RegisterRoutes(router)
	return router
}
