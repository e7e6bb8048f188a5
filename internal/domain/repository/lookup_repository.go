// Package repository internal/domain/repository/lookup_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
)

// ErrLookupNotFound is returned when no journal entry exists for an ID
var ErrLookupNotFound = errors.New("lookup not found")

// LookupRepository defines the interface for the lookup journal
type LookupRepository interface {
	// Store appends a lookup to the journal
	Store(ctx context.Context, lookup *entity.Lookup) error

	// FindByID retrieves a lookup by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.Lookup, error)

	// ListRecent returns up to limit lookups, newest first
	ListRecent(ctx context.Context, limit int) ([]*entity.Lookup, error)
}
