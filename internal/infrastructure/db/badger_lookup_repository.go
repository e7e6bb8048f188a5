package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

const lookupPrefix = "lookup:"

// BadgerLookupRepository implements the lookup journal using BadgerDB.
// IDs are UUIDv7, so key order is creation order.
type BadgerLookupRepository struct {
	db *badger.DB
}

// NewBadgerLookupRepository creates a new BadgerDB lookup repository
func NewBadgerLookupRepository(db *badger.DB) *BadgerLookupRepository {
	return &BadgerLookupRepository{db: db}
}

// Open opens (or creates) a BadgerDB at path with badger's own logging disabled
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Store saves a lookup
func (r *BadgerLookupRepository) Store(ctx context.Context, lookup *entity.Lookup) error {
	data, err := json.Marshal(lookup)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(lookupPrefix+lookup.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store lookup: %w", err)
	}

	return nil
}

// FindByID retrieves a lookup by its unique identifier
func (r *BadgerLookupRepository) FindByID(ctx context.Context, id string) (*entity.Lookup, error) {
	var lookup entity.Lookup

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lookupPrefix + id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &lookup)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", repository.ErrLookupNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lookup: %w", err)
	}

	return &lookup, nil
}

// ListRecent returns up to limit lookups, newest first
func (r *BadgerLookupRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Lookup, error) {
	if limit <= 0 {
		return []*entity.Lookup{}, nil
	}

	lookups := make([]*entity.Lookup, 0, limit)
	prefix := []byte(lookupPrefix)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration has to start past the last key with the prefix
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(lookups) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var lookup entity.Lookup
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &lookup)
			})
			if err != nil {
				return err
			}
			lookups = append(lookups, &lookup)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}

	return lookups, nil
}
