package internal

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/application/service"
	"github.com/damon-houk/cbr-exchange-rate/internal/domain/entity"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/api"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/db"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
	"github.com/damon-houk/cbr-exchange-rate/internal/testutils"
	"github.com/stretchr/testify/assert"
)

// staticRates answers every lookup from a fixed table without touching the network
type staticRates struct{}

func (staticRates) GetRate(ctx context.Context, currency, date string) (*entity.ExchangeResult, error) {
	rates := map[string]float64{
		"R01235": 73.5453,
		"R01239": 89.2546,
		"R01035": 100.3599,
	}

	rate, ok := rates[currency]
	if !ok {
		return nil, fmt.Errorf("no exchange rate available for %s", currency)
	}

	return &entity.ExchangeResult{Code: currency, Date: date, Rate: rate}, nil
}

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	dbPath, err := os.MkdirTemp("", "badger-perf-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(dbPath)

	badgerDB, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer badgerDB.Close()

	log := logger.NewJSONLogger(io.Discard, logger.ErrorLevel)
	repo := db.NewBadgerLookupRepository(badgerDB)
	lookups := service.NewLookupService(staticRates{}, repo, log)

	numLookups := 100
	concurrency := 10
	perWorker := numLookups / concurrency
	currencies := []string{"R01235", "R01239", "R01035"}

	var (
		mu  sync.Mutex
		ids []string
	)

	t.Run("Lookup Journaling", func(t *testing.T) {
		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					date := time.Date(2021, 1, 1+rand.Intn(28), 0, 0, 0, 0, time.UTC).Format(entity.DateLayout)
					lookup, err := lookups.Lookup(ctx, currencies[(workerID+j)%len(currencies)], date)
					if err != nil {
						t.Logf("Error looking up rate: %v", err)
						continue
					}

					mu.Lock()
					ids = append(ids, lookup.ID)
					mu.Unlock()
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numLookups) / duration.Seconds()
		t.Logf("Lookup journaling: %d lookups in %v (%.2f lookups/sec)",
			numLookups, duration, throughput)
	})

	t.Run("Lookup Retrieval", func(t *testing.T) {
		if len(ids) == 0 {
			t.Skip("no lookups were journaled")
		}

		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					if _, err := lookups.GetLookup(ctx, ids[(workerID*perWorker+j)%len(ids)]); err != nil {
						t.Logf("Error retrieving lookup: %v", err)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		throughput := float64(numLookups) / duration.Seconds()
		t.Logf("Lookup retrieval: %d lookups in %v (%.2f lookups/sec)",
			numLookups, duration, throughput)

		// concurrent identical requests share one journal entry
		unique := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			unique[id] = struct{}{}
		}

		recent, err := lookups.RecentLookups(context.Background(), numLookups)
		assert.NoError(t, err)
		assert.Len(t, recent, len(unique))
	})

	// Identical requests in flight together should not multiply feed traffic
	t.Run("Concurrent Feed Requests", func(t *testing.T) {
		feed := testutils.NewMockCBRServer()
		defer feed.Close()

		clock := func() time.Time { return time.Date(2021, 1, 16, 12, 0, 0, 0, time.UTC) }
		rates := service.NewRateService(api.NewCBRAPIClient(feed.URL(), nil), clock)
		feedLookups := service.NewLookupService(rates, repo, log)

		startTime := time.Now()

		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		for i := 0; i < concurrency; i++ {
			go func() {
				defer wg.Done()

				for j := 0; j < perWorker; j++ {
					if _, err := feedLookups.Lookup(context.Background(), "R01235", "2021-01-04"); err != nil {
						t.Logf("Error looking up rate: %v", err)
					}
				}
			}()
		}

		wg.Wait()
		duration := time.Since(startTime)

		t.Logf("Feed lookups: %d lookups in %v, %d feed requests",
			numLookups, duration, feed.Hits())
		assert.LessOrEqual(t, feed.Hits(), numLookups)
	})
}
