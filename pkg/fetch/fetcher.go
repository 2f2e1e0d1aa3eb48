package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"personapipe/pkg/person"
)

// Prometheus metrics for the batch pipeline.
var (
	fakerBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faker_batches_total",
		Help: "Total batch fetches by outcome",
	}, []string{"outcome"})

	fakerRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faker_records_total",
		Help: "Total person records by validation result",
	}, []string{"result"})
)

const (
	// MaxBatchSize is the API-imposed ceiling on records per request.
	MaxBatchSize = 1000

	personsEndpoint = "/persons"

	// birthdayStart pins the lower bound of generated birthdays so
	// that age brackets span the full adult range.
	birthdayStart = "1900-01-01"
)

// BatchClient is the HTTP client contract the fetcher depends on.
// It must be safe for concurrent use by multiple workers.
type BatchClient interface {
	Get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error)
}

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of in-flight batch requests.
	MaxConcurrency int

	// MaxBatchSize is the record cap per request (API limit: 1000).
	MaxBatchSize int
}

// DefaultConfig returns safe defaults for the Faker API.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		MaxBatchSize:   MaxBatchSize,
	}
}

// Fetcher fetches person records in parallel bounded batches.
type Fetcher struct {
	client BatchClient
	config Config
}

// New creates a new batch fetcher.
func New(client BatchClient, config Config) *Fetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = MaxBatchSize
	}

	return &Fetcher{
		client: client,
		config: config,
	}
}

// FetchBatch performs one bounded request and returns the valid person
// records it yielded. A short or empty result is a normal outcome; an
// error means the request itself failed after the client's retries and
// is left to the orchestrator to absorb.
func (f *Fetcher) FetchBatch(ctx context.Context, size int) ([]person.Person, error) {
	if size < 1 || size > f.config.MaxBatchSize {
		return nil, fmt.Errorf("batch size %d out of range [1, %d]", size, f.config.MaxBatchSize)
	}

	query := url.Values{}
	query.Set("_quantity", strconv.Itoa(size))
	query.Set("_birthday_start", birthdayStart)

	resp, err := f.client.Get(ctx, personsEndpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch batch: %w", err)
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	return ValidateResponse(env), nil
}

// batchResult carries one completed batch from a worker to the collector.
type batchResult struct {
	batchNum int
	persons  []person.Person
	err      error
}

// FetchPersons fetches the requested quantity of person records using
// the worker pool. Batches whose fetch fails outright are logged and
// skipped; valid records from all succeeding batches are concatenated
// in completion order. An empty result with every batch failed is the
// caller's condition to treat as fatal, not this method's.
func (f *Fetcher) FetchPersons(ctx context.Context, quantity int) []person.Person {
	start := time.Now()

	sizes := batchSizes(quantity, f.config.MaxBatchSize)

	log.Info().
		Int("quantity", quantity).
		Int("batches", len(sizes)).
		Msg("Starting parallel batch fetch")

	jobs := make(chan int, len(sizes))
	results := make(chan batchResult, len(sizes))

	workers := f.config.MaxConcurrency
	if workers > len(sizes) {
		workers = len(sizes)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go f.worker(ctx, sizes, jobs, results, &wg)
	}

	// Submission order is batch order; completion order is not.
	for i := range sizes {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single-consumer drain: the only accumulation point.
	var all []person.Person
	failed := 0
	for res := range results {
		if res.err != nil {
			failed++
			fakerBatchesTotal.WithLabelValues("failed").Inc()
			log.Error().
				Err(res.err).
				Int("batch", res.batchNum).
				Msg("Batch failed, continuing with remaining batches")
			continue
		}

		fakerBatchesTotal.WithLabelValues("success").Inc()
		all = append(all, res.persons...)
	}

	log.Info().
		Int("valid", len(all)).
		Int("requested", quantity).
		Int("failed_batches", failed).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return all
}

// worker fetches batches from the job queue until it is drained. A
// failed batch is reported as a result, not a worker exit: sibling
// batches must keep flowing.
func (f *Fetcher) worker(ctx context.Context, sizes []int, jobs <-chan int, results chan<- batchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range jobs {
		batchNum := idx + 1
		size := sizes[idx]

		log.Debug().
			Int("batch", batchNum).
			Int("size", size).
			Msg("Fetching batch")

		persons, err := f.FetchBatch(ctx, size)
		if err == nil {
			log.Info().
				Int("batch", batchNum).
				Int("size", size).
				Int("valid", len(persons)).
				Msg("Batch complete")
		}

		results <- batchResult{batchNum: batchNum, persons: persons, err: err}
	}
}

// batchSizes partitions quantity into full batches of max plus a
// remainder batch. Quantity 2500 with max 1000 yields [1000 1000 500].
func batchSizes(quantity, max int) []int {
	if quantity < 1 {
		return nil
	}

	sizes := make([]int, 0, (quantity+max-1)/max)
	for remaining := quantity; remaining > 0; remaining -= max {
		size := max
		if remaining < max {
			size = remaining
		}
		sizes = append(sizes, size)
	}
	return sizes
}
