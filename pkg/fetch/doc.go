// Package fetch implements the concurrent batch pipeline against the
// Faker API persons endpoint.
//
// The API caps a single request at 1000 records, so a larger requested
// quantity is split into bounded batches dispatched across a worker
// pool. Each batch is fetched, envelope-checked, and validated record
// by record; results are merged as batches complete.
//
// Example usage:
//
//	c, _ := client.New(client.DefaultConfig())
//	fetcher := fetch.New(c, fetch.DefaultConfig())
//	persons := fetcher.FetchPersons(ctx, 30000)
//
// The fetcher:
//   - Partitions the quantity into ceil(n/1000) batches
//   - Spawns a worker pool (default 10 workers)
//   - Validates each record independently, skipping rejects
//   - Tolerates whole-batch failures (partial data, never aborts siblings)
//
// Result ordering across batches follows completion order and is
// therefore non-deterministic.
package fetch
