// Command personapipe runs the pipeline once: fetch person records
// from the Faker API, anonymize them, persist the projections, and
// print the statistics report.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"personapipe/pkg/anonymize"
	"personapipe/pkg/client"
	"personapipe/pkg/fetch"
	"personapipe/pkg/logging"
	"personapipe/pkg/metrics"
	"personapipe/pkg/report"
	"personapipe/pkg/store"
)

// ErrNoData is returned when the fetch produced zero valid records;
// the run halts rather than persist or report on nothing.
var ErrNoData = errors.New("no valid person data fetched from API")

type config struct {
	DBPath      string
	Quantity    int
	BaseURL     string
	LogLevel    string
	LogPretty   bool
	MetricsAddr string
}

func main() {
	cfg, err := loadConfig()

	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Pipeline run failed")
	}
}

func run(cfg config) error {
	ctx := context.Background()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("path", cfg.DBPath).Msg("Database initialized")

	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = cfg.BaseURL
	fakerClient, err := client.New(clientCfg)
	if err != nil {
		return err
	}

	log.Info().Int("quantity", cfg.Quantity).Msg("Starting data fetch and anonymization")
	fetcher := fetch.New(fakerClient, fetch.DefaultConfig())
	persons := fetcher.FetchPersons(ctx, cfg.Quantity)
	if len(persons) == 0 {
		return ErrNoData
	}

	now := time.Now()
	anonymized := make([]anonymize.AnonymizedPerson, 0, len(persons))
	for _, p := range persons {
		ap, err := anonymize.Anonymize(p, now)
		if err != nil {
			log.Warn().Err(err).Msg("Skipping record that failed anonymization")
			continue
		}
		anonymized = append(anonymized, ap)
	}
	if len(anonymized) == 0 {
		return ErrNoData
	}
	log.Info().Int("count", len(anonymized)).Msg("Anonymized persons")

	if err := db.WritePersons(ctx, anonymized); err != nil {
		return fmt.Errorf("save anonymized data: %w", err)
	}
	log.Info().Msg("Data successfully saved to database")

	return report.New(db).Generate(ctx, os.Stdout)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	log.Info().Str("addr", addr).Msg("Serving metrics for the duration of the run")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn().Err(err).Msg("Metrics server stopped")
	}
}

func loadConfig() (config, error) {
	cfg := config{
		DBPath:      getEnv("DB_PATH", "data/anonymized_data.db"),
		BaseURL:     getEnv("FAKER_BASE_URL", client.DefaultBaseURL),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnv("LOG_PRETTY", "") != "",
		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}

	quantity, err := parseQuantity(getEnv("QUANTITY", "30000"))
	if err != nil {
		return cfg, err
	}
	cfg.Quantity = quantity

	return cfg, nil
}

func parseQuantity(s string) (int, error) {
	quantity, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid QUANTITY %q: %w", s, err)
	}
	if quantity < 1 {
		return 0, fmt.Errorf("QUANTITY must be >= 1 (got %d)", quantity)
	}
	return quantity, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
