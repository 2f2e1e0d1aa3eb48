// Package report computes aggregate statistics over the stored
// anonymized person set.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"personapipe/pkg/anonymize"
	"personapipe/pkg/logging"
	"personapipe/pkg/store"
)

// Statistics is the slice of the store the reporter consumes.
type Statistics interface {
	CountByCountry(ctx context.Context, country string) (int, error)
	CountByCountryAndDomain(ctx context.Context, country, domain string) (int, error)
	CountryCountsByDomain(ctx context.Context, domain string) ([]store.CountryCount, error)
	AgeGroupCountsByDomain(ctx context.Context, domain string) (map[string]int, error)
}

// Reporter computes the statistics report.
type Reporter struct {
	stats  Statistics
	logger zerolog.Logger
}

// New creates a reporter over the given statistics source.
func New(stats Statistics) *Reporter {
	return &Reporter{
		stats:  stats,
		logger: logging.NewLogger("report"),
	}
}

// DomainPercentage returns the percentage of a country's records whose
// email domain matches. A country with no records yields 0.0.
func (r *Reporter) DomainPercentage(ctx context.Context, country, domain string) (float64, error) {
	total, err := r.stats.CountByCountry(ctx, country)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0.0, nil
	}

	matched, err := r.stats.CountByCountryAndDomain(ctx, country, domain)
	if err != nil {
		return 0, err
	}

	return float64(matched) / float64(total) * 100, nil
}

// TopCountries returns the top-n countries by record count for an
// email domain. Every country tied with the nth-place count is
// included, so the result may be longer than n.
func (r *Reporter) TopCountries(ctx context.Context, domain string, n int) ([]store.CountryCount, error) {
	counts, err := r.stats.CountryCountsByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	if len(counts) <= n {
		return counts, nil
	}

	cutoff := counts[n-1].Count

	top := make([]store.CountryCount, 0, n)
	for _, cc := range counts {
		if cc.Count < cutoff {
			break
		}
		top = append(top, cc)
	}
	return top, nil
}

// CountOlderThan counts records whose age bracket lower bound is at or
// above minBracketLow and whose email domain matches. Records with an
// absent bracket never qualify.
func (r *Reporter) CountOlderThan(ctx context.Context, domain string, minBracketLow int) (int, error) {
	counts, err := r.stats.AgeGroupCountsByDomain(ctx, domain)
	if err != nil {
		return 0, err
	}

	total := 0
	for label, count := range counts {
		lower, ok := anonymize.BracketLower(label)
		if !ok {
			r.logger.Warn().Str("age_group", label).Msg("Skipping unrecognized bracket label")
			continue
		}
		if lower >= minBracketLow {
			total += count
		}
	}
	return total, nil
}

// Generate writes the statistics report: Gmail share of German
// records, top-3 Gmail countries with ties, and Gmail users aged 60+.
func (r *Reporter) Generate(ctx context.Context, w io.Writer) error {
	germanyGmailPct, err := r.DomainPercentage(ctx, "Germany", "gmail.com")
	if err != nil {
		return fmt.Errorf("germany gmail percentage: %w", err)
	}

	topGmailCountries, err := r.TopCountries(ctx, "gmail.com", 3)
	if err != nil {
		return fmt.Errorf("top gmail countries: %w", err)
	}

	gmailOver60, err := r.CountOlderThan(ctx, "gmail.com", 60)
	if err != nil {
		return fmt.Errorf("gmail users over 60: %w", err)
	}

	fmt.Fprintf(w, `
Anonymized Data Statistics Report
================================

1. Percentage of users in Germany using Gmail:
   %.2f%%

2. Top countries using Gmail (including ties):
`, germanyGmailPct)

	for _, cc := range topGmailCountries {
		fmt.Fprintf(w, "   - %s: %d users\n", cc.Country, cc.Count)
	}

	fmt.Fprintf(w, `
3. Number of users over 60 using Gmail:
   %d users
`, gmailOver60)

	r.logger.Info().Msg("Report generated successfully")
	return nil
}
