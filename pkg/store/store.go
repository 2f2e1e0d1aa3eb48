// Package store persists anonymized person projections in a SQLite
// database file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"personapipe/pkg/anonymize"
	"personapipe/pkg/logging"
)

// ErrNotFound is returned when a requested person id does not exist.
var ErrNotFound = errors.New("person not found")

const schema = `
CREATE TABLE IF NOT EXISTS anonymized_persons (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	age_group    TEXT,
	email_domain TEXT,
	country      TEXT NOT NULL,
	city         TEXT NOT NULL
)`

// Store is the single-table persistence layer for anonymized persons.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens (creating if necessary) the database file at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logging.NewLogger("store"),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction: commit on normal return, full
// rollback on any error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// WritePersons bulk-inserts anonymized persons in one transaction.
// Either every record is committed or none are.
func (s *Store) WritePersons(ctx context.Context, persons []anonymize.AnonymizedPerson) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO anonymized_persons (age_group, email_domain, country, city)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range persons {
			if _, err := stmt.ExecContext(ctx,
				nullable(p.AgeGroup), nullable(p.EmailDomain), p.Country, p.City,
			); err != nil {
				return fmt.Errorf("insert person: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("count", len(persons)).Msg("Wrote persons to the database")
	return nil
}

// ReadPersons returns all stored persons in insertion order.
func (s *Store) ReadPersons(ctx context.Context) ([]anonymize.AnonymizedPerson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, age_group, email_domain, country, city
		FROM anonymized_persons
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("read persons: %w", err)
	}
	defer rows.Close()

	var persons []anonymize.AnonymizedPerson
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read persons: %w", err)
	}
	return persons, nil
}

// GetPerson returns one stored person by id, or ErrNotFound.
func (s *Store) GetPerson(ctx context.Context, id int64) (anonymize.AnonymizedPerson, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, age_group, email_domain, country, city
		FROM anonymized_persons
		WHERE id = ?
	`, id)

	p, err := scanPerson(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return anonymize.AnonymizedPerson{}, ErrNotFound
		}
		return anonymize.AnonymizedPerson{}, err
	}
	return p, nil
}

// CountryCount is one row of a per-country aggregation.
type CountryCount struct {
	Country string
	Count   int
}

// CountByCountry counts stored persons for a country.
func (s *Store) CountByCountry(ctx context.Context, country string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM anonymized_persons WHERE country = ?
	`, country).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by country: %w", err)
	}
	return count, nil
}

// CountByCountryAndDomain counts stored persons for a country whose
// email domain matches.
func (s *Store) CountByCountryAndDomain(ctx context.Context, country, domain string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM anonymized_persons WHERE country = ? AND email_domain = ?
	`, country, domain).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by country and domain: %w", err)
	}
	return count, nil
}

// CountryCountsByDomain returns per-country record counts for an email
// domain, ordered by count descending (country name breaks ties).
func (s *Store) CountryCountsByDomain(ctx context.Context, domain string) ([]CountryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country, COUNT(*) AS cnt
		FROM anonymized_persons
		WHERE email_domain = ?
		GROUP BY country
		ORDER BY cnt DESC, country ASC
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("country counts by domain: %w", err)
	}
	defer rows.Close()

	var counts []CountryCount
	for rows.Next() {
		var cc CountryCount
		if err := rows.Scan(&cc.Country, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan country count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("country counts by domain: %w", err)
	}
	return counts, nil
}

// AgeGroupCountsByDomain returns record counts per age bracket for an
// email domain. Records with an absent bracket are not included.
func (s *Store) AgeGroupCountsByDomain(ctx context.Context, domain string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT age_group, COUNT(*)
		FROM anonymized_persons
		WHERE email_domain = ? AND age_group IS NOT NULL
		GROUP BY age_group
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("age group counts by domain: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var group string
		var count int
		if err := rows.Scan(&group, &count); err != nil {
			return nil, fmt.Errorf("scan age group count: %w", err)
		}
		counts[group] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("age group counts by domain: %w", err)
	}
	return counts, nil
}

func scanPerson(scan func(dest ...any) error) (anonymize.AnonymizedPerson, error) {
	var p anonymize.AnonymizedPerson
	var ageGroup, emailDomain sql.NullString

	if err := scan(&p.ID, &ageGroup, &emailDomain, &p.Country, &p.City); err != nil {
		return anonymize.AnonymizedPerson{}, err
	}

	p.AgeGroup = ageGroup.String
	p.EmailDomain = emailDomain.String
	return p, nil
}

// nullable maps the empty string (absent signal) to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
