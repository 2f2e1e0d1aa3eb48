package report

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"personapipe/pkg/anonymize"
	"personapipe/pkg/store"
)

// seedStore opens a fresh SQLite store and loads it with records.
func seedStore(t *testing.T, persons []anonymize.AnonymizedPerson) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if len(persons) > 0 {
		if err := s.WritePersons(context.Background(), persons); err != nil {
			t.Fatalf("WritePersons() error: %v", err)
		}
	}
	return s
}

func repeat(n int, template anonymize.AnonymizedPerson) []anonymize.AnonymizedPerson {
	persons := make([]anonymize.AnonymizedPerson, n)
	for i := range persons {
		persons[i] = template
	}
	return persons
}

func TestDomainPercentage(t *testing.T) {
	var persons []anonymize.AnonymizedPerson
	persons = append(persons, repeat(2, anonymize.AnonymizedPerson{
		EmailDomain: "gmail.com", Country: "Germany", City: "Berlin",
	})...)
	persons = append(persons, repeat(2, anonymize.AnonymizedPerson{
		EmailDomain: "web.de", Country: "Germany", City: "Hamburg",
	})...)

	r := New(seedStore(t, persons))

	pct, err := r.DomainPercentage(context.Background(), "Germany", "gmail.com")
	if err != nil {
		t.Fatalf("DomainPercentage() error: %v", err)
	}
	if pct != 50.0 {
		t.Errorf("DomainPercentage = %v, want 50.0", pct)
	}
}

func TestDomainPercentage_NoRecordsForCountry(t *testing.T) {
	r := New(seedStore(t, nil))

	pct, err := r.DomainPercentage(context.Background(), "Germany", "gmail.com")
	if err != nil {
		t.Fatalf("DomainPercentage() error: %v", err)
	}
	if pct != 0.0 {
		t.Errorf("DomainPercentage = %v, want 0.0 for empty country", pct)
	}
}

func TestTopCountries_IncludesTiesAtCutoff(t *testing.T) {
	var persons []anonymize.AnonymizedPerson
	add := func(country string, n int) {
		persons = append(persons, repeat(n, anonymize.AnonymizedPerson{
			EmailDomain: "gmail.com", Country: country, City: "X",
		})...)
	}
	add("USA", 3)
	add("Germany", 3)
	add("France", 2)
	add("UK", 2)
	add("Spain", 1)

	r := New(seedStore(t, persons))

	top, err := r.TopCountries(context.Background(), "gmail.com", 3)
	if err != nil {
		t.Fatalf("TopCountries() error: %v", err)
	}

	got := make(map[string]int, len(top))
	for _, cc := range top {
		got[cc.Country] = cc.Count
	}
	want := map[string]int{"USA": 3, "Germany": 3, "France": 2, "UK": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopCountries = %v, want %v (Spain excluded, ties at cutoff included)", got, want)
	}
}

func TestTopCountries_FewerCountriesThanN(t *testing.T) {
	persons := repeat(2, anonymize.AnonymizedPerson{
		EmailDomain: "gmail.com", Country: "USA", City: "X",
	})

	r := New(seedStore(t, persons))

	top, err := r.TopCountries(context.Background(), "gmail.com", 3)
	if err != nil {
		t.Fatalf("TopCountries() error: %v", err)
	}
	if len(top) != 1 || top[0].Country != "USA" {
		t.Errorf("TopCountries = %v, want just USA", top)
	}
}

func TestTopCountries_NoRecords(t *testing.T) {
	r := New(seedStore(t, nil))

	top, err := r.TopCountries(context.Background(), "gmail.com", 3)
	if err != nil {
		t.Fatalf("TopCountries() error: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("TopCountries = %v, want empty", top)
	}
}

func TestCountOlderThan(t *testing.T) {
	persons := []anonymize.AnonymizedPerson{
		{AgeGroup: "[50-60]", EmailDomain: "gmail.com", Country: "Germany", City: "X"},
		{AgeGroup: "[60-70]", EmailDomain: "gmail.com", Country: "Germany", City: "X"},
		{AgeGroup: "[70-80]", EmailDomain: "gmail.com", Country: "France", City: "X"},
		{AgeGroup: "[120-130]", EmailDomain: "gmail.com", Country: "Japan", City: "X"},
		{AgeGroup: "[90-100]", EmailDomain: "web.de", Country: "Germany", City: "X"},
		{AgeGroup: "", EmailDomain: "gmail.com", Country: "Spain", City: "X"},
	}

	r := New(seedStore(t, persons))

	count, err := r.CountOlderThan(context.Background(), "gmail.com", 60)
	if err != nil {
		t.Fatalf("CountOlderThan() error: %v", err)
	}
	// [60-70], [70-80], [120-130] qualify; [50-60], web.de, and the
	// absent bracket do not.
	if count != 3 {
		t.Errorf("CountOlderThan = %d, want 3", count)
	}
}

func TestGenerate(t *testing.T) {
	persons := []anonymize.AnonymizedPerson{
		{AgeGroup: "[60-70]", EmailDomain: "gmail.com", Country: "Germany", City: "Berlin"},
		{AgeGroup: "[30-40]", EmailDomain: "web.de", Country: "Germany", City: "Hamburg"},
		{AgeGroup: "[70-80]", EmailDomain: "gmail.com", Country: "France", City: "Paris"},
	}

	r := New(seedStore(t, persons))

	var buf strings.Builder
	if err := r.Generate(context.Background(), &buf); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "50.00%") {
		t.Errorf("Report missing Germany percentage, got:\n%s", out)
	}
	if !strings.Contains(out, "Germany: 1 users") || !strings.Contains(out, "France: 1 users") {
		t.Errorf("Report missing country counts, got:\n%s", out)
	}
	if !strings.Contains(out, "2 users") {
		t.Errorf("Report missing over-60 count, got:\n%s", out)
	}
}
