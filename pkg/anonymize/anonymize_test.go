package anonymize

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"personapipe/pkg/person"
)

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestAgeGroup_Brackets(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{0, "[0-10]"},
		{9, "[0-10]"},
		{10, "[10-20]"},
		{19, "[10-20]"},
		{20, "[20-30]"},
		{59, "[50-60]"},
		{60, "[60-70]"},
		{120, "[120-130]"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			// Birthday exactly tt.age years before testNow, so the
			// age in whole years equals tt.age.
			birthday := fmt.Sprintf("%04d-08-31", testNow.Year()-tt.age)

			got, err := AgeGroup(birthday, testNow)
			if err != nil {
				t.Fatalf("AgeGroup(%q) error: %v", birthday, err)
			}
			if got != tt.want {
				t.Errorf("AgeGroup(%q) = %q, want %q", birthday, got, tt.want)
			}
		})
	}
}

func TestAgeGroup_BirthdayNotYetReachedThisYear(t *testing.T) {
	// Born 1990-12-01, now 2026-08-31: age is 35, not 36.
	got, err := AgeGroup("1990-12-01", testNow)
	if err != nil {
		t.Fatalf("AgeGroup error: %v", err)
	}
	if got != "[30-40]" {
		t.Errorf("AgeGroup = %q, want [30-40]", got)
	}
}

func TestAgeGroup_UnparseableBirthdayIsAbsent(t *testing.T) {
	for _, birthday := range []string{"not-a-date", "01-01-1990", "1990/01/01", ""} {
		got, err := AgeGroup(birthday, testNow)
		if err != nil {
			t.Errorf("AgeGroup(%q) unexpected error: %v", birthday, err)
		}
		if got != "" {
			t.Errorf("AgeGroup(%q) = %q, want absent", birthday, got)
		}
	}
}

func TestAgeGroup_FutureBirthday(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	_, err := AgeGroup("2026-09-01", now)
	if !errors.Is(err, ErrFutureBirthday) {
		t.Errorf("Expected ErrFutureBirthday for tomorrow, got %v", err)
	}

	// A birthday equal to now is not a future date.
	got, err := AgeGroup("2026-08-31", now)
	if err != nil {
		t.Errorf("Birthday equal to now should not error, got %v", err)
	}
	if got != "[0-10]" {
		t.Errorf("AgeGroup = %q, want [0-10]", got)
	}
}

func TestBracketLower(t *testing.T) {
	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"[0-10]", 0, true},
		{"[60-70]", 60, true},
		{"[120-130]", 120, true},
		{"", 0, false},
		{"60-70", 0, false},
	}

	for _, tt := range tests {
		got, ok := BracketLower(tt.label)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("BracketLower(%q) = (%d, %v), want (%d, %v)", tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email  string
		want   string
		wantOK bool
	}{
		{"john@example.com", "example.com", true},
		{"user+x@sub.gmail.com", "sub.gmail.com", true},
		{"a.b.c@mail.example.co.uk", "mail.example.co.uk", true},
		{"user@", "", false},
		{"@example.com", "", false},
		{"a@@b.com", "", false},
		{"x@domain.", "", false},
		{"x@.domain", "", false},
		{"x@domain..com", "", false},
		{"x@localhost", "", false},
		{"no-at-sign", "", false},
		{"", "", false},
		{"user name@example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, ok := EmailDomain(tt.email)
			if ok != tt.wantOK {
				t.Errorf("EmailDomain(%q) ok = %v, want %v", tt.email, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("EmailDomain(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestAnonymize(t *testing.T) {
	p := person.Person{
		ID:        1,
		Firstname: "John",
		Lastname:  "Doe",
		Email:     "john@sub.gmail.com",
		Phone:     "+1234567890",
		Birthday:  "1990-01-01",
		Gender:    "male",
		Website:   "http://example.com",
		Image:     "http://example.com/image.jpg",
		Address: person.Address{
			City:    "Berlin",
			Country: "Germany",
		},
	}

	got, err := Anonymize(p, testNow)
	if err != nil {
		t.Fatalf("Anonymize error: %v", err)
	}

	want := AnonymizedPerson{
		AgeGroup:    "[30-40]",
		EmailDomain: "sub.gmail.com",
		Country:     "Germany",
		City:        "Berlin",
	}
	if got != want {
		t.Errorf("Anonymize() = %+v, want %+v", got, want)
	}
}

func TestAnonymize_AbsentSignals(t *testing.T) {
	p := person.Person{
		Email:    "broken@",
		Birthday: "not-a-date",
		Address: person.Address{
			City:    "Paris",
			Country: "France",
		},
	}

	got, err := Anonymize(p, testNow)
	if err != nil {
		t.Fatalf("Anonymize error: %v", err)
	}
	if got.AgeGroup != "" {
		t.Errorf("AgeGroup = %q, want absent", got.AgeGroup)
	}
	if got.EmailDomain != "" {
		t.Errorf("EmailDomain = %q, want absent", got.EmailDomain)
	}
	if got.Country != "France" || got.City != "Paris" {
		t.Errorf("Location = %s/%s, want France/Paris", got.Country, got.City)
	}
}

func TestAnonymize_FutureBirthday(t *testing.T) {
	p := person.Person{Birthday: "2999-01-01"}

	if _, err := Anonymize(p, testNow); !errors.Is(err, ErrFutureBirthday) {
		t.Errorf("Expected ErrFutureBirthday, got %v", err)
	}
}
