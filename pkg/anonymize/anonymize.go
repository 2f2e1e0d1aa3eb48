// Package anonymize reduces validated person records to their
// non-identifying projection: age bracket, email provider domain,
// city, and country. Nothing else survives the projection.
package anonymize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"personapipe/pkg/person"
)

// ErrFutureBirthday is returned when a birthday lies strictly after now.
var ErrFutureBirthday = errors.New("birthday is in the future")

// AnonymizedPerson is the only entity that reaches storage. An empty
// AgeGroup or EmailDomain means the signal was absent (unparseable
// birthday, invalid email); the store persists those as NULL.
type AnonymizedPerson struct {
	ID          int64
	AgeGroup    string
	EmailDomain string
	Country     string
	City        string
}

// AgeGroup computes the 10-year bracket label for a birthday in
// YYYY-MM-DD format, relative to now. The label is "[L-U]" with L a
// multiple of 10 covering the age in whole years and U = L+10. An
// unparseable birthday yields an empty label and no error; a birthday
// strictly after now is an error.
func AgeGroup(birthday string, now time.Time) (string, error) {
	birth, err := time.Parse(person.BirthdayFormat, birthday)
	if err != nil {
		log.Warn().Str("birthday", birthday).Msg("Unparseable birthday, age group absent")
		return "", nil
	}

	if birth.After(now) {
		return "", fmt.Errorf("%w: %s", ErrFutureBirthday, birthday)
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}

	lower := (age / 10) * 10
	return fmt.Sprintf("[%d-%d]", lower, lower+10), nil
}

// BracketLower parses the lower bound out of a bracket label produced
// by AgeGroup. It reports false for anything that is not a "[L-U]" label.
func BracketLower(label string) (int, bool) {
	var lower, upper int
	if _, err := fmt.Sscanf(label, "[%d-%d]", &lower, &upper); err != nil {
		return 0, false
	}
	return lower, true
}

// EmailDomain extracts the domain portion of a strictly valid email
// address. It reports false for anything malformed: the domain becomes
// a stored attribute, so a bad address must yield absence rather than
// a pseudo-identifier.
func EmailDomain(email string) (string, bool) {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "", false
	}
	if strings.ContainsAny(local, "@ ") {
		return "", false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "", false
	}
	for _, label := range labels {
		if label == "" {
			return "", false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", false
		}
		for _, r := range label {
			if !isDomainRune(r) {
				return "", false
			}
		}
	}

	return domain, true
}

func isDomainRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		return true
	}
	return false
}

// Anonymize maps a validated person to its anonymized projection as of
// now. A future birthday is an error; the record should be skipped.
func Anonymize(p person.Person, now time.Time) (AnonymizedPerson, error) {
	ageGroup, err := AgeGroup(p.Birthday, now)
	if err != nil {
		return AnonymizedPerson{}, err
	}

	domain, _ := EmailDomain(p.Email)

	return AnonymizedPerson{
		AgeGroup:    ageGroup,
		EmailDomain: domain,
		Country:     p.Address.Country,
		City:        p.Address.City,
	}, nil
}
