package person

import (
	"encoding/json"
	"fmt"
	"time"
)

// RejectError reports why a single record failed validation.
// A rejection is fatal to the record only, never to the batch that
// carried it; callers log it and move on.
type RejectError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *RejectError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record rejected: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("record rejected: %s", e.Reason)
}

func reject(field, format string, args ...any) error {
	return &RejectError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// rawPerson mirrors Person with pointer fields so that missing (or null)
// keys are distinguishable after decoding. Unknown extra fields are ignored.
type rawPerson struct {
	ID        *int            `json:"id"`
	Firstname *string         `json:"firstname"`
	Lastname  *string         `json:"lastname"`
	Email     *string         `json:"email"`
	Phone     *string         `json:"phone"`
	Birthday  *string         `json:"birthday"`
	Gender    *string         `json:"gender"`
	Address   json.RawMessage `json:"address"`
	Website   *string         `json:"website"`
	Image     *string         `json:"image"`
}

type rawAddress struct {
	ID             *int     `json:"id"`
	Street         *string  `json:"street"`
	StreetName     *string  `json:"streetName"`
	BuildingNumber *string  `json:"buildingNumber"`
	City           *string  `json:"city"`
	Zipcode        *string  `json:"zipcode"`
	Country        *string  `json:"country"`
	CountryCode    *string  `json:"country_code"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// Validate checks one raw record against the person/address shape and
// returns the typed Person, or a *RejectError describing the first
// failure. Checks run in order and short-circuit: birthday format,
// then the nested address, then the remaining person fields.
func Validate(raw json.RawMessage) (Person, error) {
	var rp rawPerson
	if err := json.Unmarshal(raw, &rp); err != nil {
		return Person{}, reject("", "malformed record: %v", err)
	}

	if rp.Birthday == nil {
		return Person{}, reject("birthday", "missing required field")
	}
	if _, err := time.Parse(BirthdayFormat, *rp.Birthday); err != nil {
		return Person{}, reject("birthday", "invalid date %q, want YYYY-MM-DD", *rp.Birthday)
	}

	addr, err := validateAddress(rp.Address)
	if err != nil {
		return Person{}, err
	}

	required := []struct {
		field   string
		present bool
	}{
		{"id", rp.ID != nil},
		{"firstname", rp.Firstname != nil},
		{"lastname", rp.Lastname != nil},
		{"email", rp.Email != nil},
		{"phone", rp.Phone != nil},
		{"gender", rp.Gender != nil},
		{"website", rp.Website != nil},
		{"image", rp.Image != nil},
	}
	for _, r := range required {
		if !r.present {
			return Person{}, reject(r.field, "missing required field")
		}
	}

	return Person{
		ID:        *rp.ID,
		Firstname: *rp.Firstname,
		Lastname:  *rp.Lastname,
		Email:     *rp.Email,
		Phone:     *rp.Phone,
		Birthday:  *rp.Birthday,
		Gender:    *rp.Gender,
		Address:   addr,
		Website:   *rp.Website,
		Image:     *rp.Image,
	}, nil
}

func validateAddress(raw json.RawMessage) (Address, error) {
	if len(raw) == 0 {
		return Address{}, reject("address", "missing required field")
	}

	var ra rawAddress
	if err := json.Unmarshal(raw, &ra); err != nil {
		return Address{}, reject("address", "malformed address: %v", err)
	}

	required := []struct {
		field   string
		present bool
	}{
		{"address.id", ra.ID != nil},
		{"address.street", ra.Street != nil},
		{"address.streetName", ra.StreetName != nil},
		{"address.buildingNumber", ra.BuildingNumber != nil},
		{"address.city", ra.City != nil},
		{"address.zipcode", ra.Zipcode != nil},
		{"address.country", ra.Country != nil},
		{"address.country_code", ra.CountryCode != nil},
		{"address.latitude", ra.Latitude != nil},
		{"address.longitude", ra.Longitude != nil},
	}
	for _, r := range required {
		if !r.present {
			return Address{}, reject(r.field, "missing required field")
		}
	}

	return Address{
		ID:             *ra.ID,
		Street:         *ra.Street,
		StreetName:     *ra.StreetName,
		BuildingNumber: *ra.BuildingNumber,
		City:           *ra.City,
		Zipcode:        *ra.Zipcode,
		Country:        *ra.Country,
		CountryCode:    *ra.CountryCode,
		Latitude:       *ra.Latitude,
		Longitude:      *ra.Longitude,
	}, nil
}
