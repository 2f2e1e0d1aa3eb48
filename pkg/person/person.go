// Package person defines the Faker API person schema and record validation.
package person

// Address is the nested address object of a person record.
// All fields are required; latitude and longitude must be numeric.
type Address struct {
	ID             int     `json:"id"`
	Street         string  `json:"street"`
	StreetName     string  `json:"streetName"`
	BuildingNumber string  `json:"buildingNumber"`
	City           string  `json:"city"`
	Zipcode        string  `json:"zipcode"`
	Country        string  `json:"country"`
	CountryCode    string  `json:"country_code"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// Person is one validated record from the Faker API.
// Instances are transient: they exist between fetch and anonymization
// and are never persisted (the raw fields are direct identifiers).
type Person struct {
	ID        int     `json:"id"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Birthday  string  `json:"birthday"`
	Gender    string  `json:"gender"`
	Address   Address `json:"address"`
	Website   string  `json:"website"`
	Image     string  `json:"image"`
}

// BirthdayFormat is the exact layout a record's birthday must parse as.
const BirthdayFormat = "2006-01-02"
