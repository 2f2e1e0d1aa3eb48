package fetch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"personapipe/pkg/person"
)

// Envelope is the Faker API top-level response wrapper.
type Envelope struct {
	Status string          `json:"status"`
	Code   int             `json:"code"`
	Total  int             `json:"total"`
	Data   json.RawMessage `json:"data"`
}

// ValidateResponse extracts the valid person records from a response
// envelope. A non-"OK" status or a data field that is not an array
// yields zero records, not an error. Individual record rejections are
// logged and skipped; accepted records keep their original order.
func ValidateResponse(env Envelope) []person.Person {
	if env.Status != "OK" {
		log.Error().
			Str("status", env.Status).
			Int("code", env.Code).
			Msg("Faker API returned error status")
		return nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(env.Data, &records); err != nil {
		log.Error().Err(err).Msg("Faker API returned invalid data format")
		return nil
	}

	valid := make([]person.Person, 0, len(records))
	for _, raw := range records {
		p, err := person.Validate(raw)
		if err != nil {
			fakerRecordsTotal.WithLabelValues("rejected").Inc()
			log.Warn().Err(err).Msg("Skipping invalid person record")
			continue
		}
		fakerRecordsTotal.WithLabelValues("valid").Inc()
		valid = append(valid, p)
	}

	return valid
}
