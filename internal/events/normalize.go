package events

import (
	"encoding/json"
	"errors"
	"strings"
)

// Normalize parses raw stored records into Events, preserving store order
// (most recent first). Entries that are not valid JSON objects are dropped
// silently; a partially-malformed log never aborts the aggregation. Ingestion
// is schema-less, so an off-type field (say a string where a number belongs)
// only loses that field, never the whole record.
func Normalize(raw []string) []Event {
	parsed := make([]Event, 0, len(raw))
	for _, record := range raw {
		trimmed := strings.TrimSpace(record)
		if !strings.HasPrefix(trimmed, "{") {
			// JSON scalars, arrays and null are not events
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(trimmed), &event); err != nil {
			// Unmarshal skips fields whose values do not fit their type
			// and still fills the rest of the struct, reporting the
			// mismatch as an UnmarshalTypeError. Anything else means the
			// entry itself is broken.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				continue
			}
		}
		parsed = append(parsed, event)
	}
	return parsed
}
