package record

import (
	"encoding/json"
	"time"
)

// CachedQuestion is an opaque reference payload (problem metadata,
// sheet membership) cached locally as a fallback for when the remote
// store is unreachable. The cache is refreshed wholesale whenever a
// remote read succeeds, never merged field by field.
type CachedQuestion struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
