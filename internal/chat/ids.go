package chat

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator allocates message identifiers. It is injected so tests can
// supply deterministic sequences instead of global entropy.
type IDGenerator interface {
	NewID(now time.Time) (string, error)
}

// ULIDGenerator issues ULIDs (26 chars). ULIDs are lexicographically
// sortable, which keeps log output and same-session message ordering legible.
type ULIDGenerator struct{}

// NewID returns a new ULID string for the given instant.
func (ULIDGenerator) NewID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
