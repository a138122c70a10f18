package message

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewMessageID returns 16 lower-case hex characters taken from a random UUID.
func NewMessageID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:8])
}
