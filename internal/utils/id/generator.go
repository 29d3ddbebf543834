package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewTaskID generates a new task identifier with a stable prefix for display.
func NewTaskID() string {
	return newIdentifier("task")
}

// NewMessageID generates a new message identifier with a stable prefix for display.
func NewMessageID() string {
	return newIdentifier("msg")
}

// NewExecutionID generates a unique identifier for execution-history records.
func NewExecutionID() string {
	return newIdentifier("exec")
}

// NewNotificationID generates a unique identifier for queued notifications.
func NewNotificationID() string {
	return newIdentifier("notice")
}

func newIdentifier(prefix string) string {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		// crypto/rand failure; fall back to a raw random suffix rather than panic.
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(buf))
	}
	return fmt.Sprintf("%s-%s", prefix, uuidv7.String())
}

// NewUUIDv7 exposes raw UUIDv7 generation for callers that need unprefixed identifiers.
func NewUUIDv7() string {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		return ""
	}
	return uuidv7.String()
}
