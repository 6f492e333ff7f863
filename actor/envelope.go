package actor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps a message with delivery metadata. Sender is nil when the
// message did not come from an actor or promise.
type Envelope struct {
	ID        string
	Message   any
	Sender    Ref
	Timestamp time.Time
}

func NewEnvelope(message any, sender Ref) Envelope {
	return Envelope{
		ID:        generateID(),
		Message:   message,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

func (e Envelope) String() string {
	return fmt.Sprintf(
		"Envelope{ID: %s, Sender: %s, Message: %T}",
		e.ID,
		refName(e.Sender),
		e.Message,
	)
}

func generateID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func refName(ref Ref) string {
	if ref == nil {
		return "<none>"
	}
	return ref.Name()
}
