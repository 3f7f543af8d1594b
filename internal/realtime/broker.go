// Package realtime fans out newly persisted messages to whoever is
// streaming a conversation, without coupling the message engine to a
// delivery transport.
package realtime

import (
	"context"
	"fmt"

	"github.com/pulsedate/backend/internal/domain/model"
)

// Handler receives messages published for one conversation.
type Handler func(msg model.Message)

// Broker routes published messages to the listener of a conversation.
// Subscribe replaces any listener previously registered for the same
// conversation id and returns a function that removes this one. Publish
// is fire-and-forget: delivery failures never affect the publisher.
type Broker interface {
	Subscribe(conversationID int64, fn Handler) (func(), error)
	Publish(ctx context.Context, conversationID int64, msg model.Message) error
}

func channelName(conversationID int64) string {
	return fmt.Sprintf("conversation:%d:messages", conversationID)
}
