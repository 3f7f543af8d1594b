package realtime

import (
	"context"
	"testing"

	"github.com/pulsedate/backend/internal/domain/model"
)

func TestMemoryBrokerDeliversToListener(t *testing.T) {
	broker := NewMemoryBroker()

	var got []model.Message
	unsubscribe, err := broker.Subscribe(7, func(msg model.Message) {
		got = append(got, msg)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	if err := broker.Publish(context.Background(), 7, model.Message{ID: 1, ConversationID: 7, Text: "hi"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := broker.Publish(context.Background(), 8, model.Message{ID: 2, ConversationID: 8, Text: "other"}); err != nil {
		t.Fatalf("publish other conversation: %v", err)
	}

	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only conversation 7 message, got %+v", got)
	}
}

func TestMemoryBrokerResubscribeReplacesListener(t *testing.T) {
	broker := NewMemoryBroker()

	var first, second int
	if _, err := broker.Subscribe(3, func(model.Message) { first++ }); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	unsubscribe, err := broker.Subscribe(3, func(model.Message) { second++ })
	if err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	defer unsubscribe()

	if err := broker.Publish(context.Background(), 3, model.Message{ID: 1, ConversationID: 3}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if first != 0 {
		t.Fatalf("replaced listener still received %d messages", first)
	}
	if second != 1 {
		t.Fatalf("active listener received %d messages, want 1", second)
	}
}

func TestMemoryBrokerStaleUnsubscribeKeepsReplacement(t *testing.T) {
	broker := NewMemoryBroker()

	staleUnsubscribe, err := broker.Subscribe(5, func(model.Message) {})
	if err != nil {
		t.Fatalf("first subscribe: %v", err)
	}

	var delivered int
	if _, err := broker.Subscribe(5, func(model.Message) { delivered++ }); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}

	// the stale unsubscribe must not tear down the replacement
	staleUnsubscribe()

	if err := broker.Publish(context.Background(), 5, model.Message{ID: 9, ConversationID: 5}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("replacement listener received %d messages, want 1", delivered)
	}
}

func TestMemoryBrokerUnsubscribeStopsDelivery(t *testing.T) {
	broker := NewMemoryBroker()

	var delivered int
	unsubscribe, err := broker.Subscribe(4, func(model.Message) { delivered++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	unsubscribe()

	if err := broker.Publish(context.Background(), 4, model.Message{ID: 1, ConversationID: 4}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("unsubscribed listener received %d messages", delivered)
	}
}

func TestMemoryBrokerRejectsNilHandler(t *testing.T) {
	broker := NewMemoryBroker()
	if _, err := broker.Subscribe(1, nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}
