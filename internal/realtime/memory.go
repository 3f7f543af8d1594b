package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/pulsedate/backend/internal/domain/model"
)

// MemoryBroker is the single-process broker. It holds at most one
// listener per conversation.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[int64]*memorySub
}

type memorySub struct {
	fn Handler
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int64]*memorySub)}
}

func (b *MemoryBroker) Subscribe(conversationID int64, fn Handler) (func(), error) {
	if conversationID <= 0 {
		return nil, fmt.Errorf("invalid conversation id")
	}
	if fn == nil {
		return nil, fmt.Errorf("handler is nil")
	}

	sub := &memorySub{fn: fn}
	b.mu.Lock()
	b.subs[conversationID] = sub
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		// drop only our own registration, not a later replacement
		if b.subs[conversationID] == sub {
			delete(b.subs, conversationID)
		}
		b.mu.Unlock()
	}

	return unsubscribe, nil
}

func (b *MemoryBroker) Publish(_ context.Context, conversationID int64, msg model.Message) error {
	if conversationID <= 0 {
		return fmt.Errorf("invalid conversation id")
	}

	b.mu.Lock()
	sub := b.subs[conversationID]
	b.mu.Unlock()

	if sub != nil {
		sub.fn(msg)
	}
	return nil
}
