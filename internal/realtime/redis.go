package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pulsedate/backend/internal/domain/model"
)

// RedisBroker fans messages out over redis pub/sub so every API
// instance sees publishes from every other one.
type RedisBroker struct {
	client *goredis.Client
	logger *zap.Logger

	mu   sync.Mutex
	subs map[int64]*redisSub
}

type redisSub struct {
	pubsub *goredis.PubSub
}

type wireMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewRedisBroker(client *goredis.Client, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{
		client: client,
		logger: logger,
		subs:   make(map[int64]*redisSub),
	}
}

func (b *RedisBroker) Publish(ctx context.Context, conversationID int64, msg model.Message) error {
	if b.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if conversationID <= 0 {
		return fmt.Errorf("invalid conversation id")
	}

	payload, err := json.Marshal(wireMessage{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Text:           msg.Text,
		CreatedAt:      msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal realtime message: %w", err)
	}

	if err := b.client.Publish(ctx, channelName(conversationID), payload).Err(); err != nil {
		return fmt.Errorf("publish realtime message: %w", err)
	}

	return nil
}

func (b *RedisBroker) Subscribe(conversationID int64, fn Handler) (func(), error) {
	if b.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if conversationID <= 0 {
		return nil, fmt.Errorf("invalid conversation id")
	}
	if fn == nil {
		return nil, fmt.Errorf("handler is nil")
	}

	pubsub := b.client.Subscribe(context.Background(), channelName(conversationID))
	if _, err := pubsub.Receive(context.Background()); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe realtime channel: %w", err)
	}

	sub := &redisSub{pubsub: pubsub}
	b.mu.Lock()
	if prev := b.subs[conversationID]; prev != nil {
		_ = prev.pubsub.Close()
	}
	b.subs[conversationID] = sub
	b.mu.Unlock()

	go func() {
		for raw := range pubsub.Channel() {
			var wire wireMessage
			if err := json.Unmarshal([]byte(raw.Payload), &wire); err != nil {
				b.logger.Warn("drop malformed realtime payload",
					zap.String("channel", raw.Channel),
					zap.Error(err),
				)
				continue
			}
			fn(model.Message{
				ID:             wire.ID,
				ConversationID: wire.ConversationID,
				SenderID:       wire.SenderID,
				Text:           wire.Text,
				CreatedAt:      wire.CreatedAt,
			})
		}
	}()

	unsubscribe := func() {
		b.mu.Lock()
		if b.subs[conversationID] == sub {
			delete(b.subs, conversationID)
		}
		b.mu.Unlock()
		_ = pubsub.Close()
	}

	return unsubscribe, nil
}
