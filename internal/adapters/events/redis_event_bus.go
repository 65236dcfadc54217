package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
	redisclient "github.com/campuspulse/feedback-service/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 100

// topic is one Redis subscription shared by every local subscriber of a channel.
type topic struct {
	pubsub      *redis.PubSub
	subscribers map[chan *entities.FeedbackEvent]struct{}
}

// RedisEventBus implements the EventBus interface using Redis Pub/Sub. Each
// API instance holds at most one Redis subscription per channel and fans
// messages out to its local subscribers.
type RedisEventBus struct {
	client *redisclient.Client

	mu     sync.RWMutex
	topics map[string]*topic

	ctx    context.Context
	cancel context.CancelFunc
}

var _ providers.EventBus = (*RedisEventBus)(nil)

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client: client,
		topics: make(map[string]*topic),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish stamps the event with an ID and timestamp when missing and
// publishes it to every instance subscribed to channel.
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("published event")
	return nil
}

// Subscribe subscribes to events on a channel. The returned channel is
// closed when ctx is done or the bus is closed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, errors.New("event bus is closed")
	}

	eventChan := make(chan *entities.FeedbackEvent, subscriberBuffer)

	b.mu.Lock()
	t, ok := b.topics[channel]
	if !ok {
		t = &topic{
			pubsub:      b.client.Client().Subscribe(b.ctx, channel),
			subscribers: make(map[chan *entities.FeedbackEvent]struct{}),
		}
		b.topics[channel] = t
		go b.receive(channel, t)
	}
	t.subscribers[eventChan] = struct{}{}
	count := len(t.subscribers)
	b.mu.Unlock()

	log.Info().Str("channel", channel).Int("subscribers", count).Msg("subscribed to channel")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.unsubscribe(channel, eventChan)
	}()

	return eventChan, nil
}

// receive decodes messages from Redis until the subscription closes.
func (b *RedisEventBus) receive(channel string, t *topic) {
	for msg := range t.pubsub.Channel() {
		var event entities.FeedbackEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to unmarshal event")
			continue
		}

		b.mu.RLock()
		for subscriber := range t.subscribers {
			select {
			case subscriber <- &event:
			default:
				log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
			}
		}
		b.mu.RUnlock()
	}
}

// unsubscribe removes one local subscriber and drops the Redis subscription
// once the channel has none left.
func (b *RedisEventBus) unsubscribe(channel string, eventChan chan *entities.FeedbackEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[channel]
	if !ok {
		return
	}
	if _, ok := t.subscribers[eventChan]; !ok {
		return
	}

	delete(t.subscribers, eventChan)
	close(eventChan)

	if len(t.subscribers) == 0 {
		delete(b.topics, channel)
		if err := t.pubsub.Close(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
		}
		log.Info().Str("channel", channel).Msg("closed subscription")
	}
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for channel, t := range b.topics {
		for subscriber := range t.subscribers {
			delete(t.subscribers, subscriber)
			close(subscriber)
		}
		if err := t.pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close subscription %s: %w", channel, err))
		}
		delete(b.topics, channel)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info().Msg("event bus closed")
	return nil
}
