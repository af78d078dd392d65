package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultChannel is the pub/sub channel status record changes are published on.
const DefaultChannel = "status_records:changes"

// RedisFeed carries change events over Redis pub/sub so every server instance
// sees writes made through any other instance. Each Subscription owns its own
// PubSub connection and filters by scope locally.
type RedisFeed struct {
	client  *redis.Client
	channel string
	log     *logrus.Entry
}

func NewRedisFeed(client *redis.Client, channel string) *RedisFeed {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisFeed{
		client:  client,
		channel: channel,
		log:     logrus.WithFields(logrus.Fields{"component": "changefeed.redis", "channel": channel}),
	}
}

func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, scope Scope) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)

	// wait for the subscription to be confirmed so setup errors surface here
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}

	sub := newSubscription(scope, func() {
		if err := pubsub.Close(); err != nil {
			f.log.WithError(err).Debug("pubsub close failed")
		}
	})

	go f.pump(pubsub, sub)
	return sub, nil
}

// pump forwards messages until the PubSub is closed by Release.
func (f *RedisFeed) pump(pubsub *redis.PubSub, sub *Subscription) {
	log := f.log.WithField("scope", sub.Scope().String())

	for msg := range pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.WithError(err).Warn("dropping malformed change event")
			continue
		}
		if !sub.deliver(event) {
			log.WithField("record_id", event.RecordID).Debug("subscriber buffer full, dropping event")
		}
	}
}
