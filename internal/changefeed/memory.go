package changefeed

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryFeed is an in-process Feed. Publish fans out to every matching
// subscription without blocking.
type MemoryFeed struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
	log  *logrus.Entry
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		subs: make(map[*Subscription]struct{}),
		log:  logrus.WithField("component", "changefeed.memory"),
	}
}

func (f *MemoryFeed) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subs {
		if !sub.deliver(event) {
			f.log.WithField("record_id", event.RecordID).Debug("subscriber buffer full, dropping event")
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, scope Scope) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sub *Subscription
	sub = newSubscription(scope, func() {
		f.mu.Lock()
		delete(f.subs, sub)
		f.mu.Unlock()
	})

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	return sub, nil
}

// Len reports the number of live subscriptions.
func (f *MemoryFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
