// Package changefeed delivers "something changed" notifications for status
// records. Notifications carry the event type and record id for logging only;
// consumers re-read the store on every notification.
package changefeed

import (
	"context"
	"sync"

	"github.com/prudhvinik1/statusboard/internal/models"
)

// subscriberBuffer is the per-subscription channel capacity. A full buffer
// drops further events for that subscriber; one pending event is enough to
// trigger a re-fetch.
const subscriberBuffer = 16

type Event = models.ChangeEvent

// Feed publishes change events and hands out scoped subscriptions.
type Feed interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, scope Scope) (*Subscription, error)
}

// Scope selects which events a subscription receives.
type Scope struct {
	recordID string
}

// All matches every change to the collection.
func All() Scope { return Scope{} }

// Record matches changes to a single record id.
func Record(id string) Scope { return Scope{recordID: id} }

func (s Scope) Matches(event Event) bool {
	return s.recordID == "" || s.recordID == event.RecordID
}

func (s Scope) String() string {
	if s.recordID == "" {
		return "*"
	}
	return "id=eq." + s.recordID
}

// Subscription is an explicit handle on a change stream. The channel returned
// by C is closed once Release has been called; no event is delivered after
// Release returns.
type Subscription struct {
	scope Scope
	ch    chan Event

	mu       sync.Mutex
	released bool
	onClose  func()
}

func newSubscription(scope Scope, onClose func()) *Subscription {
	return &Subscription{
		scope:   scope,
		ch:      make(chan Event, subscriberBuffer),
		onClose: onClose,
	}
}

func (s *Subscription) C() <-chan Event { return s.ch }

func (s *Subscription) Scope() Scope { return s.scope }

// Release detaches the subscription. Safe to call more than once and from
// multiple goroutines.
func (s *Subscription) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	onClose := s.onClose
	close(s.ch)
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

func (s *Subscription) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// deliver performs a non-blocking, scope-filtered send. It reports false when
// the event was dropped.
func (s *Subscription) deliver(event Event) bool {
	if !s.scope.Matches(event) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return true
	}

	select {
	case s.ch <- event:
		return true
	default:
		return false
	}
}
