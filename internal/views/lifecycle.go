package views

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyMounted = errors.New("view already mounted")
	ErrUnmounted      = errors.New("view unmounted")
)

// Phase is the data state of a view. Errors never change the phase.
type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseLoading
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// mailbox is an unbounded FIFO of closures for the event loop. Posting never
// blocks, so store goroutines and the loop itself can post freely.
type mailbox struct {
	mu     sync.Mutex
	items  []func()
	closed bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) push(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

func (m *mailbox) drain() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// close refuses further pushes and returns whatever was still queued.
func (m *mailbox) close() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	items := m.items
	m.items = nil
	return items
}

// lifecycle is the machinery shared by both views: the event loop, the
// owner-generation guard and the change subscription slot. Fields below the
// loop-owned marker are only touched on the loop goroutine.
type lifecycle struct {
	cfg   viewConfig
	store Store
	log   *logrus.Entry

	box        *mailbox
	done       chan struct{}
	mountOnce  sync.Once
	stopOnce   sync.Once
	started    atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	onTeardown func()

	// loop-owned
	mounted    bool
	gen        uint64
	sub        *changefeed.Subscription
	fetchSeq   uint64
	appliedSeq uint64
}

func (l *lifecycle) init(name string, store Store, cfg viewConfig) {
	l.cfg = cfg
	l.store = store
	l.log = cfg.logger.WithField("view", name)
	l.box = newMailbox()
	l.done = make(chan struct{})
}

// start launches the loop and queues onMount as its first event. Cancelling
// ctx unmounts the view.
func (l *lifecycle) start(ctx context.Context, onMount func()) error {
	select {
	case <-l.done:
		return ErrUnmounted
	default:
	}

	err := ErrAlreadyMounted
	l.mountOnce.Do(func() {
		err = nil
		l.ctx, l.cancel = context.WithCancel(ctx)
		l.started.Store(true)
		go l.run()
		l.post(func() {
			l.mounted = true
			l.gen++
			onMount()
		})
		go func() {
			select {
			case <-l.ctx.Done():
				l.stop()
			case <-l.done:
			}
		}()
	})
	return err
}

func (l *lifecycle) run() {
	for {
		select {
		case <-l.box.signal:
			for _, fn := range l.box.drain() {
				fn()
			}
		case <-l.done:
			return
		}
	}
}

// post queues fn for the loop. It reports false once the view is torn down.
func (l *lifecycle) post(fn func()) bool {
	return l.box.push(fn)
}

// stop tears the view down once and waits for the teardown to finish.
// onTeardown runs on the loop after the subscription is released.
func (l *lifecycle) stop() {
	l.stopOnce.Do(func() {
		if !l.started.Load() {
			// never mounted: no loop is draining the mailbox
			l.box.close()
			close(l.done)
			return
		}

		l.post(func() {
			l.mounted = false
			l.gen++
			l.releaseSubscription()
			if l.onTeardown != nil {
				l.onTeardown()
			}
			l.cancel()
			// anything still queued sees mounted == false and only cleans up
			for _, fn := range l.box.close() {
				fn()
			}
			close(l.done)
		})
	})
	<-l.done
}

// Done is closed once the view has been unmounted.
func (l *lifecycle) Done() <-chan struct{} {
	return l.done
}

// current reports whether results issued under gen may still be applied.
func (l *lifecycle) current(gen uint64) bool {
	return l.mounted && gen == l.gen
}

// bumpGeneration invalidates every in-flight result and drops the
// subscription. Used on route change.
func (l *lifecycle) bumpGeneration() {
	l.gen++
	l.releaseSubscription()
}

func (l *lifecycle) releaseSubscription() {
	if l.sub != nil {
		l.sub.Release()
		l.sub = nil
	}
}

// requestCtx bounds a single store call and is cancelled on unmount.
func (l *lifecycle) requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(l.ctx, l.cfg.requestTimeout)
}

// writeCtx is not cancelled on unmount, so a write the user already
// triggered is carried through even if the view goes away.
func (l *lifecycle) writeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(l.ctx), l.cfg.requestTimeout)
}

// fetch runs read on its own goroutine and applies the result on the loop.
// Results are dropped if the generation moved on or a later fetch has already
// been applied.
func fetch[T any](l *lifecycle, read func(ctx context.Context) (T, error), apply func(result T, err error)) {
	gen := l.gen
	l.fetchSeq++
	seq := l.fetchSeq

	go func() {
		ctx, cancel := l.requestCtx()
		result, err := read(ctx)
		cancel()

		l.post(func() {
			if !l.current(gen) {
				return
			}
			if seq < l.appliedSeq {
				l.log.WithField("seq", seq).Debug("dropping out-of-order fetch result")
				return
			}
			l.appliedSeq = seq
			apply(result, err)
		})
	}()
}

// subscribe opens a subscription for the current generation and calls
// onChange on the loop for every notification. A subscription that arrives
// after the generation moved on is released immediately.
func (l *lifecycle) subscribe(scope changefeed.Scope, onChange func()) {
	gen := l.gen
	log := l.log.WithField("scope", scope.String())

	go func() {
		ctx, cancel := l.requestCtx()
		sub, err := l.store.SubscribeToChanges(ctx, scope)
		cancel()
		if err != nil {
			log.WithError(err).Warn("failed to subscribe to changes")
			return
		}

		accepted := l.post(func() {
			if !l.current(gen) {
				sub.Release()
				return
			}
			l.releaseSubscription()
			l.sub = sub
			go l.forward(sub, gen, onChange)
		})
		if !accepted {
			sub.Release()
		}
	}()
}

// forward turns notifications into loop events until the subscription is released.
func (l *lifecycle) forward(sub *changefeed.Subscription, gen uint64, onChange func()) {
	for event := range sub.C() {
		l.log.WithFields(logrus.Fields{
			"event":     event.Type,
			"record_id": event.RecordID,
		}).Debug("change notification")

		l.post(func() {
			if l.current(gen) {
				onChange()
			}
		})
	}
}
