package views

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/prudhvinik1/statusboard/internal/repositories"
	"github.com/prudhvinik1/statusboard/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type toast struct {
	success bool
	message string
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (n *recordingNotifier) NotifySuccess(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{success: true, message: message})
}

func (n *recordingNotifier) NotifyError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{success: false, message: message})
}

func (n *recordingNotifier) has(success bool, message string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, t := range n.toasts {
		if t.success == success && t.message == message {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.toasts)
}

type recordingRoster struct {
	mu     sync.Mutex
	states []RosterState
}

func (r *recordingRoster) RenderRoster(state RosterState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingRoster) last() (RosterState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return RosterState{}, false
	}
	return r.states[len(r.states)-1], true
}

func (r *recordingRoster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

type recordingProfile struct {
	mu     sync.Mutex
	states []ProfileState
}

func (r *recordingProfile) RenderProfile(state ProfileState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingProfile) last() (ProfileState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return ProfileState{}, false
	}
	return r.states[len(r.states)-1], true
}

func (r *recordingProfile) all() []ProfileState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProfileState(nil), r.states...)
}

type fakeIdentity struct {
	mu       sync.Mutex
	user     *User
	signOuts int
}

func signedIn(id string) *fakeIdentity {
	return &fakeIdentity{user: &User{ID: id}}
}

func (f *fakeIdentity) CurrentUser() (User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return User{}, false
	}
	return *f.user, true
}

func (f *fakeIdentity) SignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.user = nil
}

func (f *fakeIdentity) signOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOuts
}

type recordingClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *recordingClipboard) WriteText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *recordingClipboard) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// backend is a real status service over the memory drivers
type backend struct {
	repo *repositories.MemoryStatusRecordRepository
	feed *changefeed.MemoryFeed
	svc  *services.StatusService
}

func newBackend() *backend {
	repo := repositories.NewMemoryStatusRecordRepository()
	feed := changefeed.NewMemoryFeed()
	return &backend{repo: repo, feed: feed, svc: services.NewStatusService(repo, feed)}
}

func (b *backend) seed(t *testing.T, id string, status models.Status, message string, at time.Time) {
	t.Helper()
	_, err := b.svc.Upsert(context.Background(), id, models.StatusUpdate{Status: status, Message: message, UpdatedAt: at})
	require.NoError(t, err)
}

// scriptedStore wraps a Store and lets tests fail or hold individual calls
type scriptedStore struct {
	Store

	mu        sync.Mutex
	listErr   error
	upsertErr error
	getGates  map[string]chan struct{}
	listGate  chan struct{}
}

func (s *scriptedStore) ListAll(ctx context.Context) ([]models.StatusRecord, error) {
	s.mu.Lock()
	err, gate := s.listErr, s.listGate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return s.Store.ListAll(ctx)
}

func (s *scriptedStore) Upsert(ctx context.Context, id string, update models.StatusUpdate) (*models.StatusRecord, error) {
	s.mu.Lock()
	err := s.upsertErr
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return s.Store.Upsert(ctx, id, update)
}

func (s *scriptedStore) GetByID(ctx context.Context, id string) (*models.StatusRecord, error) {
	s.mu.Lock()
	gate := s.getGates[id]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return s.Store.GetByID(ctx, id)
}

func (s *scriptedStore) holdGet(id string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getGates == nil {
		s.getGates = make(map[string]chan struct{})
	}
	gate := make(chan struct{})
	s.getGates[id] = gate
	return gate
}

func quietLogger() Option {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return WithLogger(logrus.NewEntry(logger))
}
