package views

import (
	"context"
	"errors"
	"time"

	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/prudhvinik1/statusboard/internal/models"
)

// ProfileState is an immutable snapshot handed to the renderer. Record is nil
// while loading.
type ProfileState struct {
	Phase     Phase
	ID        string
	Record    *models.StatusRecord
	Display   models.Display
	UpdatedAt time.Time
}

// Profile shows one user's status read-only. The target id comes from the
// route; a missing record leaves the view loading until a change notification
// for that id brings one in.
type Profile struct {
	lifecycle

	notifier Notifier
	renderer ProfileRenderer

	// loop-owned
	id     string
	phase  Phase
	record *models.StatusRecord
}

func NewProfile(store Store, notifier Notifier, renderer ProfileRenderer, opts ...Option) (*Profile, error) {
	if store == nil || notifier == nil || renderer == nil {
		return nil, errors.New("profile requires store, notifier and renderer")
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		notifier: notifier,
		renderer: renderer,
	}
	p.init("profile", store, cfg)
	p.onTeardown = func() {
		p.phase = PhaseUnloaded
		p.record = nil
	}
	return p, nil
}

// Mount loads the record for id and subscribes to changes of that id only.
func (p *Profile) Mount(ctx context.Context, id string) error {
	return p.start(ctx, func() {
		p.load(id)
	})
}

// Navigate switches to another id. The previous subscription is released and
// results still in flight for the old id are discarded.
func (p *Profile) Navigate(id string) {
	p.post(func() {
		if !p.mounted || id == p.id {
			return
		}
		p.bumpGeneration()
		p.load(id)
	})
}

func (p *Profile) Unmount() {
	p.stop()
}

func (p *Profile) load(id string) {
	p.id = id
	p.phase = PhaseLoading
	p.record = nil
	p.render()

	// nothing to resolve without a route id
	if id == "" {
		return
	}

	p.refresh()
	p.subscribe(changefeed.Record(id), p.refresh)
}

// refresh re-reads the one record. Any failure, including a missing record,
// is a toast; the data state does not change.
func (p *Profile) refresh() {
	id := p.id
	read := func(ctx context.Context) (*models.StatusRecord, error) {
		return p.store.GetByID(ctx, id)
	}

	fetch(&p.lifecycle, read, func(record *models.StatusRecord, err error) {
		if err != nil {
			p.log.WithError(err).WithField("record_id", id).Warn("failed to fetch profile")
			p.notifier.NotifyError(MsgFetchProfileFailed)
			return
		}
		p.record = record
		p.phase = PhaseLoaded
		p.render()
	})
}

func (p *Profile) render() {
	state := ProfileState{Phase: p.phase, ID: p.id}
	if p.record != nil {
		rec := *p.record
		state.Record = &rec
		state.Display = rec.Status.Display()
		state.UpdatedAt = rec.UpdatedAt
	}
	p.renderer.RenderProfile(state)
}
