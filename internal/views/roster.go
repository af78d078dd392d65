package views

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/sirupsen/logrus"
)

// RosterEntry is one rendered row of the roster.
type RosterEntry struct {
	ID        string
	Label     string
	IsSelf    bool
	Status    models.Status
	Display   models.Display
	Message   string
	UpdatedAt time.Time
}

// RosterState is an immutable snapshot handed to the renderer.
type RosterState struct {
	Phase          Phase
	UserID         string
	Selected       models.Status
	PendingMessage string
	Entries        []RosterEntry
}

// Roster shows the signed-in user's status controls and a live list of every
// user's status, most recently updated first.
type Roster struct {
	lifecycle

	identity  Identity
	notifier  Notifier
	clipboard Clipboard
	renderer  RosterRenderer

	// loop-owned
	phase    Phase
	records  []models.StatusRecord
	selected models.Status
	message  string
}

func NewRoster(store Store, identity Identity, notifier Notifier, clipboard Clipboard, renderer RosterRenderer, opts ...Option) (*Roster, error) {
	if store == nil || identity == nil || notifier == nil || renderer == nil {
		return nil, errors.New("roster requires store, identity, notifier and renderer")
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	r := &Roster{
		identity:  identity,
		notifier:  notifier,
		clipboard: clipboard,
		renderer:  renderer,
		selected:  models.DefaultStatus,
	}
	r.init("roster", store, cfg)
	r.onTeardown = func() { r.phase = PhaseUnloaded }
	return r, nil
}

// Mount issues the initial read and opens a collection-wide change
// subscription. The view unmounts itself when ctx is cancelled.
func (r *Roster) Mount(ctx context.Context) error {
	return r.start(ctx, func() {
		r.phase = PhaseLoading
		r.render()
		r.refresh()
		r.subscribe(changefeed.All(), r.refresh)
	})
}

// Unmount releases the subscription and discards every pending result.
// Safe to call more than once.
func (r *Roster) Unmount() {
	r.stop()
}

// SetMessage updates the pending custom message. Nothing is written until the
// next status selection.
func (r *Roster) SetMessage(message string) {
	r.post(func() {
		if !r.mounted {
			return
		}
		r.message = message
		r.render()
	})
}

// SelectStatus writes {status, pending message, now} for the signed-in user.
// Local selection changes only after the store confirms the write.
func (r *Roster) SelectStatus(status models.Status) {
	r.post(func() {
		if !r.mounted {
			return
		}
		user, ok := r.identity.CurrentUser()
		if !ok {
			return
		}
		if !status.Valid() {
			r.log.WithField("status", status).Warn("rejecting unknown status selection")
			r.notifier.NotifyError(MsgStatusUpdateFailed)
			return
		}

		update := models.StatusUpdate{
			Status:    status,
			Message:   r.message,
			UpdatedAt: r.cfg.now(),
		}
		r.write(user.ID, update)
	})
}

func (r *Roster) write(userID string, update models.StatusUpdate) {
	gen := r.gen
	log := r.log.WithFields(logrus.Fields{"record_id": userID, "status": update.Status})

	go func() {
		ctx, cancel := r.writeCtx()
		_, err := r.store.Upsert(ctx, userID, update)
		cancel()

		r.post(func() {
			if !r.current(gen) {
				if err == nil {
					log.Debug("write confirmed after unmount")
				}
				return
			}
			if err != nil {
				log.WithError(err).Warn("status update failed")
				r.notifier.NotifyError(MsgStatusUpdateFailed)
				return
			}

			r.selected = update.Status
			r.notifier.NotifySuccess(MsgStatusUpdated)
			r.render()
			if r.cfg.refetchAfterWrite {
				r.refresh()
			}
		})
	}()
}

// Share copies the signed-in user's profile URL. No store I/O.
func (r *Roster) Share() {
	r.post(func() {
		if !r.mounted {
			return
		}
		user, ok := r.identity.CurrentUser()
		if !ok {
			return
		}
		if r.clipboard != nil {
			r.clipboard.WriteText(ProfileURL(r.cfg.baseURL, user.ID))
		}
		r.notifier.NotifySuccess(MsgShareCopied)
	})
}

// SignOut hands off to the identity provider and does not wait for it.
func (r *Roster) SignOut() {
	r.post(func() {
		if !r.mounted {
			return
		}
		go r.identity.SignOut()
	})
}

// refresh re-reads the full ordered list. The prior list stays on failure.
func (r *Roster) refresh() {
	fetch(&r.lifecycle, r.store.ListAll, func(records []models.StatusRecord, err error) {
		if err != nil {
			r.log.WithError(err).Warn("failed to fetch roster")
			r.notifier.NotifyError(MsgFetchProfilesFailed)
			return
		}
		r.records = records
		r.phase = PhaseLoaded
		r.render()
	})
}

func (r *Roster) render() {
	r.renderer.RenderRoster(r.snapshot())
}

func (r *Roster) snapshot() RosterState {
	var userID string
	if user, ok := r.identity.CurrentUser(); ok {
		userID = user.ID
	}

	entries := make([]RosterEntry, len(r.records))
	for i, rec := range r.records {
		self := userID != "" && rec.ID == userID
		label := "User " + rec.ID
		if self {
			label = "You"
		}
		entries[i] = RosterEntry{
			ID:        rec.ID,
			Label:     label,
			IsSelf:    self,
			Status:    rec.Status,
			Display:   rec.Status.Display(),
			Message:   rec.Message,
			UpdatedAt: rec.UpdatedAt,
		}
	}

	return RosterState{
		Phase:          r.phase,
		UserID:         userID,
		Selected:       r.selected,
		PendingMessage: r.message,
		Entries:        entries,
	}
}

// ProfileURL is the shareable address of a user's profile page.
func ProfileURL(baseURL, id string) string {
	return baseURL + "/profile/" + url.PathEscape(id)
}
