package views

import (
	"context"

	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/prudhvinik1/statusboard/internal/models"
)

// Store is the status record store contract the views consume.
type Store interface {
	ListAll(ctx context.Context) ([]models.StatusRecord, error)
	GetByID(ctx context.Context, id string) (*models.StatusRecord, error)
	Upsert(ctx context.Context, id string, update models.StatusUpdate) (*models.StatusRecord, error)
	SubscribeToChanges(ctx context.Context, scope changefeed.Scope) (*changefeed.Subscription, error)
}

type User struct {
	ID string
}

// Identity yields the signed-in user. SignOut is fire-and-forget.
type Identity interface {
	CurrentUser() (User, bool)
	SignOut()
}

// Notifier shows transient toasts.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// Clipboard receives text the user asked to copy.
type Clipboard interface {
	WriteText(text string)
}

type RosterRenderer interface {
	RenderRoster(state RosterState)
}

type ProfileRenderer interface {
	RenderProfile(state ProfileState)
}

// Toast texts.
const (
	MsgFetchProfilesFailed = "Failed to fetch profiles"
	MsgFetchProfileFailed  = "Failed to fetch profile"
	MsgStatusUpdated       = "Status updated!"
	MsgStatusUpdateFailed  = "Failed to update status"
	MsgShareCopied         = "Profile URL copied to clipboard!"
)
