package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/prudhvinik1/statusboard/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error
}

// StatusRecordRepository stores one StatusRecord per user id.
type StatusRecordRepository interface {
	// ListAll returns every record, most recently updated first.
	ListAll(ctx context.Context) ([]models.StatusRecord, error)
	GetByID(ctx context.Context, id string) (*models.StatusRecord, error)
	// Upsert creates the record or replaces status, message and updated_at.
	// It reports whether a new row was created.
	Upsert(ctx context.Context, record *models.StatusRecord) (created bool, err error)
}
