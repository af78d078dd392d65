package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prudhvinik1/statusboard/internal/changefeed"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/prudhvinik1/statusboard/internal/repositories"
	"github.com/sirupsen/logrus"
)

// StatusService is the status record store as seen by the views: ordered
// reads, single-record reads, full-replace upserts and change subscriptions.
type StatusService struct {
	repo repositories.StatusRecordRepository
	feed changefeed.Feed
	now  func() time.Time
	log  *logrus.Entry
}

func NewStatusService(repo repositories.StatusRecordRepository, feed changefeed.Feed) *StatusService {
	return &StatusService{
		repo: repo,
		feed: feed,
		now:  time.Now,
		log:  logrus.WithField("component", "status_service"),
	}
}

// ListAll returns every record ordered by updated_at descending.
func (s *StatusService) ListAll(ctx context.Context) ([]models.StatusRecord, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, classify("list", err)
	}
	return records, nil
}

// GetByID returns ErrNotFound when the id has no record, or a *StoreError.
func (s *StatusService) GetByID(ctx context.Context, id string) (*models.StatusRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, classify("get", err)
	}
	return record, nil
}

// Upsert replaces status, message and updated_at for id, creating the record
// if needed, then publishes a change event. A zero UpdatedAt is stamped with
// the current time.
func (s *StatusService) Upsert(ctx context.Context, id string, update models.StatusUpdate) (*models.StatusRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrUnauthenticated)
	}
	if !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, update.Status)
	}
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = s.now()
	}
	// Postgres keeps microseconds; truncating here makes every driver read back
	// exactly what was written.
	update.UpdatedAt = update.UpdatedAt.UTC().Truncate(time.Microsecond)

	record := update.Apply(id)
	created, err := s.repo.Upsert(ctx, &record)
	if err != nil {
		return nil, classify("upsert", err)
	}

	event := changefeed.Event{Type: models.ChangeUpdate, RecordID: id, At: record.UpdatedAt}
	if created {
		event.Type = models.ChangeInsert
	}

	// the write already succeeded; a lost notification only delays other viewers
	if err := s.feed.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithField("record_id", id).Warn("failed to publish change event")
	}

	s.log.WithFields(logrus.Fields{
		"record_id": id,
		"status":    record.Status,
		"event":     event.Type,
	}).Debug("status record written")

	return &record, nil
}

// SubscribeToChanges opens a subscription scoped to the whole collection or
// to one record. Callers must Release it.
func (s *StatusService) SubscribeToChanges(ctx context.Context, scope changefeed.Scope) (*changefeed.Subscription, error) {
	sub, err := s.feed.Subscribe(ctx, scope)
	if err != nil {
		return nil, classify("subscribe", err)
	}
	return sub, nil
}
