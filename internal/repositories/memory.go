package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/statusboard/internal/models"
)

// MemoryStatusRecordRepository is a process-local StatusRecordRepository for
// development and tests. Records are copied in and out.
type MemoryStatusRecordRepository struct {
	mu      sync.RWMutex
	records map[string]models.StatusRecord
}

func NewMemoryStatusRecordRepository() *MemoryStatusRecordRepository {
	return &MemoryStatusRecordRepository{records: make(map[string]models.StatusRecord)}
}

func (m *MemoryStatusRecordRepository) ListAll(ctx context.Context) ([]models.StatusRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	records := make([]models.StatusRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}
	m.mu.RUnlock()

	sortStatusRecords(records)
	return records, nil
}

func (m *MemoryStatusRecordRepository) GetByID(ctx context.Context, id string) (*models.StatusRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *MemoryStatusRecordRepository) Upsert(ctx context.Context, record *models.StatusRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.records[record.ID]
	m.records[record.ID] = *record
	return !exists, nil
}

// sortStatusRecords orders by updated_at descending, ties by id.
func sortStatusRecords(records []models.StatusRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].ID < records[j].ID
	})
}

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[uuid.UUID]models.Account)}
}

func (m *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(account.Email)
	for _, existing := range m.accounts {
		if existing.Email == email {
			return ErrDuplicate
		}
	}

	now := time.Now()
	account.ID = uuid.New()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now
	m.accounts[account.ID] = *account
	return nil
}

func (m *MemoryAccountRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (m *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	for _, account := range m.accounts {
		if account.Email == email {
			return &account, nil
		}
	}
	return nil, ErrNotFound
}

// MemorySessionRepository expires sessions lazily on read.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (m *MemorySessionRepository) Create(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = *session
	return nil
}

func (m *MemorySessionRepository) GetByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(session.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return &session, nil
}

func (m *MemorySessionRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionRepository) DeleteAllForAccount(_ context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.AccountID == accountID {
			delete(m.sessions, id)
		}
	}
	return nil
}
