package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusRepoCases runs the same behaviour checks against every driver
var statusRepoCases = []struct {
	name string
	open func(t *testing.T) StatusRecordRepository
}{
	{name: "memory", open: func(t *testing.T) StatusRecordRepository { return NewMemoryStatusRecordRepository() }},
	{name: "postgres", open: func(t *testing.T) StatusRecordRepository { return NewPostgresStatusRecordRepository(getTestPool(t)) }},
	{name: "redis", open: func(t *testing.T) StatusRecordRepository {
		client := getTestRedisClient(t)
		t.Cleanup(func() {
			cleanupTestKeys(t, client, context.Background(), "status_record:*", statusRecordsByUpdate)
		})
		return NewRedisStatusRecordRepository(client)
	}},
}

// TestStatusRecordRepository_WriteThenRead tests that a read returns exactly the last write
func TestStatusRecordRepository_WriteThenRead(t *testing.T) {
	for _, tc := range statusRepoCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.open(t)
			ctx := context.Background()
			id := "test-" + uuid.NewString()
			defer cleanupStatusRecord(t, ctx, id)

			first := time.Now().UTC().Truncate(time.Microsecond)
			created, err := repo.Upsert(ctx, &models.StatusRecord{
				ID: id, Status: models.StatusBusy, Message: "in a meeting", UpdatedAt: first,
			})
			require.NoError(t, err)
			assert.True(t, created)

			// ACT: overwrite every mutable field
			second := first.Add(time.Minute)
			created, err = repo.Upsert(ctx, &models.StatusRecord{
				ID: id, Status: models.StatusAway, Message: "lunch", UpdatedAt: second,
			})

			// ASSERT
			require.NoError(t, err)
			assert.False(t, created, "second write should update, not insert")

			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.StatusAway, got.Status)
			assert.Equal(t, "lunch", got.Message)
			assert.True(t, second.Equal(got.UpdatedAt), "updated_at = %v, want %v", got.UpdatedAt, second)
		})
	}
}

// TestStatusRecordRepository_ListAllOrder tests that records come back newest first
func TestStatusRecordRepository_ListAllOrder(t *testing.T) {
	for _, tc := range statusRepoCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.open(t)
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Microsecond)

			ids := []string{"test-" + uuid.NewString(), "test-" + uuid.NewString(), "test-" + uuid.NewString()}
			for i, id := range ids {
				defer cleanupStatusRecord(t, ctx, id)
				_, err := repo.Upsert(ctx, &models.StatusRecord{
					ID: id, Status: models.StatusAvailable, UpdatedAt: base.Add(time.Duration(i) * time.Second),
				})
				require.NoError(t, err)
			}

			// ACT
			records, err := repo.ListAll(ctx)

			// ASSERT
			require.NoError(t, err)
			for i := 1; i < len(records); i++ {
				assert.False(t, records[i].UpdatedAt.After(records[i-1].UpdatedAt),
					"record %d (%s) is newer than record %d", i, records[i].ID, i-1)
			}

			pos := make(map[string]int)
			for i, r := range records {
				pos[r.ID] = i
			}
			assert.Less(t, pos[ids[2]], pos[ids[1]])
			assert.Less(t, pos[ids[1]], pos[ids[0]])
		})
	}
}

// TestStatusRecordRepository_NotFound tests missing ids map to ErrNotFound
func TestStatusRecordRepository_NotFound(t *testing.T) {
	for _, tc := range statusRepoCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.open(t)

			_, err := repo.GetByID(context.Background(), "missing-"+uuid.NewString())
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// Helper functions for test setup

var testPool *pgxpool.Pool

// getTestPool returns a connection pool for TEST_DATABASE_URL, skipping the
// test when it is not set. The schema is expected to be migrated.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testPool != nil {
		return testPool
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	require.NoError(t, err, "Failed to connect to test database")
	testPool = pool
	return pool
}

// cleanupStatusRecord removes a test row from Postgres when a test pool is open
func cleanupStatusRecord(t *testing.T, ctx context.Context, id string) {
	if testPool == nil {
		return
	}
	if _, err := testPool.Exec(ctx, `DELETE FROM status_records WHERE id = $1`, id); err != nil {
		t.Logf("Warning: failed to cleanup status record %s: %v", id, err)
	}
}
