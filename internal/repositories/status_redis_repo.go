package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	statusRecordKeyPrefix = "status_record:"
	statusRecordsByUpdate = "status_records:by_updated"
)

// RedisStatusRecordRepository keeps each record as a JSON string and orders
// them with a sorted set scored by updated_at in microseconds.
type RedisStatusRecordRepository struct {
	client *redis.Client
}

func NewRedisStatusRecordRepository(client *redis.Client) *RedisStatusRecordRepository {
	return &RedisStatusRecordRepository{client: client}
}

func (r *RedisStatusRecordRepository) ListAll(ctx context.Context) ([]models.StatusRecord, error) {
	ids, err := r.client.ZRevRange(ctx, statusRecordsByUpdate, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list status record ids: %w", err)
	}
	if len(ids) == 0 {
		return []models.StatusRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = statusRecordKey(id)
	}

	// MGet retrieves every record in one round trip
	results, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get status records: %w", err)
	}

	records := make([]models.StatusRecord, 0, len(results))
	for i, result := range results {
		data, ok := result.(string)
		if !ok {
			// index entry without a value; skip rather than fail the whole list
			continue
		}
		record, err := decodeStatusRecord(ids[i], data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sortStatusRecords(records)
	return records, nil
}

func (r *RedisStatusRecordRepository) GetByID(ctx context.Context, id string) (*models.StatusRecord, error) {
	data, err := r.client.Get(ctx, statusRecordKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status record: %w", err)
	}

	record, err := decodeStatusRecord(id, data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RedisStatusRecordRepository) Upsert(ctx context.Context, record *models.StatusRecord) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("failed to marshal status record: %w", err)
	}

	var added *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, statusRecordKey(record.ID), data, 0)
		added = pipe.ZAdd(ctx, statusRecordsByUpdate, redis.Z{
			Score:  float64(record.UpdatedAt.UnixMicro()),
			Member: record.ID,
		})
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert status record: %w", err)
	}
	return added.Val() == 1, nil
}

type redisStatusRecord struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"custom_message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func decodeStatusRecord(id, data string) (models.StatusRecord, error) {
	var raw redisStatusRecord
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return models.StatusRecord{}, fmt.Errorf("failed to unmarshal status record %s: %w", id, err)
	}
	return models.StatusRecord{
		ID:        id,
		Status:    normalizeStoredStatus(id, raw.Status),
		Message:   raw.Message,
		UpdatedAt: raw.UpdatedAt,
	}, nil
}

func statusRecordKey(id string) string {
	return statusRecordKeyPrefix + id
}
