package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/statusboard/internal/models"
	"github.com/sirupsen/logrus"
)

type PostgresStatusRecordRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStatusRecordRepository(pool *pgxpool.Pool) *PostgresStatusRecordRepository {
	return &PostgresStatusRecordRepository{pool: pool}
}

func (r *PostgresStatusRecordRepository) ListAll(ctx context.Context) ([]models.StatusRecord, error) {
	query := `SELECT id, status, COALESCE(custom_message, ''), updated_at
	          FROM status_records
	          ORDER BY updated_at DESC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query status records: %w", err)
	}
	defer rows.Close()

	records := []models.StatusRecord{}
	for rows.Next() {
		record, err := scanStatusRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status records: %w", err)
	}
	return records, nil
}

func (r *PostgresStatusRecordRepository) GetByID(ctx context.Context, id string) (*models.StatusRecord, error) {
	query := `SELECT id, status, COALESCE(custom_message, ''), updated_at
	          FROM status_records
	          WHERE id = $1`

	record, err := scanStatusRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status record: %w", err)
	}
	return &record, nil
}

// Upsert writes status, message and updated_at together. xmax is zero only for
// a freshly inserted tuple, which tells inserts and updates apart.
func (r *PostgresStatusRecordRepository) Upsert(ctx context.Context, record *models.StatusRecord) (bool, error) {
	query := `INSERT INTO status_records (id, status, custom_message, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE
	          SET status = EXCLUDED.status,
	              custom_message = EXCLUDED.custom_message,
	              updated_at = EXCLUDED.updated_at
	          RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		record.ID,
		string(record.Status),
		record.Message,
		record.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert status record: %w", err)
	}
	return inserted, nil
}

func scanStatusRecord(row pgx.Row) (models.StatusRecord, error) {
	var (
		record models.StatusRecord
		status string
	)
	if err := row.Scan(&record.ID, &status, &record.Message, &record.UpdatedAt); err != nil {
		return models.StatusRecord{}, err
	}
	record.Status = normalizeStoredStatus(record.ID, status)
	return record, nil
}

func normalizeStoredStatus(id, raw string) models.Status {
	s, ok := models.NormalizeStatus(raw)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"component": "status_repo",
			"record_id": id,
			"status":    raw,
		}).Warn("unknown stored status, treating as offline")
	}
	return s
}
