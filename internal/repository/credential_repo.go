package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-device-gateway/internal/model"
)

// CredentialRepository is the durable per-user credential store. Each record
// is written as a whole in a single UPSERT, so concurrent writers are
// last-writer-wins and a reader can never observe a half-written record.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Get(ctx context.Context, userID string) (model.CredentialRecord, error) {
	var (
		record     model.CredentialRecord
		accessMs   int64
		refreshMs  int64
		createdMs  int64
		updatedMs  int64
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, access_token, refresh_token, access_expires_at,
		        refresh_expires_at, region, created_at, updated_at
		 FROM credentials WHERE user_id = ?`, userID).
		Scan(&record.UserID, &record.AccessToken, &record.RefreshToken,
			&accessMs, &refreshMs, &record.Region, &createdMs, &updatedMs)

	if errors.Is(err, sql.ErrNoRows) {
		return model.CredentialRecord{}, model.ErrCredentialNotFound
	}
	if err != nil {
		return model.CredentialRecord{}, fmt.Errorf("get credential record: %w", err)
	}

	record.AccessExpiresAt = time.UnixMilli(accessMs).UTC()
	record.RefreshExpiresAt = time.UnixMilli(refreshMs).UTC()
	record.CreatedAt = time.UnixMilli(createdMs).UTC()
	record.UpdatedAt = time.UnixMilli(updatedMs).UTC()

	return record, nil
}

func (r *CredentialRepository) Put(ctx context.Context, record model.CredentialRecord) error {
	if record.UserID == "" {
		return fmt.Errorf("put credential record: %w: empty user id", model.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, access_token, refresh_token,
		        access_expires_at, refresh_expires_at, region, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		        access_token = excluded.access_token,
		        refresh_token = excluded.refresh_token,
		        access_expires_at = excluded.access_expires_at,
		        refresh_expires_at = excluded.refresh_expires_at,
		        region = excluded.region,
		        updated_at = excluded.updated_at`,
		record.UserID, record.AccessToken, record.RefreshToken,
		record.AccessExpiresAt.UnixMilli(), record.RefreshExpiresAt.UnixMilli(),
		record.Region, record.CreatedAt.UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("put credential record: %w", err)
	}

	return nil
}
