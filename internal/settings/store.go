package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandi-labs/backend-mandi/internal/pricing"
)

// PGStore persists settings records in Postgres. GST and delivery payloads
// are stored as jsonb columns.
type PGStore struct {
	Pool *pgxpool.Pool
}

const settingsColumns = `id, settings_type, is_active, gst, delivery, created_at, updated_at`

// GetActive returns the single active admin_default record. pgx.ErrNoRows is
// returned when none has been persisted yet.
func (s *PGStore) GetActive(ctx context.Context) (Settings, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM settings
		 WHERE settings_type = $1 AND is_active ORDER BY updated_at DESC LIMIT 1`,
		TypeAdminDefault)
	return scanSettings(row)
}

// GetByID returns a settings record by identifier.
func (s *PGStore) GetByID(ctx context.Context, id string) (Settings, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Settings{}, pgx.ErrNoRows
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM settings WHERE id = $1`, uid)
	return scanSettings(row)
}

// Insert persists a new settings record. A record created as active goes
// through the same sibling deactivation as Activate to keep the single-active
// invariant intact at write time.
func (s *PGStore) Insert(ctx context.Context, in Settings) (Settings, error) {
	gst, delivery, err := encodePayloads(in)
	if err != nil {
		return Settings{}, err
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Settings{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if in.IsActive {
		if _, err := tx.Exec(ctx,
			`UPDATE settings SET is_active = false, updated_at = now()
			 WHERE settings_type = $1 AND is_active`, TypeAdminDefault); err != nil {
			return Settings{}, err
		}
	}
	row := tx.QueryRow(ctx,
		`INSERT INTO settings (settings_type, is_active, gst, delivery)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+settingsColumns,
		TypeAdminDefault, in.IsActive, gst, delivery)
	out, err := scanSettings(row)
	if err != nil {
		return Settings{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Update overwrites the GST and delivery payloads of an existing record.
func (s *PGStore) Update(ctx context.Context, id string, in Settings) (Settings, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Settings{}, pgx.ErrNoRows
	}
	gst, delivery, err := encodePayloads(in)
	if err != nil {
		return Settings{}, err
	}
	row := s.Pool.QueryRow(ctx,
		`UPDATE settings SET gst = $2, delivery = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+settingsColumns,
		uid, gst, delivery)
	return scanSettings(row)
}

// Activate flips the target record active and deactivates every other
// admin_default record in one transaction, so concurrent activations resolve
// to last-writer-wins rather than two simultaneously active records.
func (s *PGStore) Activate(ctx context.Context, id string) (Settings, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Settings{}, pgx.ErrNoRows
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Settings{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if _, err := tx.Exec(ctx,
		`UPDATE settings SET is_active = false, updated_at = now()
		 WHERE settings_type = $1 AND is_active AND id <> $2`, TypeAdminDefault, uid); err != nil {
		return Settings{}, err
	}
	row := tx.QueryRow(ctx,
		`UPDATE settings SET is_active = true, updated_at = now()
		 WHERE id = $1
		 RETURNING `+settingsColumns, uid)
	out, err := scanSettings(row)
	if err != nil {
		return Settings{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Settings{}, err
	}
	return out, nil
}

func encodePayloads(in Settings) ([]byte, []byte, error) {
	gst, err := json.Marshal(in.GST)
	if err != nil {
		return nil, nil, fmt.Errorf("encode gst settings: %w", err)
	}
	delivery, err := json.Marshal(in.Delivery)
	if err != nil {
		return nil, nil, fmt.Errorf("encode delivery settings: %w", err)
	}
	return gst, delivery, nil
}

func scanSettings(row pgx.Row) (Settings, error) {
	var (
		out      Settings
		id       uuid.UUID
		gst      []byte
		delivery []byte
	)
	if err := row.Scan(&id, &out.SettingsType, &out.IsActive, &gst, &delivery, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Settings{}, err
	}
	out.ID = id.String()
	out.GST = pricing.GSTSettings{}
	if err := json.Unmarshal(gst, &out.GST); err != nil {
		return Settings{}, fmt.Errorf("decode gst settings: %w", err)
	}
	if err := json.Unmarshal(delivery, &out.Delivery); err != nil {
		return Settings{}, fmt.Errorf("decode delivery settings: %w", err)
	}
	return out, nil
}
