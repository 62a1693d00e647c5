package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent appends a domain event row and returns the stored record.
func (s *PGStore) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (Event, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	var (
		ev Event
		id uuid.UUID
	)
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, topic, aggregate_id, payload, occurred_at`,
		topic, aggregateID, payload)
	if err := row.Scan(&id, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt); err != nil {
		return Event{}, err
	}
	ev.ID = id.String()
	return ev, nil
}
