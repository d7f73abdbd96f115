package persist

import (
	"context"
	"fmt"
)

// ItemEvent is one pickup, drop or kick recorded for later analysis.
type ItemEvent struct {
	Kind  string // "pickup", "drop", "kick"
	Item  uint64
	Tick  uint64
	X, Y  float64
	Speed float64
}

type EventLogRepo struct {
	db *DB
}

func NewEventLogRepo(db *DB) *EventLogRepo {
	return &EventLogRepo{db: db}
}

// WriteBatch atomically writes a batch of events in a single transaction.
func (r *EventLogRepo) WriteBatch(ctx context.Context, events []ItemEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("event log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO item_events (kind, item, tick, x, y, speed)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.Kind, int64(e.Item), int64(e.Tick), e.X, e.Y, e.Speed,
		); err != nil {
			return fmt.Errorf("event log insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
