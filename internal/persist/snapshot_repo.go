package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Snapshot is the saved state of one play session.
type Snapshot struct {
	Level     string
	Tick      uint64
	PlayerX   float64
	PlayerY   float64
	ItemsHeld int
	SavedAt   time.Time
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) Save(ctx context.Context, s Snapshot) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO snapshots (level, tick, player_x, player_y, items_held)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.Level, int64(s.Tick), s.PlayerX, s.PlayerY, s.ItemsHeld,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for level, or nil if there is none.
func (r *SnapshotRepo) Latest(ctx context.Context, level string) (*Snapshot, error) {
	s := &Snapshot{}
	var tick int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT level, tick, player_x, player_y, items_held, saved_at
		 FROM snapshots WHERE level = $1
		 ORDER BY saved_at DESC, id DESC LIMIT 1`, level,
	).Scan(&s.Level, &tick, &s.PlayerX, &s.PlayerY, &s.ItemsHeld, &s.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	s.Tick = uint64(tick)
	return s, nil
}
