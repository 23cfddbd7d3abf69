package store

import (
	"context"
	"database/sql"
	"time"
)

// Stats summarizes board occupancy.
type Stats struct {
	Count    int        `json:"count"`
	Capacity int        `json:"capacity"`
	Oldest   *time.Time `json:"oldest,omitempty"`
	Newest   *time.Time `json:"newest,omitempty"`
}

// Stats returns occupancy and the creation-time range of stored memories.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Capacity: s.capacity}

	n, err := s.Count(ctx)
	if err != nil {
		return st, err
	}
	st.Count = n
	if n == 0 {
		return st, nil
	}

	var oldest, newest string
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(created_at), MAX(created_at) FROM memories`).Scan(&oldest, &newest)
	if err != nil && err != sql.ErrNoRows {
		return st, err
	}
	if t, err := time.Parse(timeLayout, oldest); err == nil {
		st.Oldest = &t
	}
	if t, err := time.Parse(timeLayout, newest); err == nil {
		st.Newest = &t
	}
	return st, nil
}
