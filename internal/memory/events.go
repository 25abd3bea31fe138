package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RecordEvent appends an entry to the event log. The log is append-only;
// each row carries the wall-clock time in milliseconds, so rows recorded
// within the same millisecond share a timestamp and are ordered by id.
func (s *Store) RecordEvent(ctx context.Context, op string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("record_event marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO event_log (op, data, timestamp_ms, version) VALUES (?, ?, ?, 1)`,
		op, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record_event: %w", err)
	}
	return nil
}

// Event is one row read back from the event log.
type Event struct {
	ID          int64
	Op          string
	Data        map[string]any
	TimestampMs int64
	Version     int
}

// RecentEvents returns the most recent limit events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, op, data, timestamp_ms, version FROM event_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent_events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var raw string
		if err := rows.Scan(&e.ID, &e.Op, &raw, &e.TimestampMs, &e.Version); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(raw), &e.Data)
		out = append(out, e)
	}
	return out, rows.Err()
}
