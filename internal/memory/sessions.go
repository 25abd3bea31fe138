package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/criticalinsight/sly/internal/session"
)

// CreateSession persists a freshly-created session, one row per message.
func (s *Store) CreateSession(ctx context.Context, sess session.AgentSession) error {
	return s.writeSession(ctx, sess, true)
}

// UpdateSession overwrites a session's status, depth, and messages.
func (s *Store) UpdateSession(ctx context.Context, sess session.AgentSession) error {
	return s.writeSession(ctx, sess, false)
}

func (s *Store) writeSession(ctx context.Context, sess session.AgentSession, insert bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if insert {
		input := ""
		if len(sess.Messages) > 0 {
			input = sess.Messages[0]
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, status, status_err, depth, input, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			sess.ID, string(sess.Status.Kind), sess.Status.Err, sess.Depth, input, time.Now().UnixMilli()); err != nil {
			return fmt.Errorf("create_session: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET status = ?, status_err = ?, depth = ? WHERE id = ?`,
			string(sess.Status.Kind), sess.Status.Err, sess.Depth, sess.ID); err != nil {
			return fmt.Errorf("update_session: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_messages WHERE session_id = ?`, sess.ID); err != nil {
			return fmt.Errorf("update_session clear messages: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO session_messages (session_id, idx, content) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, msg := range sess.Messages {
		if _, err := stmt.ExecContext(ctx, sess.ID, i, msg); err != nil {
			return fmt.Errorf("write session message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetSession reassembles a session, reading its messages ordered by index.
func (s *Store) GetSession(ctx context.Context, id string) (session.AgentSession, bool, error) {
	var statusKind, statusErr string
	var depth int
	err := s.db.QueryRowContext(ctx, `SELECT status, status_err, depth FROM sessions WHERE id = ?`, id).
		Scan(&statusKind, &statusErr, &depth)
	if err == sql.ErrNoRows {
		return session.AgentSession{}, false, nil
	}
	if err != nil {
		return session.AgentSession{}, false, fmt.Errorf("get_session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM session_messages WHERE session_id = ? ORDER BY idx ASC`, id)
	if err != nil {
		return session.AgentSession{}, false, fmt.Errorf("get_session messages: %w", err)
	}
	defer rows.Close()

	var messages []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return session.AgentSession{}, false, err
		}
		messages = append(messages, content)
	}

	sess := session.AgentSession{
		ID:       id,
		Messages: messages,
		Depth:    depth,
		Status:   session.Status{Kind: session.Kind(statusKind), Err: statusErr},
	}
	return sess, true, rows.Err()
}
