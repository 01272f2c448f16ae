package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/sovereign/internal/memory"
	"github.com/flemzord/sovereign/internal/provider"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// touchSQL upserts the session row. touched is a store-wide counter so
// Sessions orders deterministically even within one millisecond.
const touchSQL = `
	INSERT INTO sessions (id, touched, updated_at)
	VALUES (?, (SELECT COALESCE(MAX(touched), 0) + 1 FROM sessions), strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	ON CONFLICT(id) DO UPDATE SET
		touched    = excluded.touched,
		updated_at = excluded.updated_at`

// Save replaces the stored history of a session in one transaction.
func (s *Store) Save(sessionID string, msgs []provider.LLMMessage) error {
	// HistoryStore interface does not carry context; use TODO as placeholder.
	ctx := context.TODO()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("sqlite: clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO messages (session_id, seq, role, content) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, msg := range msgs {
		if _, err := stmt.ExecContext(ctx, sessionID, i, string(msg.Role), msg.Content); err != nil {
			return fmt.Errorf("sqlite: insert message %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, touchSQL, sessionID); err != nil {
		return fmt.Errorf("sqlite: touch session: %w", err)
	}

	return tx.Commit()
}

// Load returns the stored history of a session in chronological order.
func (s *Store) Load(sessionID string) ([]provider.LLMMessage, error) {
	ctx := context.TODO()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", memory.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("sqlite: lookup session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content
		FROM messages
		WHERE session_id = ?
		ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load: %w", err)
	}
	defer func() { _ = rows.Close() }()

	msgs := []provider.LLMMessage{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load rows: %w", err)
	}

	return msgs, nil
}

// SetSummary stores a compaction summary for a session, replacing any previous one.
func (s *Store) SetSummary(sessionID string, summary string) error {
	_, err := s.db.ExecContext(context.TODO(), `
		INSERT OR REPLACE INTO summaries (session_id, summary, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))`,
		sessionID, summary,
	)
	if err != nil {
		return fmt.Errorf("sqlite: set summary: %w", err)
	}
	return nil
}

// GetSummary returns the stored summary for a session.
// Returns an empty string if no summary exists.
func (s *Store) GetSummary(sessionID string) (string, error) {
	var summary string
	err := s.db.QueryRowContext(context.TODO(),
		"SELECT summary FROM summaries WHERE session_id = ?", sessionID,
	).Scan(&summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("sqlite: get summary: %w", err)
	}
	return summary, nil
}

// Sessions lists stored transcripts, most recently saved first.
func (s *Store) Sessions() ([]memory.SessionInfo, error) {
	rows, err := s.db.QueryContext(context.TODO(), `
		SELECT s.id, s.updated_at, COUNT(m.seq)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.touched DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []memory.SessionInfo
	for rows.Next() {
		var (
			info    memory.SessionInfo
			updated string
		)
		if err := rows.Scan(&info.ID, &updated, &info.Turns); err != nil {
			return nil, fmt.Errorf("sqlite: scan session: %w", err)
		}
		if t, err := time.Parse(timeLayout, updated); err == nil {
			info.UpdatedAt = t
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list sessions rows: %w", err)
	}
	return infos, nil
}

// Purge removes all history and summary for a session.
func (s *Store) Purge(sessionID string) error {
	tx, err := s.db.BeginTx(context.TODO(), nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin purge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM messages WHERE session_id = ?",
		"DELETE FROM summaries WHERE session_id = ?",
		"DELETE FROM sessions WHERE id = ?",
	} {
		if _, err := tx.ExecContext(context.TODO(), q, sessionID); err != nil {
			return fmt.Errorf("sqlite: purge: %w", err)
		}
	}

	return tx.Commit()
}

// Len returns the number of messages stored for a session.
func (s *Store) Len(sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(context.TODO(),
		"SELECT COUNT(*) FROM messages WHERE session_id = ?", sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count messages: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (provider.LLMMessage, error) {
	var (
		msg  provider.LLMMessage
		role string
	)
	if err := s.Scan(&role, &msg.Content); err != nil {
		return msg, fmt.Errorf("sqlite: scan message: %w", err)
	}
	msg.Role = provider.MessageRole(role)
	return msg, nil
}
