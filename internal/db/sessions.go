package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession inserts a session and its roster in one transaction. Roster
// entries must reference existing players; foreign keys reject the rest.
func (db *DB) CreateSession(ctx context.Context, session Session, roster []string) error {
	return db.RunInTx(ctx, func(txdb *DB) error {
		_, err := txdb.conn().ExecContext(ctx,
			"INSERT INTO sessions (id, name, format, max_courts, status) VALUES (?, ?, ?, ?, ?)",
			session.ID, session.Name, session.Format, session.MaxCourts, session.Status,
		)
		if err != nil {
			return fmt.Errorf("create session %s: %w", session.ID, err)
		}
		for _, playerID := range roster {
			_, err := txdb.conn().ExecContext(ctx,
				"INSERT INTO session_players (session_id, player_id) VALUES (?, ?)",
				session.ID, playerID,
			)
			if err != nil {
				return fmt.Errorf("add player %s to session %s: %w", playerID, session.ID, err)
			}
		}
		return nil
	})
}

// GetSession loads a session by ID.
func (db *DB) GetSession(ctx context.Context, id string) (Session, error) {
	var session Session
	err := db.conn().QueryRowContext(ctx,
		"SELECT id, name, format, max_courts, status, created_at, updated_at FROM sessions WHERE id = ?", id,
	).Scan(&session.ID, &session.Name, &session.Format, &session.MaxCourts,
		&session.Status, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (db *DB) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := db.conn().QueryContext(ctx,
		"SELECT id, name, format, max_courts, status, created_at, updated_at FROM sessions ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// SessionRoster returns the player IDs registered for a session.
func (db *DB) SessionRoster(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := db.conn().QueryContext(ctx,
		"SELECT player_id FROM session_players WHERE session_id = ? ORDER BY player_id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("session roster %s: %w", sessionID, err)
	}
	defer rows.Close()

	var roster []string
	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		roster = append(roster, playerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session roster %s: %w", sessionID, err)
	}
	return roster, nil
}

// CompleteSession marks a session completed.
func (db *DB) CompleteSession(ctx context.Context, id string) error {
	result, err := db.conn().ExecContext(ctx,
		"UPDATE sessions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		SessionCompleted, id,
	)
	if err != nil {
		return fmt.Errorf("complete session %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// TouchSession bumps a session's updated_at, marking it recently active.
func (db *DB) TouchSession(ctx context.Context, id string) error {
	_, err := db.conn().ExecContext(ctx,
		"UPDATE sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	return nil
}

// ListStaleActiveSessions returns active sessions not updated since cutoff.
// The cutoff is compared in UTC because SQLite's CURRENT_TIMESTAMP is UTC.
func (db *DB) ListStaleActiveSessions(ctx context.Context, cutoff time.Time) ([]Session, error) {
	rows, err := db.conn().QueryContext(ctx,
		"SELECT id, name, format, max_courts, status, created_at, updated_at FROM sessions WHERE status = ? AND updated_at < ? ORDER BY updated_at",
		SessionActive, cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list stale sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// DeleteSessionRounds removes all persisted rounds (and matches, via cascade)
// for a session. Used when a session starts a new scheduling cycle.
func (db *DB) DeleteSessionRounds(ctx context.Context, sessionID string) error {
	_, err := db.conn().ExecContext(ctx, "DELETE FROM rounds WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("delete rounds for session %s: %w", sessionID, err)
	}
	return nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(&session.ID, &session.Name, &session.Format, &session.MaxCourts,
			&session.Status, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}
