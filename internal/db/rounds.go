package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CountRounds returns the number of persisted rounds for a session.
func (db *DB) CountRounds(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := db.conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rounds WHERE session_id = ?", sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rounds for session %s: %w", sessionID, err)
	}
	return count, nil
}

// InsertRound persists a round and its matches in one transaction and
// returns the stored round ID.
func (db *DB) InsertRound(ctx context.Context, sessionID string, number int, resting []string, matches []SessionMatch) (int64, error) {
	var roundID int64
	err := db.RunInTx(ctx, func(txdb *DB) error {
		restingJSON, err := encodeIDs(resting)
		if err != nil {
			return err
		}
		result, err := txdb.conn().ExecContext(ctx,
			"INSERT INTO rounds (session_id, round_number, resting) VALUES (?, ?, ?)",
			sessionID, number, restingJSON,
		)
		if err != nil {
			return fmt.Errorf("insert round %d for session %s: %w", number, sessionID, err)
		}
		roundID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("round id: %w", err)
		}

		for _, match := range matches {
			sideA, err := encodeIDs(match.SideA)
			if err != nil {
				return err
			}
			sideB, err := encodeIDs(match.SideB)
			if err != nil {
				return err
			}
			_, err = txdb.conn().ExecContext(ctx,
				"INSERT INTO matches (round_id, court, side_a, side_b) VALUES (?, ?, ?, ?)",
				roundID, match.Court, sideA, sideB,
			)
			if err != nil {
				return fmt.Errorf("insert match on court %d: %w", match.Court, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return roundID, nil
}

// GetRound loads a persisted round and its matches by session and 1-based
// round number.
func (db *DB) GetRound(ctx context.Context, sessionID string, number int) (SessionRound, []SessionMatch, error) {
	var round SessionRound
	var restingJSON string
	err := db.conn().QueryRowContext(ctx,
		"SELECT id, session_id, round_number, resting, created_at FROM rounds WHERE session_id = ? AND round_number = ?",
		sessionID, number,
	).Scan(&round.ID, &round.SessionID, &round.Number, &restingJSON, &round.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRound{}, nil, fmt.Errorf("round %d of session %s: %w", number, sessionID, ErrNotFound)
		}
		return SessionRound{}, nil, fmt.Errorf("get round %d of session %s: %w", number, sessionID, err)
	}
	round.Resting, err = decodeIDs(restingJSON)
	if err != nil {
		return SessionRound{}, nil, err
	}

	matches, err := db.listRoundMatches(ctx, round.ID)
	if err != nil {
		return SessionRound{}, nil, err
	}
	return round, matches, nil
}

// ListSessionMatches returns every persisted match for a session in round and
// court order.
func (db *DB) ListSessionMatches(ctx context.Context, sessionID string) ([]SessionMatch, error) {
	rows, err := db.conn().QueryContext(ctx,
		`SELECT m.id, m.round_id, m.court, m.side_a, m.side_b, m.score_a, m.score_b
		 FROM matches m
		 JOIN rounds r ON r.id = m.round_id
		 WHERE r.session_id = ?
		 ORDER BY r.round_number, m.court`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches for session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

// RecordMatchResult stores the final score for a match.
func (db *DB) RecordMatchResult(ctx context.Context, matchID int64, scoreA, scoreB int) error {
	result, err := db.conn().ExecContext(ctx,
		"UPDATE matches SET score_a = ?, score_b = ? WHERE id = ?",
		scoreA, scoreB, matchID,
	)
	if err != nil {
		return fmt.Errorf("record result for match %d: %w", matchID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record result for match %d: %w", matchID, err)
	}
	if affected == 0 {
		return fmt.Errorf("match %d: %w", matchID, ErrNotFound)
	}
	return nil
}

func (db *DB) listRoundMatches(ctx context.Context, roundID int64) ([]SessionMatch, error) {
	rows, err := db.conn().QueryContext(ctx,
		"SELECT id, round_id, court, side_a, side_b, score_a, score_b FROM matches WHERE round_id = ? ORDER BY court",
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches for round %d: %w", roundID, err)
	}
	defer rows.Close()
	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]SessionMatch, error) {
	var matches []SessionMatch
	for rows.Next() {
		var match SessionMatch
		var sideA, sideB string
		if err := rows.Scan(&match.ID, &match.RoundID, &match.Court, &sideA, &sideB,
			&match.ScoreA, &match.ScoreB); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		var err error
		if match.SideA, err = decodeIDs(sideA); err != nil {
			return nil, err
		}
		if match.SideB, err = decodeIDs(sideB); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan matches: %w", err)
	}
	return matches, nil
}
