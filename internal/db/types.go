package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Session statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Player is a club member eligible for session rosters.
type Player struct {
	ID        string
	Name      string
	Email     sql.NullString
	CreatedAt time.Time
}

// Session is one scheduling cycle: a drop-in block, box-league week or
// tournament with a fixed roster, format and court allocation.
type Session struct {
	ID        string
	Name      string
	Format    string
	MaxCourts int
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionRound is a persisted generated round. Resting holds player IDs.
type SessionRound struct {
	ID        int64
	SessionID string
	Number    int
	Resting   []string
	CreatedAt time.Time
}

// SessionMatch is one persisted match within a round. Court is the 1-based
// court index within the round. Scores are null until a result is recorded.
type SessionMatch struct {
	ID      int64
	RoundID int64
	Court   int
	SideA   []string
	SideB   []string
	ScoreA  sql.NullInt64
	ScoreB  sql.NullInt64
}

// encodeIDs stores a player-ID list as a JSON column value.
func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode id list: %w", err)
	}
	return string(data), nil
}

func decodeIDs(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return ids, nil
}
