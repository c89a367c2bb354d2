package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("db: not found")

// CreatePlayer inserts a player.
func (db *DB) CreatePlayer(ctx context.Context, player Player) error {
	_, err := db.conn().ExecContext(ctx,
		"INSERT INTO players (id, name, email) VALUES (?, ?, ?)",
		player.ID, player.Name, player.Email,
	)
	if err != nil {
		return fmt.Errorf("create player %s: %w", player.ID, err)
	}
	return nil
}

// GetPlayer loads a player by ID.
func (db *DB) GetPlayer(ctx context.Context, id string) (Player, error) {
	var player Player
	err := db.conn().QueryRowContext(ctx,
		"SELECT id, name, email, created_at FROM players WHERE id = ?", id,
	).Scan(&player.ID, &player.Name, &player.Email, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, fmt.Errorf("player %s: %w", id, ErrNotFound)
		}
		return Player{}, fmt.Errorf("get player %s: %w", id, err)
	}
	return player, nil
}

// ListPlayers returns all players ordered by name.
func (db *DB) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := db.conn().QueryContext(ctx,
		"SELECT id, name, email, created_at FROM players ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var player Player
		if err := rows.Scan(&player.ID, &player.Name, &player.Email, &player.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player. Session membership rows cascade.
func (db *DB) DeletePlayer(ctx context.Context, id string) error {
	result, err := db.conn().ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	return nil
}
