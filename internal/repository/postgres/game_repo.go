package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iamasit07/4-in-a-row/engine/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// SaveGame stores a finished game. Saving the same game twice keeps the
// first row.
func (r *GameRepo) SaveGame(ctx context.Context, rec domain.GameRecord) error {
	movesJSON, err := json.Marshal(rec.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	query := `
	INSERT INTO games (game_id, human_player, difficulty, moves, status, winner, reason, duration_seconds, created_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (game_id) DO NOTHING;
	`
	_, err = r.DB.ExecContext(ctx, query,
		rec.GameID,
		int(rec.HumanPlayer),
		rec.Difficulty,
		movesJSON,
		rec.Status.String(),
		int(rec.Winner),
		rec.Reason,
		rec.DurationSeconds,
		rec.CreatedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", rec.GameID, err)
	}
	return nil
}

const selectGame = `
	SELECT game_id, human_player, difficulty, moves, status, winner, reason,
	       duration_seconds, created_at, finished_at
	FROM games`

func (r *GameRepo) GetGame(ctx context.Context, gameID string) (domain.GameRecord, error) {
	row := r.DB.QueryRowContext(ctx, selectGame+` WHERE game_id = $1;`, gameID)
	rec, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GameRecord{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.GameRecord{}, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return rec, nil
}

// ListGames returns the most recently finished games first.
func (r *GameRepo) ListGames(ctx context.Context, limit int) ([]domain.GameRecord, error) {
	rows, err := r.DB.QueryContext(ctx, selectGame+` ORDER BY finished_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := []domain.GameRecord{}
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, rec)
	}
	return games, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (domain.GameRecord, error) {
	var (
		rec           domain.GameRecord
		human, winner int
		movesJSON     []byte
		status        string
	)
	err := s.Scan(
		&rec.GameID,
		&human,
		&rec.Difficulty,
		&movesJSON,
		&status,
		&winner,
		&rec.Reason,
		&rec.DurationSeconds,
		&rec.CreatedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return domain.GameRecord{}, err
	}

	if err := json.Unmarshal(movesJSON, &rec.Moves); err != nil {
		return domain.GameRecord{}, fmt.Errorf("failed to unmarshal moves: %w", err)
	}
	if rec.Status, err = domain.ParseGameStatus(status); err != nil {
		return domain.GameRecord{}, err
	}
	rec.HumanPlayer = domain.PlayerID(human)
	rec.Winner = domain.PlayerID(winner)
	return rec, nil
}
