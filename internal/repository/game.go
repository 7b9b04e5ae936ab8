package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
)

type GameRepository interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	ListByPlayer(ctx context.Context, userID string) ([]*entity.GameRecord, error)
}

type gameRepository struct {
	conn *sql.DB
}

func NewGameRepository(conn *sql.DB) GameRepository {
	return &gameRepository{
		conn: conn,
	}
}

func (that *gameRepository) Save(ctx context.Context, record *entity.GameRecord) error {
	query := `INSERT INTO games (id, player_x_id, player_o_id, winner_id, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	winnerID := sql.NullString{String: record.WinnerID, Valid: record.WinnerID != ""}

	_, err := that.conn.ExecContext(ctx, query,
		record.ID, record.PlayerXID, record.PlayerOID, winnerID, record.Result, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("can't save game record: %w", err)
	}

	return nil
}

// ListByPlayer - returns every finished game userID took part in, oldest first.
func (that *gameRepository) ListByPlayer(ctx context.Context, userID string) ([]*entity.GameRecord, error) {
	query := `SELECT id, player_x_id, player_o_id, winner_id, result, created_at
		FROM games WHERE player_x_id = ? OR player_o_id = ?
		ORDER BY created_at`

	rows, err := that.conn.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("can't list game records: %w", err)
	}
	defer rows.Close()

	var records []*entity.GameRecord

	for rows.Next() {
		var record entity.GameRecord
		var winnerID sql.NullString

		if err = rows.Scan(&record.ID, &record.PlayerXID, &record.PlayerOID, &winnerID, &record.Result, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("can't scan game record: %w", err)
		}

		record.WinnerID = winnerID.String
		records = append(records, &record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate game records: %w", err)
	}

	return records, nil
}
