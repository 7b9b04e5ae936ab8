package entity

import "time"

const (
	ResultXWins = "X"
	ResultOWins = "O"
	ResultDraw  = "draw"
)

// GameRecord - is the durable record of one finished match. Exactly one
// record is written when a room reaches the finished status.
type GameRecord struct {
	ID        string    `json:"id"`
	PlayerXID string    `json:"playerXId"`
	PlayerOID string    `json:"playerOId"`
	WinnerID  string    `json:"winnerId,omitempty"` // empty on draw
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}
