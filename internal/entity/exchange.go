package entity

import "time"

const (
	ExchangeMove = "move"
	ExchangeChat = "chat"
)

// Exchange records one item the relay forwarded and what the operator did to it.
type Exchange struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	Round     int       `json:"round"`
	Kind      string    `json:"kind"`
	From      string    `json:"from"`
	Action    string    `json:"action"`
	Method    string    `json:"method,omitempty"`
	Original  string    `json:"original"`
	Delivered string    `json:"delivered"`
	Modified  bool      `json:"modified"`
	CreatedAt time.Time `json:"created_at"`
}
