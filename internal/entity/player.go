package entity

// Player is a seat at the relay. ID identifies the socket session holding it.
type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
	Ready  bool   `json:"ready"`
}
