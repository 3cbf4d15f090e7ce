// Package protocol defines the JSON messages exchanged between peers and the relay.
// Every message is a single object carrying a "type" field; bit sequences travel as strings of '0' and '1'.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/move"
)

// Peer to relay.
const (
	TypeMove        = "move"
	TypeChat        = "chat"
	TypeSurrender   = "surrender"
	TypeVoteRestart = "vote_restart"
)

// Relay to peer.
const (
	TypeAssign        = "assign"
	TypeGameStart     = "game_start"
	TypeMoveMade      = "move_made"
	TypeTurn          = "turn"
	TypeChatMsg       = "chat_msg"
	TypeRoundOver     = "round_over"
	TypeRestartVote   = "restart_vote"
	TypeServerRestart = "server_restart"
	TypeServerEnd     = "server_end"
	TypeError         = "error"
)

var ErrMissingType = errors.New("protocol: message has no type")

type Envelope struct {
	Type string `json:"type"`
}

// PeekType returns the type of a raw message without decoding the rest of it.
func PeekType(data []byte) (string, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	if envelope.Type == "" {
		return "", ErrMissingType
	}

	return envelope.Type, nil
}

type Move struct {
	Type     string        `json:"type"`
	Position int           `json:"position"`
	Symbol   string        `json:"symbol"`
	Encoded  move.Encoding `json:"encoded"`
}

func NewMove(encoded move.Encoding) Move {
	return Move{Type: TypeMove, Position: encoded.Position, Symbol: encoded.Symbol, Encoded: encoded}
}

type Chat struct {
	Type    string        `json:"type"`
	Text    string        `json:"text"`
	Method  codec.Method  `json:"method"`
	Encoded bits.Sequence `json:"encoded"`
}

func NewChat(text string, method codec.Method, encoded bits.Sequence) Chat {
	return Chat{Type: TypeChat, Text: text, Method: method, Encoded: encoded}
}

type Assign struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

type GameStart struct {
	Type    string                   `json:"type"`
	Current string                   `json:"current"`
	Board   [entity.BoardSize]string `json:"board"`
}

type MoveMade struct {
	Type     string `json:"type"`
	Position int    `json:"position"`
	Symbol   string `json:"symbol"`
	Modified bool   `json:"modified"`
	ModType  string `json:"mod_type"`
}

type Turn struct {
	Type    string `json:"type"`
	Current string `json:"current"`
}

type ChatMsg struct {
	Type     string        `json:"type"`
	From     string        `json:"from"`
	Encoded  bits.Sequence `json:"encoded"`
	Method   codec.Method  `json:"method"`
	Original string        `json:"original"`
	Modified bool          `json:"modified"`
}

type RoundOver struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type RestartVote struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// Notice is sent for server_restart and server_end.
type Notice struct {
	Type string `json:"type"`
	Note string `json:"note"`
}

type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewError(err error) Error {
	return Error{Type: TypeError, Error: err.Error()}
}
