// Package peer is a player's side of the relay: it encodes moves and chats before they leave
// and decodes what the relay hands back.
package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/move"
	"github.com/rocketscienceinc/tictactoe-relay/internal/observability"
	"github.com/rocketscienceinc/tictactoe-relay/internal/protocol"
)

const writeTimeout = 5 * time.Second

// Event is one message from the relay. Exactly one of the typed fields is set, matching Type.
type Event struct {
	Type string

	Assign      *protocol.Assign
	GameStart   *protocol.GameStart
	MoveMade    *protocol.MoveMade
	Turn        *protocol.Turn
	Chat        *protocol.ChatMsg
	RoundOver   *protocol.RoundOver
	RestartVote *protocol.RestartVote
	Notice      *protocol.Notice
	Error       *protocol.Error

	// Decoded is the receiver side decode of Chat.
	Decoded *message.Decoded
}

type Client struct {
	logger   *slog.Logger
	conn     *websocket.Conn
	pipeline *message.Pipeline

	writeMutex sync.Mutex

	stateMutex sync.RWMutex
	symbol     string
	myTurn     bool
	active     bool
}

func Dial(ctx context.Context, logger *slog.Logger, url string, pipeline *message.Pipeline) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial relay (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial relay: %w", err)
	}

	return &Client{
		logger:   logger.With("component", "peer"),
		conn:     conn,
		pipeline: pipeline,
	}, nil
}

// Symbol is the mark the relay assigned, empty until the assign event was read.
func (that *Client) Symbol() string {
	that.stateMutex.RLock()
	defer that.stateMutex.RUnlock()

	return that.symbol
}

// MyTurn reports whether a round is running and the relay last announced this peer to move.
func (that *Client) MyTurn() bool {
	that.stateMutex.RLock()
	defer that.stateMutex.RUnlock()

	return that.active && that.myTurn
}

// SendMove sends position with its full 11-bit protection. It is refused with apperror.ErrNotYourTurn
// outside a round or out of turn, and after a send until the relay announces the next turn.
func (that *Client) SendMove(position int, symbol string) (move.Encoding, error) {
	encoded, err := move.Encode(position, symbol)
	if err != nil {
		return move.Encoding{}, err
	}

	if !that.claimTurn() {
		return move.Encoding{}, apperror.ErrNotYourTurn
	}

	if err = that.write(protocol.NewMove(encoded)); err != nil {
		that.stateMutex.Lock()
		that.myTurn = true
		that.stateMutex.Unlock()

		return move.Encoding{}, err
	}

	return encoded, nil
}

func (that *Client) claimTurn() bool {
	that.stateMutex.Lock()
	defer that.stateMutex.Unlock()

	if !that.active || !that.myTurn {
		return false
	}
	that.myTurn = false

	return true
}

// SendChat encodes text with method and sends the encoded bits.
func (that *Client) SendChat(text string, method codec.Method) (message.Encoded, error) {
	encoded, err := that.pipeline.Encode(text, method)
	if err != nil {
		return message.Encoded{}, err
	}

	if err = that.write(protocol.NewChat(text, method, encoded.EncodedData)); err != nil {
		return message.Encoded{}, err
	}

	return encoded, nil
}

func (that *Client) Surrender() error {
	return that.write(protocol.Envelope{Type: protocol.TypeSurrender})
}

func (that *Client) VoteRestart() error {
	return that.write(protocol.Envelope{Type: protocol.TypeVoteRestart})
}

// ReadEvent blocks for the next relay message. Chats are decoded with the client's pipeline.
func (that *Client) ReadEvent() (Event, error) {
	log := that.logger.With("method", "ReadEvent")

	_, body, err := that.conn.ReadMessage()
	if err != nil {
		return Event{}, fmt.Errorf("failed to read message: %w", err)
	}

	kind, err := protocol.PeekType(body)
	if err != nil {
		return Event{}, err
	}

	event := Event{Type: kind}

	var target any
	switch kind {
	case protocol.TypeAssign:
		event.Assign = &protocol.Assign{}
		target = event.Assign
	case protocol.TypeGameStart:
		event.GameStart = &protocol.GameStart{}
		target = event.GameStart
	case protocol.TypeMoveMade:
		event.MoveMade = &protocol.MoveMade{}
		target = event.MoveMade
	case protocol.TypeTurn:
		event.Turn = &protocol.Turn{}
		target = event.Turn
	case protocol.TypeChatMsg:
		event.Chat = &protocol.ChatMsg{}
		target = event.Chat
	case protocol.TypeRoundOver:
		event.RoundOver = &protocol.RoundOver{}
		target = event.RoundOver
	case protocol.TypeRestartVote:
		event.RestartVote = &protocol.RestartVote{}
		target = event.RestartVote
	case protocol.TypeServerRestart, protocol.TypeServerEnd:
		event.Notice = &protocol.Notice{}
		target = event.Notice
	case protocol.TypeError:
		event.Error = &protocol.Error{}
		target = event.Error
	default:
		log.Warn("unknown event type", "type", kind)
		return event, nil
	}

	if err = json.Unmarshal(body, target); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}

	that.track(event)

	if event.Chat != nil {
		decoded, err := that.pipeline.Decode(event.Chat.Encoded, event.Chat.Method)
		if err != nil {
			return Event{}, fmt.Errorf("failed to decode chat: %w", err)
		}

		observability.RecordDecode(string(event.Chat.Method), decoded.Outcome())
		event.Decoded = &decoded
	}

	return event, nil
}

// track follows the round and turn announcements that gate SendMove.
func (that *Client) track(event Event) {
	that.stateMutex.Lock()
	defer that.stateMutex.Unlock()

	switch event.Type {
	case protocol.TypeAssign:
		that.symbol = event.Assign.Symbol
	case protocol.TypeGameStart:
		that.active = true
		that.myTurn = event.GameStart.Current == that.symbol
	case protocol.TypeTurn:
		that.myTurn = event.Turn.Current == that.symbol
	case protocol.TypeRoundOver, protocol.TypeServerEnd:
		that.active = false
		that.myTurn = false
	}
}

// Close says goodbye to the relay and closes the connection.
func (that *Client) Close() error {
	that.writeMutex.Lock()
	_ = that.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout),
	)
	that.writeMutex.Unlock()

	return that.conn.Close()
}

func (that *Client) write(msg any) error {
	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	if err := that.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
