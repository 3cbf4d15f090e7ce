package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

var _ usecase.Observer = (*Server)(nil)

func (that *Server) handleMove(ctx context.Context, peer *connection, body []byte) error {
	log := that.logger.With("method", "handleMove", "symbol", peer.mark)

	var msg protocol.Move
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal move: %w", err)
	}

	// the seat decides the symbol, not the message
	if msg.Symbol != "" && msg.Symbol != peer.mark {
		log.Warn("move symbol does not match the seat", "declared", msg.Symbol)
	}

	if err := that.relay.SubmitMove(ctx, peer.mark, msg.Position, msg.Encoded); err != nil {
		return fmt.Errorf("move not accepted: %w", err)
	}

	log.Debug("move held for the operator", "position", msg.Position)

	return nil
}

func (that *Server) handleChat(ctx context.Context, peer *connection, body []byte) error {
	var msg protocol.Chat
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal chat: %w", err)
	}

	if err := that.relay.SubmitChat(ctx, peer.mark, msg.Text, msg.Method, msg.Encoded); err != nil {
		return fmt.Errorf("chat not accepted: %w", err)
	}

	return nil
}

func (that *Server) handleSurrender(ctx context.Context, peer *connection, _ []byte) error {
	if _, err := that.relay.Surrender(ctx, peer.mark); err != nil {
		return fmt.Errorf("surrender not accepted: %w", err)
	}

	return nil
}

func (that *Server) handleVoteRestart(ctx context.Context, peer *connection, _ []byte) error {
	if _, err := that.relay.VoteRestart(ctx, peer.mark); err != nil {
		return fmt.Errorf("restart vote not accepted: %w", err)
	}

	return nil
}

func (that *Server) OnGameStarted(game entity.Game) {
	that.broadcast(protocol.GameStart{Type: protocol.TypeGameStart, Current: game.Turn, Board: game.Board})
}

// OnMovePending is a no-op: peers learn about a move only once it is forwarded.
func (that *Server) OnMovePending(usecase.PendingMove) {}

func (that *Server) OnChatPending(usecase.PendingChat) {}

func (that *Server) OnMoveForwarded(event usecase.MoveForwarded) {
	that.broadcast(protocol.MoveMade{
		Type:     protocol.TypeMoveMade,
		Position: event.Position,
		Symbol:   event.Symbol,
		Modified: event.Modified,
		ModType:  event.ModType,
	})
}

func (that *Server) OnChatForwarded(event usecase.ChatForwarded) {
	that.sendTo(event.To, protocol.ChatMsg{
		Type:     protocol.TypeChatMsg,
		From:     event.From,
		Encoded:  event.Encoded,
		Method:   event.Method,
		Original: event.Original,
		Modified: event.Modified,
	})
}

func (that *Server) OnTurn(current string) {
	that.broadcast(protocol.Turn{Type: protocol.TypeTurn, Current: current})
}

func (that *Server) OnRoundOver(event usecase.RoundOver) {
	that.broadcast(protocol.RoundOver{Type: protocol.TypeRoundOver, Winner: event.Winner, Reason: event.Reason})
}

func (that *Server) OnRestartVote(event usecase.RestartVote) {
	that.sendTo(event.To, protocol.RestartVote{Type: protocol.TypeRestartVote, From: event.From, Message: event.Message})
}

func (that *Server) OnServerRestart(note string) {
	that.broadcast(protocol.Notice{Type: protocol.TypeServerRestart, Note: note})
}

func (that *Server) OnServerEnd(note string) {
	that.broadcast(protocol.Notice{Type: protocol.TypeServerEnd, Note: note})
}
