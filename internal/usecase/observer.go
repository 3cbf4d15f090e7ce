package usecase

import (
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

type MoveForwarded struct {
	Position int    `json:"position"`
	Original int    `json:"original"`
	Symbol   string `json:"symbol"`
	Modified bool   `json:"modified"`
	ModType  string `json:"mod_type,omitempty"`
}

type ChatForwarded struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Encoded  bits.Sequence `json:"encoded"`
	Method   codec.Method  `json:"method"`
	Original string        `json:"original"`
	Modified bool          `json:"modified"`
}

type RoundOver struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type RestartVote struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Observer receives relay events. Calls happen while the relay holds its lock,
// so an observer must not call back into the relay.
type Observer interface {
	OnGameStarted(game entity.Game)
	OnMovePending(move PendingMove)
	OnChatPending(chat PendingChat)
	OnMoveForwarded(event MoveForwarded)
	OnChatForwarded(event ChatForwarded)
	OnTurn(current string)
	OnRoundOver(event RoundOver)
	OnRestartVote(event RestartVote)
	OnServerRestart(note string)
	OnServerEnd(note string)
}

// NopObserver ignores every event. Embed it to implement only part of Observer.
type NopObserver struct{}

func (NopObserver) OnGameStarted(entity.Game)     {}
func (NopObserver) OnMovePending(PendingMove)     {}
func (NopObserver) OnChatPending(PendingChat)     {}
func (NopObserver) OnMoveForwarded(MoveForwarded) {}
func (NopObserver) OnChatForwarded(ChatForwarded) {}
func (NopObserver) OnTurn(string)                 {}
func (NopObserver) OnRoundOver(RoundOver)         {}
func (NopObserver) OnRestartVote(RestartVote)     {}
func (NopObserver) OnServerRestart(string)        {}
func (NopObserver) OnServerEnd(string)            {}

// LogObserver writes one structured line per relay event.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With("component", "relay-activity")}
}

func (that *LogObserver) OnGameStarted(game entity.Game) {
	that.logger.Info("game started", "gameID", game.ID, "round", game.Round, "current", game.Turn)
}

func (that *LogObserver) OnMovePending(move PendingMove) {
	that.logger.Info("move pending",
		"symbol", move.Symbol,
		"position", move.Position,
		"frame", move.Encoded.FullData,
		"frameValid", move.Decoded.Valid,
		"frameErrors", move.Decoded.Errors,
	)
}

func (that *LogObserver) OnChatPending(chat PendingChat) {
	that.logger.Info("chat pending",
		"from", chat.From,
		"method", chat.Method,
		"text", chat.Text,
		"bits", len(chat.Encoded),
	)
}

func (that *LogObserver) OnMoveForwarded(event MoveForwarded) {
	if event.Modified {
		that.logger.Warn("move tampered",
			"symbol", event.Symbol, "from", event.Original, "to", event.Position, "modType", event.ModType)
		return
	}
	that.logger.Info("move passed", "symbol", event.Symbol, "position", event.Position)
}

func (that *LogObserver) OnChatForwarded(event ChatForwarded) {
	if event.Modified {
		that.logger.Warn("chat corrupted", "from", event.From, "to", event.To, "method", event.Method)
		return
	}
	that.logger.Info("chat passed", "from", event.From, "to", event.To, "method", event.Method)
}

func (that *LogObserver) OnTurn(current string) {
	that.logger.Debug("turn", "current", current)
}

func (that *LogObserver) OnRoundOver(event RoundOver) {
	that.logger.Info("round over", "winner", event.Winner, "reason", event.Reason)
}

func (that *LogObserver) OnRestartVote(event RestartVote) {
	that.logger.Info("restart vote", "from", event.From)
}

func (that *LogObserver) OnServerRestart(note string) {
	that.logger.Info("operator restarted the game", "note", note)
}

func (that *LogObserver) OnServerEnd(note string) {
	that.logger.Warn("operator ended the game", "note", note)
}

// observers fans every event out in subscription order.
type observers []Observer

func (that observers) OnGameStarted(game entity.Game) {
	for _, o := range that {
		o.OnGameStarted(game)
	}
}

func (that observers) OnMovePending(move PendingMove) {
	for _, o := range that {
		o.OnMovePending(move)
	}
}

func (that observers) OnChatPending(chat PendingChat) {
	for _, o := range that {
		o.OnChatPending(chat)
	}
}

func (that observers) OnMoveForwarded(event MoveForwarded) {
	for _, o := range that {
		o.OnMoveForwarded(event)
	}
}

func (that observers) OnChatForwarded(event ChatForwarded) {
	for _, o := range that {
		o.OnChatForwarded(event)
	}
}

func (that observers) OnTurn(current string) {
	for _, o := range that {
		o.OnTurn(current)
	}
}

func (that observers) OnRoundOver(event RoundOver) {
	for _, o := range that {
		o.OnRoundOver(event)
	}
}

func (that observers) OnRestartVote(event RestartVote) {
	for _, o := range that {
		o.OnRestartVote(event)
	}
}

func (that observers) OnServerRestart(note string) {
	for _, o := range that {
		o.OnServerRestart(note)
	}
}

func (that observers) OnServerEnd(note string) {
	for _, o := range that {
		o.OnServerEnd(note)
	}
}
