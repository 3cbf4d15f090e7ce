package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/move"
	"github.com/rocketscienceinc/tictactoe-relay/internal/noise"
	"github.com/rocketscienceinc/tictactoe-relay/internal/observability"
	"github.com/rocketscienceinc/tictactoe-relay/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-relay/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
}

type exchangeRepo interface {
	Save(ctx context.Context, exchange *entity.Exchange) error
}

type MoveAction string

const (
	MovePass   MoveAction = "pass"
	MoveFlip   MoveAction = "flip"
	MoveRandom MoveAction = "random"
)

func ParseMoveAction(raw string) (MoveAction, error) {
	switch action := MoveAction(raw); action {
	case MovePass, MoveFlip, MoveRandom:
		return action, nil
	default:
		return "", fmt.Errorf("%w: move %q", apperror.ErrUnknownAction, raw)
	}
}

type ChatAction string

const (
	ChatPass      ChatAction = "pass"
	ChatFlipBit              = ChatAction(noise.CorruptionFlipBit)
	ChatFlipMulti            = ChatAction(noise.CorruptionFlipMulti)
)

func ParseChatAction(raw string) (ChatAction, error) {
	switch action := ChatAction(raw); action {
	case ChatPass, ChatFlipBit, ChatFlipMulti:
		return action, nil
	default:
		return "", fmt.Errorf("%w: chat %q", apperror.ErrUnknownAction, raw)
	}
}

// PendingMove is a move held for the operator. Decoded is what the relay read from the frame.
type PendingMove struct {
	Symbol     string        `json:"symbol"`
	Position   int           `json:"position"`
	Encoded    move.Encoding `json:"encoded"`
	Decoded    move.Decoding `json:"decoded"`
	ReceivedAt time.Time     `json:"received_at"`
}

// PendingChat is a chat held for the operator. Inspection is the relay's own decode of the bits.
type PendingChat struct {
	From       string          `json:"from"`
	Text       string          `json:"text"`
	Method     codec.Method    `json:"method"`
	Encoded    bits.Sequence   `json:"encoded"`
	Inspection message.Decoded `json:"inspection"`
	ReceivedAt time.Time       `json:"received_at"`
}

type State struct {
	Game         entity.Game     `json:"game"`
	Seats        []entity.Player `json:"seats"`
	PendingMove  *PendingMove    `json:"pending_move"`
	PendingChat  *PendingChat    `json:"pending_chat"`
	RestartVotes []string        `json:"restart_votes"`
}

// Relay sits between the two peers. Every inbound move or chat waits in a single slot until the
// operator passes or tampers with it. A newer item replaces an unresolved one.
type Relay struct {
	logger    *slog.Logger
	games     gameRepo
	exchanges exchangeRepo
	pipeline  *message.Pipeline
	rnd       *noise.Injector
	now       func() time.Time

	mu           sync.Mutex
	game         *entity.Game
	seats        map[string]*entity.Player
	pendingMove  Slot[PendingMove]
	pendingChat  Slot[PendingChat]
	restartVotes map[string]struct{}
	observers    observers
}

func NewRelay(
	logger *slog.Logger,
	games gameRepo,
	exchanges exchangeRepo,
	pipeline *message.Pipeline,
	injector *noise.Injector,
) *Relay {
	return &Relay{
		logger:    logger.With("component", "relay"),
		games:     games,
		exchanges: exchanges,
		pipeline:  pipeline,
		rnd:       injector,
		now:       time.Now,

		game:         entity.NewGame(pkg.GenerateGameID(), 0),
		seats:        make(map[string]*entity.Player),
		restartVotes: make(map[string]struct{}),
	}
}

// Subscribe adds an observer. Subscribe before peers connect.
func (that *Relay) Subscribe(observer Observer) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.observers = append(that.observers, observer)
}

// Join seats a new session, X first and then O.
func (that *Relay) Join(_ context.Context, sessionID string) (entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, mark := range []string{entity.PlayerX, entity.PlayerO} {
		if _, taken := that.seats[mark]; taken {
			continue
		}

		player := &entity.Player{ID: sessionID, Mark: mark, GameID: that.game.ID}
		that.seats[mark] = player

		that.logger.Info("player seated", "symbol", mark)

		return *player, nil
	}

	return entity.Player{}, apperror.ErrRelayFull
}

// Ready marks the seat as able to receive events. The round starts once both seats are ready.
func (that *Relay) Ready(ctx context.Context, mark string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	seat, err := that.seat(mark)
	if err != nil {
		return err
	}
	seat.Ready = true

	if that.bothReady() && that.game.IsWaiting() {
		that.startRound(ctx)
	}

	return nil
}

// Leave frees the seat. An interrupted round goes back to waiting and both slots are dropped.
func (that *Relay) Leave(_ context.Context, mark string) {
	log := that.logger.With("method", "Leave", "symbol", mark)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.seats[mark]; !ok {
		return
	}

	delete(that.seats, mark)
	delete(that.restartVotes, mark)

	that.game.Status = entity.StatusWaiting
	that.pendingMove.Clear()
	that.pendingChat.Clear()

	log.Info("player left")
}

func (that *Relay) SubmitMove(_ context.Context, mark string, position int, encoded move.Encoding) error {
	log := that.logger.With("method", "SubmitMove", "symbol", mark)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.seat(mark); err != nil {
		return err
	}

	if err := that.game.ConfirmOngoingState(); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrGameNotActive, err)
	}

	// only the player to move may fill the slot
	if that.game.Turn != mark {
		return fmt.Errorf("%w: %s to move", apperror.ErrNotYourTurn, that.game.Turn)
	}

	if position < move.MinPosition || position > move.MaxPosition {
		return fmt.Errorf("%w: %d", move.ErrInvalidPosition, position)
	}

	decoded := move.Decode(encoded.FullData, mark)
	observability.RecordDecode("move", decoded.Outcome())

	if decoded.Position == nil || *decoded.Position != position {
		log.Warn("declared position disagrees with frame", "declared", position, "decoded", decoded.Position)
	}

	pending := PendingMove{
		Symbol:     mark,
		Position:   position,
		Encoded:    encoded,
		Decoded:    decoded,
		ReceivedAt: that.now(),
	}

	if that.pendingMove.Put(pending) {
		log.Warn("unresolved pending move overwritten")
		observability.RecordOverwrite(entity.ExchangeMove)
	}

	that.observers.OnMovePending(pending)

	return nil
}

func (that *Relay) SubmitChat(_ context.Context, mark, text string, method codec.Method, encoded bits.Sequence) error {
	log := that.logger.With("method", "SubmitChat", "symbol", mark)

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.seat(mark); err != nil {
		return err
	}

	if _, err := bits.Parse(string(encoded)); err != nil {
		return fmt.Errorf("invalid chat payload: %w", err)
	}

	inspection, err := that.pipeline.Decode(encoded, method)
	if err != nil {
		return fmt.Errorf("invalid chat method: %w", err)
	}

	pending := PendingChat{
		From:       mark,
		Text:       text,
		Method:     method,
		Encoded:    encoded,
		Inspection: inspection,
		ReceivedAt: that.now(),
	}

	if that.pendingChat.Put(pending) {
		log.Warn("unresolved pending chat overwritten")
		observability.RecordOverwrite(entity.ExchangeChat)
	}

	that.observers.OnChatPending(pending)

	return nil
}

// ResolveMove forwards the pending move as is (pass), shifted to another empty cell (flip)
// or to a random empty cell (random). A placement the board rejects drops the move and
// re-announces the turn so the sender can try again.
func (that *Relay) ResolveMove(ctx context.Context, action MoveAction) (MoveForwarded, error) {
	log := that.logger.With("method", "ResolveMove", "action", action)

	that.mu.Lock()
	defer that.mu.Unlock()

	pending, ok := that.pendingMove.Peek()
	if !ok {
		return MoveForwarded{}, apperror.ErrNoPendingMove
	}

	if err := that.game.ConfirmOngoingState(); err != nil {
		return MoveForwarded{}, fmt.Errorf("%w: %w", apperror.ErrGameNotActive, err)
	}

	position := pending.Position

	switch action {
	case MovePass:
	case MoveFlip:
		position = tictactoe.FlipPosition(that.game, position, that.rnd)
	case MoveRandom:
		var err error
		if position, err = tictactoe.RandomPosition(that.game, that.rnd); err != nil {
			return MoveForwarded{}, err
		}
	default:
		return MoveForwarded{}, fmt.Errorf("%w: move %q", apperror.ErrUnknownAction, action)
	}

	that.pendingMove.Clear()

	if err := tictactoe.Place(that.game, pending.Symbol, position); err != nil {
		log.Warn("placement rejected", "symbol", pending.Symbol, "position", position, "error", err)
		that.observers.OnTurn(that.game.Turn)

		return MoveForwarded{}, fmt.Errorf("placement rejected: %w", err)
	}

	event := MoveForwarded{
		Position: position,
		Original: pending.Position,
		Symbol:   pending.Symbol,
		Modified: action != MovePass,
	}
	if event.Modified {
		event.ModType = string(action)
	}

	observability.RecordRelayItem(entity.ExchangeMove, string(action))
	that.saveGame(ctx)
	that.journal(ctx, &entity.Exchange{
		Kind:      entity.ExchangeMove,
		From:      pending.Symbol,
		Action:    string(action),
		Original:  strconv.Itoa(pending.Position),
		Delivered: strconv.Itoa(position),
		Modified:  event.Modified,
	})

	that.observers.OnMoveForwarded(event)

	if that.game.IsFinished() {
		that.endRound(ctx, that.game.Winner, resultReason(that.game.Winner))
	} else {
		that.observers.OnTurn(that.game.Turn)
	}

	return event, nil
}

// ResolveChat delivers the pending chat to the other peer, optionally with flipped bits.
func (that *Relay) ResolveChat(ctx context.Context, action ChatAction) (ChatForwarded, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	pending, ok := that.pendingChat.Peek()
	if !ok {
		return ChatForwarded{}, apperror.ErrNoPendingChat
	}

	encoded := pending.Encoded

	switch action {
	case ChatPass:
	case ChatFlipBit, ChatFlipMulti:
		var err error
		if encoded, err = that.rnd.Corrupt(encoded, noise.Corruption(action)); err != nil {
			return ChatForwarded{}, fmt.Errorf("failed to corrupt chat: %w", err)
		}
	default:
		return ChatForwarded{}, fmt.Errorf("%w: chat %q", apperror.ErrUnknownAction, action)
	}

	that.pendingChat.Clear()

	event := ChatForwarded{
		From:     pending.From,
		To:       entity.Opponent(pending.From),
		Encoded:  encoded,
		Method:   pending.Method,
		Original: pending.Text,
		Modified: action != ChatPass,
	}

	observability.RecordRelayItem(entity.ExchangeChat, string(action))
	that.journal(ctx, &entity.Exchange{
		Kind:      entity.ExchangeChat,
		From:      pending.From,
		Action:    string(action),
		Method:    string(pending.Method),
		Original:  string(pending.Encoded),
		Delivered: string(encoded),
		Modified:  event.Modified,
	})

	that.observers.OnChatForwarded(event)

	return event, nil
}

func (that *Relay) Surrender(ctx context.Context, mark string) (RoundOver, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.seat(mark); err != nil {
		return RoundOver{}, err
	}

	if err := that.game.ConfirmOngoingState(); err != nil {
		return RoundOver{}, fmt.Errorf("%w: %w", apperror.ErrGameNotActive, err)
	}

	winner := that.game.Surrender(mark)

	return that.endRound(ctx, winner, fmt.Sprintf("Player %s surrendered", mark)), nil
}

// VoteRestart records a vote for another round. The first vote is announced to the other peer,
// the second starts the round.
func (that *Relay) VoteRestart(ctx context.Context, mark string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := that.seat(mark); err != nil {
		return false, err
	}

	if that.game.IsOngoing() {
		return false, apperror.ErrGameInProgress
	}

	that.restartVotes[mark] = struct{}{}

	other := entity.Opponent(mark)
	if _, voted := that.restartVotes[other]; !voted {
		that.observers.OnRestartVote(RestartVote{
			From:    mark,
			To:      other,
			Message: fmt.Sprintf("Player %s wants to play again!", mark),
		})
	}

	if len(that.restartVotes) < len(that.seats) || !that.bothReady() {
		return false, nil
	}

	that.startRound(ctx)

	return true, nil
}

// Restart is the operator starting a fresh round with a note to both peers.
func (that *Relay) Restart(ctx context.Context, note string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.bothReady() {
		return apperror.ErrWaitingForPlayers
	}

	that.observers.OnServerRestart(note)
	that.startRound(ctx)

	return nil
}

// End is the operator stopping the current round without a winner.
func (that *Relay) End(ctx context.Context, note string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game.IsOngoing() {
		that.game.Finish("")
		that.saveGame(ctx)
	}
	clear(that.restartVotes)

	that.observers.OnServerEnd(note)
}

func (that *Relay) Snapshot() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	state := State{
		Game:         *that.game,
		Seats:        make([]entity.Player, 0, len(that.seats)),
		RestartVotes: make([]string, 0, len(that.restartVotes)),
	}

	for _, seat := range that.seats {
		state.Seats = append(state.Seats, *seat)
	}
	sort.Slice(state.Seats, func(i, j int) bool { return state.Seats[i].Mark < state.Seats[j].Mark })

	for mark := range that.restartVotes {
		state.RestartVotes = append(state.RestartVotes, mark)
	}
	sort.Strings(state.RestartVotes)

	if pending, ok := that.pendingMove.Peek(); ok {
		state.PendingMove = &pending
	}

	if pending, ok := that.pendingChat.Peek(); ok {
		state.PendingChat = &pending
	}

	return state
}

func (that *Relay) seat(mark string) (*entity.Player, error) {
	seat, ok := that.seats[mark]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownSymbol, mark)
	}
	return seat, nil
}

func (that *Relay) bothReady() bool {
	for _, mark := range []string{entity.PlayerX, entity.PlayerO} {
		seat, ok := that.seats[mark]
		if !ok || !seat.Ready {
			return false
		}
	}
	return true
}

func (that *Relay) startRound(ctx context.Context) {
	that.game = entity.NewGame(pkg.GenerateGameID(), that.game.Round+1)
	that.game.Start()

	that.pendingMove.Clear()
	clear(that.restartVotes)

	for _, seat := range that.seats {
		seat.GameID = that.game.ID
	}

	that.saveGame(ctx)
	that.observers.OnGameStarted(*that.game)
}

func (that *Relay) endRound(ctx context.Context, winner, reason string) RoundOver {
	that.game.Finish(winner)
	clear(that.restartVotes)
	that.saveGame(ctx)

	event := RoundOver{Winner: winner, Reason: reason}
	that.observers.OnRoundOver(event)

	return event
}

func (that *Relay) saveGame(ctx context.Context) {
	log := that.logger.With("method", "saveGame")

	if err := that.games.CreateOrUpdate(ctx, that.game); err != nil {
		log.Error("failed to save game snapshot", "gameID", that.game.ID, "error", err)
	}
}

func (that *Relay) journal(ctx context.Context, exchange *entity.Exchange) {
	log := that.logger.With("method", "journal")

	exchange.GameID = that.game.ID
	exchange.Round = that.game.Round
	exchange.CreatedAt = that.now()

	if err := that.exchanges.Save(ctx, exchange); err != nil {
		log.Error("failed to journal exchange", "kind", exchange.Kind, "error", err)
	}
}

func resultReason(winner string) string {
	if winner == entity.PlayerTie {
		return "It's a draw!"
	}
	return fmt.Sprintf("Player %s wins!", winner)
}
