package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrNotFound         = errors.New("not found")

	ErrGameNotActive     = errors.New("no active round")
	ErrGameInProgress    = errors.New("round is still in progress")
	ErrWaitingForPlayers = errors.New("waiting for both players")
	ErrRelayFull         = errors.New("both seats are taken")
	ErrUnknownSymbol     = errors.New("unknown player symbol")
	ErrNoPendingMove     = errors.New("no pending move")
	ErrNoPendingChat     = errors.New("no pending chat")
	ErrBoardFull         = errors.New("no empty cell left")
	ErrUnknownAction     = errors.New("unknown operator action")
)
