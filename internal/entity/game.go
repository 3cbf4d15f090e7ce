package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""

	BoardSize = 9
)

var (
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrUnknownGameStatus = errors.New("unknown game status")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Game is one round played through the relay.
type Game struct {
	ID     string            `json:"id"`
	Round  int               `json:"round"`
	Board  [BoardSize]string `json:"board"`
	Winner string            `json:"winner"`
	Status string            `json:"status"`
	Turn   string            `json:"player_turn"`
}

func NewGame(id string, round int) *Game {
	return &Game{
		ID:     id,
		Round:  round,
		Turn:   PlayerX,
		Status: StatusWaiting,
	}
}

// Start clears the board and hands the first turn to X.
func (that *Game) Start() {
	that.Board = [BoardSize]string{}
	that.Winner = ""
	that.Turn = PlayerX
	that.Status = StatusOngoing
}

func (that *Game) DetermineGameResult() string {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that.Board {
		if cell == EmptyCell {
			return ""
		}
	}

	return PlayerTie
}

func (that *Game) UpdateGameState() {
	switch winner := that.DetermineGameResult(); winner {
	// one player wins
	case PlayerX, PlayerO:
		that.Finish(winner)
	// tie
	case PlayerTie:
		that.Finish(PlayerTie)
	// game continue
	default:
		that.Status = StatusOngoing
	}
}

func (that *Game) MakeTurn(playerMark string, cell int) error {
	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = playerMark
	that.Turn = Opponent(playerMark)

	that.UpdateGameState()

	return nil
}

// Finish ends the round. An empty winner means the round was stopped without a result.
func (that *Game) Finish(winner string) {
	that.Winner = winner
	that.Status = StatusFinished
	that.Turn = ""
}

// Surrender finishes the round in favour of the opponent of mark.
func (that *Game) Surrender(mark string) string {
	winner := Opponent(mark)
	that.Finish(winner)
	return winner
}

func (that *Game) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that.Board {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// Opponent returns the other mark. Anything that is not X is treated as O.
func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
