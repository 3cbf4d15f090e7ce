// Package tictactoe holds the board rules the relay applies when it forwards a move,
// including how an operator may redirect a pending move to another cell.
package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// maxFlipOffset bounds the shift applied by a flipped move: offsets are drawn from [1, 8].
const maxFlipOffset = entity.BoardSize - 1

// Rand is the random source used to pick cells.
type Rand interface {
	Intn(n int) int
}

// Place puts mark on cell and advances the round.
func Place(game *entity.Game, mark string, cell int) error {
	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	if err := game.MakeTurn(mark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	return nil
}

// FlipPosition moves from by a random offset of 1..8 cells and then walks forward to the first
// empty cell, giving up after a full lap. A full board returns the shifted cell unchanged.
func FlipPosition(game *entity.Game, from int, rnd Rand) int {
	return ShiftToEmpty(game, from, 1+rnd.Intn(maxFlipOffset))
}

func ShiftToEmpty(game *entity.Game, from, offset int) int {
	cell := mod(from+offset, entity.BoardSize)

	for range entity.BoardSize {
		if game.Board[cell] == entity.EmptyCell {
			break
		}
		cell = (cell + 1) % entity.BoardSize
	}

	return cell
}

// RandomPosition picks an empty cell uniformly.
func RandomPosition(game *entity.Game, rnd Rand) (int, error) {
	empty := game.EmptyCells()
	if len(empty) == 0 {
		return 0, apperror.ErrBoardFull
	}

	return empty[rnd.Intn(len(empty))], nil
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
