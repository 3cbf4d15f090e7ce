package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// fixedRand always returns the same draw, clamped to n.
type fixedRand int

func (that fixedRand) Intn(n int) int {
	return min(int(that), n-1)
}

func startedGame() *entity.Game {
	game := entity.NewGame("123", 1)
	game.Start()
	return game
}

func TestPlace(t *testing.T) {
	t.Run("Places and toggles the turn", func(t *testing.T) {
		// Given: a new round
		game := startedGame()

		// When: X plays the center
		err := Place(game, entity.PlayerX, 4)

		// Then
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, game.Board[4])
		assert.Equal(t, entity.PlayerO, game.Turn)
	})

	t.Run("Move After Game Finished", func(t *testing.T) {
		// Given: a game where player X has already won
		game := &entity.Game{
			Board:  [9]string{entity.PlayerX, entity.PlayerX, entity.PlayerX, "", entity.PlayerO, "", "", entity.PlayerO, ""},
			Status: entity.StatusFinished,
			Turn:   entity.PlayerO,
		}

		// When: player O tries to make a move after the game is over
		err := Place(game, entity.PlayerO, 3)

		// Then: ErrGameFinished is returned
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Occupied cell", func(t *testing.T) {
		game := startedGame()
		require.NoError(t, Place(game, entity.PlayerX, 0))

		err := Place(game, entity.PlayerO, 0)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})
}

func TestShiftToEmpty(t *testing.T) {
	t.Run("Lands on the shifted cell when it is empty", func(t *testing.T) {
		game := startedGame()

		assert.Equal(t, 7, ShiftToEmpty(game, 4, 3))
		assert.Equal(t, 1, ShiftToEmpty(game, 4, 6))
	})

	t.Run("Walks past occupied cells", func(t *testing.T) {
		// Given: cells 5 and 6 are taken
		game := startedGame()
		game.Board[5] = entity.PlayerX
		game.Board[6] = entity.PlayerO

		// When: 4 shifted by 1 lands on 5
		cell := ShiftToEmpty(game, 4, 1)

		// Then: it moves on to 7
		assert.Equal(t, 7, cell)
	})

	t.Run("Full board gives up after one lap", func(t *testing.T) {
		game := &entity.Game{
			Board: [9]string{
				entity.PlayerX, entity.PlayerO, entity.PlayerX,
				entity.PlayerO, entity.PlayerX, entity.PlayerO,
				entity.PlayerO, entity.PlayerX, entity.PlayerO,
			},
		}

		assert.Equal(t, 6, ShiftToEmpty(game, 4, 2))
	})
}

func TestFlipPosition(t *testing.T) {
	game := startedGame()

	// draw 0 -> offset 1, draw 7 -> offset 8
	assert.Equal(t, 5, FlipPosition(game, 4, fixedRand(0)))
	assert.Equal(t, 3, FlipPosition(game, 4, fixedRand(7)))
}

func TestRandomPosition(t *testing.T) {
	t.Run("Picks among empty cells", func(t *testing.T) {
		game := startedGame()
		game.Board[0] = entity.PlayerX
		game.Board[1] = entity.PlayerO

		cell, err := RandomPosition(game, fixedRand(0))

		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Full board", func(t *testing.T) {
		game := &entity.Game{
			Board: [9]string{"X", "O", "X", "O", "X", "O", "O", "X", "O"},
		}

		_, err := RandomPosition(game, fixedRand(0))

		require.ErrorIs(t, err, apperror.ErrBoardFull)
	})
}
