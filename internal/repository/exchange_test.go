package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/testing/suite"
)

func TestExchangeRepository(t *testing.T) {
	t.Run("Save assigns increasing IDs", func(t *testing.T) {
		ctx, db := suite.NewJournal(t)
		repo := NewExchangeRepository(db)

		// Given: two forwarded items
		first := &entity.Exchange{GameID: "g", Round: 1, Kind: entity.ExchangeMove, From: "X", Action: "pass",
			Original: "4", Delivered: "4", CreatedAt: time.Now()}
		second := &entity.Exchange{GameID: "g", Round: 1, Kind: entity.ExchangeChat, From: "O", Action: "flip_bit",
			Method: "crc", Original: "0101", Delivered: "0111", Modified: true, CreatedAt: time.Now()}

		// When: both are saved
		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		// Then: they get IDs in order
		assert.Positive(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("List returns newest first and keeps every field", func(t *testing.T) {
		ctx, db := suite.NewJournal(t)
		repo := NewExchangeRepository(db)

		createdAt := time.Date(2024, 10, 1, 12, 30, 0, 123, time.UTC)
		for i, action := range []string{"pass", "flip", "random"} {
			require.NoError(t, repo.Save(ctx, &entity.Exchange{
				GameID:    "g",
				Round:     i + 1,
				Kind:      entity.ExchangeMove,
				From:      "X",
				Action:    action,
				Original:  "0",
				Delivered: "5",
				Modified:  action != "pass",
				CreatedAt: createdAt,
			}))
		}

		// When: the two newest are listed
		exchanges, err := repo.List(ctx, 2)

		// Then: random comes before flip
		require.NoError(t, err)
		require.Len(t, exchanges, 2)
		assert.Equal(t, "random", exchanges[0].Action)
		assert.Equal(t, "flip", exchanges[1].Action)
		assert.Equal(t, 3, exchanges[0].Round)
		assert.True(t, exchanges[0].Modified)
		assert.Equal(t, "5", exchanges[0].Delivered)
		assert.True(t, createdAt.Equal(exchanges[0].CreatedAt))
	})

	t.Run("List on an empty journal", func(t *testing.T) {
		ctx, db := suite.NewJournal(t)

		exchanges, err := NewExchangeRepository(db).List(ctx, 0)

		require.NoError(t, err)
		assert.Empty(t, exchanges)
	})
}
