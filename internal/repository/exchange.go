package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const DefaultExchangeLimit = 50

type ExchangeRepository interface {
	Save(ctx context.Context, exchange *entity.Exchange) error
	List(ctx context.Context, limit int) ([]entity.Exchange, error)
}

type exchangeRepository struct {
	conn *sql.DB
}

func NewExchangeRepository(conn *sql.DB) ExchangeRepository {
	return &exchangeRepository{
		conn: conn,
	}
}

// Save appends the exchange to the journal and sets its ID.
func (that *exchangeRepository) Save(ctx context.Context, exchange *entity.Exchange) error {
	query := `INSERT INTO exchanges
		(game_id, round, kind, sender, action, method, original, delivered, modified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := that.conn.ExecContext(ctx, query,
		exchange.GameID,
		exchange.Round,
		exchange.Kind,
		exchange.From,
		exchange.Action,
		exchange.Method,
		exchange.Original,
		exchange.Delivered,
		exchange.Modified,
		exchange.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("can't save exchange: %w", err)
	}

	if exchange.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("can't read exchange id: %w", err)
	}

	return nil
}

// List returns the newest exchanges first. A non-positive limit falls back to DefaultExchangeLimit.
func (that *exchangeRepository) List(ctx context.Context, limit int) ([]entity.Exchange, error) {
	if limit <= 0 {
		limit = DefaultExchangeLimit
	}

	query := `SELECT id, game_id, round, kind, sender, action, method, original, delivered, modified, created_at
		FROM exchanges ORDER BY id DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := make([]entity.Exchange, 0, limit)

	for rows.Next() {
		var (
			exchange  entity.Exchange
			createdAt string
		)

		err = rows.Scan(
			&exchange.ID,
			&exchange.GameID,
			&exchange.Round,
			&exchange.Kind,
			&exchange.From,
			&exchange.Action,
			&exchange.Method,
			&exchange.Original,
			&exchange.Delivered,
			&exchange.Modified,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("can't scan exchange: %w", err)
		}

		if exchange.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("can't parse exchange time: %w", err)
		}

		exchanges = append(exchanges, exchange)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate exchanges: %w", err)
	}

	return exchanges, nil
}
