package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/farmtrade/internal/order"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindLine resolves the listing price of productID within orderID.
func (s *Store) FindLine(ctx context.Context, orderID, productID uuid.UUID) (*order.Line, error) {
	query := `
		SELECT oi.order_id, oi.product_id, oi.unit_price
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.order_id = $1 AND oi.product_id = $2
		LIMIT 1
	`

	var line order.Line

	err := s.db.QueryRowContext(ctx, query, orderID, productID).
		Scan(&line.OrderID, &line.ProductID, &line.ListingPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("finding order line: %w", err)
	}

	return &line, nil
}
