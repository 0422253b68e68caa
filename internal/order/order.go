package order

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order line not found")

// Line is a single product within an order, as seen by negotiations.
type Line struct {
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	ListingPrice decimal.Decimal
}
