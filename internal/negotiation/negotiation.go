package negotiation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a negotiation.
type Status string

const (
	StatusPending        Status = "pending"
	StatusCounterOffered Status = "counter_offered"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
	StatusExpired        Status = "expired"
)

// ActiveStatuses are the statuses from which a negotiation can still move.
var ActiveStatuses = []Status{StatusPending, StatusCounterOffered}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCounterOffered, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}

	return false
}

// Terminal reports whether no further mutation is allowed in status s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusExpired
}

// Active reports whether s is pending or counter-offered.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusCounterOffered
}

// Side identifies which participant performed an action.
type Side string

const (
	SideFarmer Side = "farmer"
	SideBuyer  Side = "buyer"
)

// Negotiation is a price proposal between a farmer and a buyer over one order line.
type Negotiation struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	FarmerID          uuid.UUID
	BuyerID           uuid.UUID
	ProductID         uuid.UUID
	OriginalPrice     decimal.Decimal
	ProposedPrice     decimal.Decimal
	FinalPrice        *decimal.Decimal // Set on acceptance only
	Status            Status
	CounterOfferCount int
	FarmerNotes       string
	BuyerNotes        string
	ExpiresAt         time.Time
	Version           int64 // Optimistic concurrency token, bumped on every write
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SideOf returns the side userID plays in the negotiation, or false if
// userID is not a participant.
func (n *Negotiation) SideOf(userID uuid.UUID) (Side, bool) {
	switch userID {
	case uuid.Nil:
		return "", false
	case n.FarmerID:
		return SideFarmer, true
	case n.BuyerID:
		return SideBuyer, true
	}

	return "", false
}

// Expired reports whether the negotiation's deadline has passed at now.
func (n *Negotiation) Expired(now time.Time) bool {
	return n.ExpiresAt.Before(now)
}

func (n *Negotiation) setNotes(side Side, notes string) {
	switch side {
	case SideFarmer:
		n.FarmerNotes = notes
	case SideBuyer:
		n.BuyerNotes = notes
	}
}

// Clone returns a deep copy of n.
func (n *Negotiation) Clone() *Negotiation {
	c := *n
	if n.FinalPrice != nil {
		finalPrice := *n.FinalPrice
		c.FinalPrice = &finalPrice
	}

	return &c
}
