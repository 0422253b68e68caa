package negotiation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmtrade/internal/order"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=negotiation
type Repository interface {
	CreateNegotiation(ctx context.Context, n *Negotiation) error
	GetNegotiation(ctx context.Context, id uuid.UUID) (*Negotiation, error)
	// UpdateNegotiation writes n only if the stored version still equals
	// expectedVersion, returning ErrConflict otherwise.
	UpdateNegotiation(ctx context.Context, n *Negotiation, expectedVersion int64) error
	// ExpireNegotiation flips an active negotiation whose expires_at is before
	// now to expired. It reports false when the row no longer qualifies.
	ExpireNegotiation(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	ListNegotiations(ctx context.Context, filter ListFilter) ([]*Negotiation, error)
}

type OrderLookup interface {
	FindLine(ctx context.Context, orderID, productID uuid.UUID) (*order.Line, error)
}

// ListFilter narrows ListNegotiations. Nil / zero fields are ignored.
type ListFilter struct {
	OrderID       *uuid.UUID
	FarmerID      *uuid.UUID
	BuyerID       *uuid.UUID
	Participant   *uuid.UUID // Matches farmer or buyer
	Statuses      []Status
	Query         string // Case-insensitive match against either side's notes
	ExpiresFrom   *time.Time
	ExpiresBefore *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	SortByExpiry  bool
	Limit         int
	Offset        int
}

type Service struct {
	repo         Repository
	orders       OrderLookup
	rules        *Rules
	clock        Clock
	expiringSoon time.Duration
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithExpiringSoonWindow sets the default lookahead of ListExpiringSoon.
func WithExpiringSoonWindow(d time.Duration) Option {
	return func(s *Service) { s.expiringSoon = d }
}

func NewService(repo Repository, orders OrderLookup, rules *Rules, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		orders:       orders,
		rules:        rules,
		clock:        systemClock,
		expiringSoon: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	OrderID       uuid.UUID
	FarmerID      uuid.UUID
	BuyerID       uuid.UUID
	ProductID     uuid.UUID
	OriginalPrice decimal.Decimal // Taken from the listing when zero
	ProposedPrice decimal.Decimal
	Notes         string
	ExpiresAt     *time.Time
	ActingUserID  uuid.UUID
}

// Create opens a pending negotiation on behalf of one of its two participants.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Negotiation, error) {
	side, ok := participantSide(p.ActingUserID, p.FarmerID, p.BuyerID)
	if !ok {
		return nil, permissionError("only the farmer or the buyer can open a negotiation")
	}

	originalPrice := p.OriginalPrice

	if p.OrderID != uuid.Nil && p.ProductID != uuid.Nil {
		line, err := s.orders.FindLine(ctx, p.OrderID, p.ProductID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return nil, notFoundError("order line not found")
			}

			return nil, internalError("looking up order", err)
		}

		switch {
		case originalPrice.IsZero():
			originalPrice = line.ListingPrice
		case !originalPrice.Equal(line.ListingPrice):
			return nil, validationError("original price %s does not match listing price %s",
				originalPrice.String(), line.ListingPrice.String())
		}
	}

	now := s.clock.Now()

	n, err := s.rules.ValidateCreate(CreateInput{
		OrderID:       p.OrderID,
		FarmerID:      p.FarmerID,
		BuyerID:       p.BuyerID,
		ProductID:     p.ProductID,
		OriginalPrice: originalPrice,
		ProposedPrice: p.ProposedPrice,
		Notes:         p.Notes,
		NotesSide:     side,
		ExpiresAt:     p.ExpiresAt,
	}, now)
	if err != nil {
		return nil, err
	}

	n.CreatedAt = now
	n.UpdatedAt = now

	if err := s.repo.CreateNegotiation(ctx, n); err != nil {
		return nil, internalError("creating negotiation", err)
	}

	return n, nil
}

type CounterOfferParams struct {
	NegotiationID uuid.UUID
	ProposedPrice decimal.Decimal
	Notes         string
	ExpiresAt     *time.Time
	ActingUserID  uuid.UUID
}

// CounterOffer replaces the pending price with a new proposal from either side.
func (s *Service) CounterOffer(ctx context.Context, p CounterOfferParams) (*Negotiation, error) {
	n, side, err := s.loadForParticipant(ctx, p.NegotiationID, p.ActingUserID)
	if err != nil {
		return nil, err
	}

	if !n.Status.Active() {
		return nil, validationError("counter offers are only allowed on pending or counter-offered negotiations")
	}

	now := s.clock.Now()
	if n.Expired(now) {
		return nil, validationError("cannot counter-offer an expired negotiation")
	}

	if err := s.rules.ValidateStatusTransition(n.Status, StatusCounterOffered); err != nil {
		return nil, err
	}

	offer, err := s.rules.ValidateCounterOffer(CounterOfferInput{
		CurrentCount:  n.CounterOfferCount,
		OriginalPrice: n.OriginalPrice,
		ProposedPrice: p.ProposedPrice,
		Notes:         p.Notes,
		ExpiresAt:     p.ExpiresAt,
	}, now)
	if err != nil {
		return nil, err
	}

	updated := n.Clone()
	updated.ProposedPrice = offer.ProposedPrice
	if offer.Notes != "" {
		updated.setNotes(side, offer.Notes)
	}
	updated.Status = StatusCounterOffered
	updated.CounterOfferCount++
	updated.ExpiresAt = offer.ExpiresAt
	updated.UpdatedAt = now

	if err := s.save(ctx, updated, n.Version); err != nil {
		return nil, err
	}

	return updated, nil
}

// Accept closes the negotiation at the currently proposed price.
func (s *Service) Accept(ctx context.Context, id, actingUserID uuid.UUID) (*Negotiation, error) {
	return s.resolve(ctx, id, actingUserID, StatusAccepted)
}

// Reject closes the negotiation without a deal.
func (s *Service) Reject(ctx context.Context, id, actingUserID uuid.UUID) (*Negotiation, error) {
	return s.resolve(ctx, id, actingUserID, StatusRejected)
}

func (s *Service) resolve(ctx context.Context, id, actingUserID uuid.UUID, to Status) (*Negotiation, error) {
	n, _, err := s.loadForParticipant(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}

	verb := "accepted"
	if to == StatusRejected {
		verb = "rejected"
	}

	if !n.Status.Active() {
		return nil, validationError("only pending or counter-offered negotiations can be %s", verb)
	}

	now := s.clock.Now()
	if n.Expired(now) {
		return nil, validationError("cannot %s an expired negotiation", verbBase(to))
	}

	if err := s.rules.ValidateStatusTransition(n.Status, to); err != nil {
		return nil, err
	}

	updated := n.Clone()
	updated.Status = to
	updated.UpdatedAt = now

	if to == StatusAccepted {
		if err := s.rules.ValidateAcceptance(n.OriginalPrice, n.ProposedPrice); err != nil {
			return nil, err
		}

		finalPrice := n.ProposedPrice
		updated.FinalPrice = &finalPrice
	}

	if err := s.save(ctx, updated, n.Version); err != nil {
		return nil, err
	}

	return updated, nil
}

func verbBase(to Status) string {
	if to == StatusRejected {
		return "reject"
	}

	return "accept"
}

// Get returns a negotiation visible to caller.
func (s *Service) Get(ctx context.Context, id, caller uuid.UUID) (*Negotiation, error) {
	n, _, err := s.loadForParticipant(ctx, id, caller)
	return n, err
}

func (s *Service) loadForParticipant(ctx context.Context, id, userID uuid.UUID) (*Negotiation, Side, error) {
	n, err := s.repo.GetNegotiation(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", notFoundError("negotiation not found")
		}

		return nil, "", internalError("loading negotiation", err)
	}

	side, ok := n.SideOf(userID)
	if !ok {
		return nil, "", permissionError("only the farmer or the buyer of this negotiation can do that")
	}

	return n, side, nil
}

func (s *Service) save(ctx context.Context, n *Negotiation, expectedVersion int64) error {
	err := s.repo.UpdateNegotiation(ctx, n, expectedVersion)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict):
		return conflictError(err)
	case errors.Is(err, ErrNotFound):
		return notFoundError("negotiation not found")
	default:
		return internalError("updating negotiation", err)
	}
}

func participantSide(userID, farmerID, buyerID uuid.UUID) (Side, bool) {
	switch {
	case userID == uuid.Nil:
		return "", false
	case userID == farmerID:
		return SideFarmer, true
	case userID == buyerID:
		return SideBuyer, true
	}

	return "", false
}
