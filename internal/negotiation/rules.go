package negotiation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Prices are stored as NUMERIC(14, 2).
const priceScale = 2

var (
	hundred  = decimal.NewFromInt(100)
	maxPrice = decimal.RequireFromString("999999999999.99")
)

// RuleConfig holds the tunable business limits applied by Rules.
type RuleConfig struct {
	DefaultExpiry       time.Duration
	MaxExpiryHorizon    time.Duration
	MaxCounterOffers    int
	MaxDiscountPercent  decimal.Decimal
	MinPriceDiffPercent decimal.Decimal
	MaxNotesLength      int
}

// DefaultRuleConfig returns the limits used when nothing is configured.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		DefaultExpiry:       72 * time.Hour,
		MaxExpiryHorizon:    30 * 24 * time.Hour,
		MaxCounterOffers:    5,
		MaxDiscountPercent:  decimal.NewFromInt(50),
		MinPriceDiffPercent: decimal.NewFromInt(1),
		MaxNotesLength:      1000,
	}
}

// transitions is the authoritative state machine. The expired -> pending
// edge is accepted by the table but no operation drives it.
var transitions = map[Status][]Status{
	StatusPending:        {StatusCounterOffered, StatusAccepted, StatusRejected, StatusExpired},
	StatusCounterOffered: {StatusCounterOffered, StatusAccepted, StatusRejected, StatusExpired},
	StatusAccepted:       nil,
	StatusRejected:       nil,
	StatusExpired:        {StatusPending},
}

// Rules is the pure validation layer. It never touches storage.
type Rules struct {
	cfg RuleConfig
}

func NewRules(cfg RuleConfig) *Rules {
	return &Rules{cfg: cfg}
}

func (r *Rules) Config() RuleConfig { return r.cfg }

// CreateInput is the raw request validated by ValidateCreate.
type CreateInput struct {
	OrderID       uuid.UUID
	FarmerID      uuid.UUID
	BuyerID       uuid.UUID
	ProductID     uuid.UUID
	OriginalPrice decimal.Decimal
	ProposedPrice decimal.Decimal
	Notes         string
	NotesSide     Side
	ExpiresAt     *time.Time
}

// ValidateCreate checks a creation request and returns the normalized
// negotiation ready to be stored: pending, no counter-offers, expiry resolved.
func (r *Rules) ValidateCreate(in CreateInput, now time.Time) (*Negotiation, error) {
	switch {
	case in.OrderID == uuid.Nil:
		return nil, validationError("order id is required")
	case in.FarmerID == uuid.Nil:
		return nil, validationError("farmer id is required")
	case in.BuyerID == uuid.Nil:
		return nil, validationError("buyer id is required")
	case in.ProductID == uuid.Nil:
		return nil, validationError("product id is required")
	case in.FarmerID == in.BuyerID:
		return nil, validationError("farmer and buyer must be different users")
	}

	if !in.OriginalPrice.IsPositive() {
		return nil, validationError("original price must be positive")
	}

	if err := r.checkPrice(in.OriginalPrice, in.ProposedPrice); err != nil {
		return nil, err
	}

	notes, err := r.normalizeNotes(in.Notes)
	if err != nil {
		return nil, err
	}

	expiresAt, err := r.resolveExpiry(in.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	n := &Negotiation{
		OrderID:           in.OrderID,
		FarmerID:          in.FarmerID,
		BuyerID:           in.BuyerID,
		ProductID:         in.ProductID,
		OriginalPrice:     in.OriginalPrice,
		ProposedPrice:     in.ProposedPrice,
		Status:            StatusPending,
		CounterOfferCount: 0,
		ExpiresAt:         expiresAt,
	}
	n.setNotes(in.NotesSide, notes)

	return n, nil
}

// CounterOfferInput is the raw request validated by ValidateCounterOffer.
type CounterOfferInput struct {
	CurrentCount  int
	OriginalPrice decimal.Decimal
	ProposedPrice decimal.Decimal
	Notes         string
	ExpiresAt     *time.Time
}

// CounterOffer is a validated counter-offer ready to be applied.
type CounterOffer struct {
	ProposedPrice decimal.Decimal
	Notes         string
	ExpiresAt     time.Time
}

func (r *Rules) ValidateCounterOffer(in CounterOfferInput, now time.Time) (*CounterOffer, error) {
	if in.CurrentCount >= r.cfg.MaxCounterOffers {
		return nil, validationError("maximum of %d counter offers reached", r.cfg.MaxCounterOffers)
	}

	if err := r.checkPrice(in.OriginalPrice, in.ProposedPrice); err != nil {
		return nil, err
	}

	notes, err := r.normalizeNotes(in.Notes)
	if err != nil {
		return nil, err
	}

	expiresAt, err := r.resolveExpiry(in.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	return &CounterOffer{
		ProposedPrice: in.ProposedPrice,
		Notes:         notes,
		ExpiresAt:     expiresAt,
	}, nil
}

// ValidateStatusTransition fails on any edge missing from the state machine.
func (r *Rules) ValidateStatusTransition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return validationError("unknown status transition %q -> %q", from, to)
	}

	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}

	return validationError("cannot change status from %s to %s", from, to)
}

// ValidateAcceptance checks the price a negotiation would close at.
func (r *Rules) ValidateAcceptance(originalPrice, finalPrice decimal.Decimal) error {
	if !finalPrice.IsPositive() {
		return validationError("final price must be positive")
	}

	return r.checkPrice(originalPrice, finalPrice)
}

// DiscountPercent is (original - proposed) / original * 100. Negative values
// mean the proposal is above the original price.
func DiscountPercent(originalPrice, proposedPrice decimal.Decimal) decimal.Decimal {
	if originalPrice.IsZero() {
		return decimal.Zero
	}

	return originalPrice.Sub(proposedPrice).Div(originalPrice).Mul(hundred)
}

func (r *Rules) checkPrice(originalPrice, proposedPrice decimal.Decimal) error {
	if !proposedPrice.IsPositive() {
		return validationError("proposed price must be positive")
	}

	if !originalPrice.IsPositive() {
		return validationError("original price must be positive")
	}

	if err := checkPriceFormat("original", originalPrice); err != nil {
		return err
	}

	if err := checkPriceFormat("proposed", proposedPrice); err != nil {
		return err
	}

	discount := DiscountPercent(originalPrice, proposedPrice)
	if discount.GreaterThan(r.cfg.MaxDiscountPercent) {
		return validationError("discount of %s%% exceeds the maximum of %s%%",
			discount.StringFixed(2), r.cfg.MaxDiscountPercent.String())
	}

	if !discount.IsZero() && discount.Abs().LessThan(r.cfg.MinPriceDiffPercent) {
		return validationError("price change of %s%% is below the minimum of %s%%",
			discount.Abs().StringFixed(2), r.cfg.MinPriceDiffPercent.String())
	}

	return nil
}

func checkPriceFormat(name string, price decimal.Decimal) error {
	if !price.Equal(price.Round(priceScale)) {
		return validationError("%s price %s has more than %d decimal places", name, price.String(), priceScale)
	}

	if price.GreaterThan(maxPrice) {
		return validationError("%s price %s exceeds the maximum of %s", name, price.String(), maxPrice.String())
	}

	return nil
}

func (r *Rules) normalizeNotes(notes string) (string, error) {
	notes = norm.NFC.String(strings.TrimSpace(notes))
	if n := utf8.RuneCountInString(notes); n > r.cfg.MaxNotesLength {
		return "", validationError("notes are %d characters long, maximum is %d", n, r.cfg.MaxNotesLength)
	}

	return notes, nil
}

// resolveExpiry returns the requested expiry, or the default one when nil.
func (r *Rules) resolveExpiry(expiresAt *time.Time, now time.Time) (time.Time, error) {
	horizon := now.Add(r.cfg.MaxExpiryHorizon)

	if expiresAt == nil {
		def := now.Add(r.cfg.DefaultExpiry)
		if def.After(horizon) {
			def = horizon
		}

		return def, nil
	}

	if !expiresAt.After(now) {
		return time.Time{}, validationError("expiry must be in the future")
	}

	if expiresAt.After(horizon) {
		return time.Time{}, validationError("expiry cannot be more than %d days ahead",
			int(r.cfg.MaxExpiryHorizon.Hours()/24))
	}

	return expiresAt.UTC(), nil
}
