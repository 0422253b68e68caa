package negotiation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListByOrder returns the caller's negotiations on orderID.
func (s *Service) ListByOrder(ctx context.Context, orderID, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil {
		return nil, permissionError("authentication required")
	}

	return s.list(ctx, ListFilter{OrderID: &orderID, Participant: &caller})
}

// ListByFarmer returns negotiations where farmerID is the farmer. Only the
// farmer may list them.
func (s *Service) ListByFarmer(ctx context.Context, farmerID uuid.UUID, status *Status, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil || caller != farmerID {
		return nil, permissionError("farmers can only list their own negotiations")
	}

	filter := ListFilter{FarmerID: &farmerID}
	if err := applyStatus(&filter, status); err != nil {
		return nil, err
	}

	return s.list(ctx, filter)
}

// ListByBuyer returns negotiations where buyerID is the buyer. Only the
// buyer may list them.
func (s *Service) ListByBuyer(ctx context.Context, buyerID uuid.UUID, status *Status, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil || caller != buyerID {
		return nil, permissionError("buyers can only list their own negotiations")
	}

	filter := ListFilter{BuyerID: &buyerID}
	if err := applyStatus(&filter, status); err != nil {
		return nil, err
	}

	return s.list(ctx, filter)
}

// ListActive returns the caller's negotiations that can still be acted on.
func (s *Service) ListActive(ctx context.Context, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil {
		return nil, permissionError("authentication required")
	}

	now := s.clock.Now()

	return s.list(ctx, ListFilter{
		Participant: &caller,
		Statuses:    ActiveStatuses,
		ExpiresFrom: &now,
	})
}

// ListExpired sweeps stale negotiations first so that everything past its
// deadline is reported as expired.
func (s *Service) ListExpired(ctx context.Context, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil {
		return nil, permissionError("authentication required")
	}

	if _, err := s.AutoExpire(ctx); err != nil {
		slog.Error("sweep before expired listing failed", "error", err)
	}

	return s.list(ctx, ListFilter{
		Participant: &caller,
		Statuses:    []Status{StatusExpired},
	})
}

// ListExpiringSoon returns the caller's active negotiations whose deadline
// falls within the lookahead window. A non-positive window uses the default.
func (s *Service) ListExpiringSoon(ctx context.Context, within time.Duration, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil {
		return nil, permissionError("authentication required")
	}

	if within <= 0 {
		within = s.expiringSoon
	}

	now := s.clock.Now()
	until := now.Add(within)

	return s.list(ctx, ListFilter{
		Participant:   &caller,
		Statuses:      ActiveStatuses,
		ExpiresFrom:   &now,
		ExpiresBefore: &until,
		SortByExpiry:  true,
	})
}

type SearchParams struct {
	Query   string
	Status  *Status
	OrderID *uuid.UUID
	Limit   int
	Offset  int
}

// Search matches the caller's negotiations by notes text, status and order.
func (s *Service) Search(ctx context.Context, p SearchParams, caller uuid.UUID) ([]*Negotiation, error) {
	if caller == uuid.Nil {
		return nil, permissionError("authentication required")
	}

	filter := ListFilter{
		Participant: &caller,
		OrderID:     p.OrderID,
		Query:       strings.TrimSpace(p.Query),
		Limit:       p.Limit,
		Offset:      p.Offset,
	}

	if err := applyStatus(&filter, p.Status); err != nil {
		return nil, err
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultSearchLimit
	case filter.Limit > maxSearchLimit:
		filter.Limit = maxSearchLimit
	}

	if filter.Offset < 0 {
		return nil, validationError("offset cannot be negative")
	}

	return s.list(ctx, filter)
}

// Stats aggregates the caller's negotiations created within [from, to].
func (s *Service) Stats(ctx context.Context, from, to *time.Time, caller uuid.UUID) (*Stats, error) {
	if caller == uuid.Nil {
		return nil, permissionError("authentication required")
	}

	if from != nil && to != nil && from.After(*to) {
		return nil, validationError("start of range must not be after its end")
	}

	ns, err := s.list(ctx, ListFilter{Participant: &caller, CreatedFrom: from, CreatedTo: to})
	if err != nil {
		return nil, err
	}

	return computeStats(ns), nil
}

func (s *Service) list(ctx context.Context, filter ListFilter) ([]*Negotiation, error) {
	ns, err := s.repo.ListNegotiations(ctx, filter)
	if err != nil {
		return nil, internalError("listing negotiations", err)
	}

	return ns, nil
}

func applyStatus(filter *ListFilter, status *Status) error {
	if status == nil {
		return nil
	}

	if !status.Valid() {
		return validationError("unknown status %q", *status)
	}

	filter.Statuses = []Status{*status}

	return nil
}
