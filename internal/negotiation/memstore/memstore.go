// Package memstore is an in-memory negotiation.Repository with the same
// compare-and-swap semantics as the Postgres store.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
)

type Store struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*negotiation.Negotiation
}

func New() *Store {
	return &Store{rows: make(map[uuid.UUID]*negotiation.Negotiation)}
}

func (s *Store) CreateNegotiation(_ context.Context, n *negotiation.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	n.Version = 1
	s.rows[n.ID] = n.Clone()

	return nil
}

func (s *Store) GetNegotiation(_ context.Context, id uuid.UUID) (*negotiation.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.rows[id]
	if !ok {
		return nil, negotiation.ErrNotFound
	}

	return n.Clone(), nil
}

func (s *Store) UpdateNegotiation(_ context.Context, n *negotiation.Negotiation, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rows[n.ID]
	if !ok {
		return negotiation.ErrNotFound
	}

	if cur.Version != expectedVersion {
		return negotiation.ErrConflict
	}

	n.Version = expectedVersion + 1
	s.rows[n.ID] = n.Clone()

	return nil
}

func (s *Store) ExpireNegotiation(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rows[id]
	if !ok || !cur.Status.Active() || !cur.ExpiresAt.Before(now) {
		return false, nil
	}

	cur.Status = negotiation.StatusExpired
	cur.UpdatedAt = now
	cur.Version++

	return true, nil
}

func (s *Store) ListNegotiations(_ context.Context, filter negotiation.ListFilter) ([]*negotiation.Negotiation, error) {
	s.mu.RLock()

	var out []*negotiation.Negotiation

	for _, n := range s.rows {
		if matches(n, filter) {
			out = append(out, n.Clone())
		}
	}

	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *negotiation.Negotiation) int {
		if filter.SortByExpiry {
			if c := a.ExpiresAt.Compare(b.ExpiresAt); c != 0 {
				return c
			}
		} else if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}

		out = out[filter.Offset:]
	}

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func matches(n *negotiation.Negotiation, f negotiation.ListFilter) bool {
	switch {
	case f.OrderID != nil && n.OrderID != *f.OrderID:
		return false
	case f.FarmerID != nil && n.FarmerID != *f.FarmerID:
		return false
	case f.BuyerID != nil && n.BuyerID != *f.BuyerID:
		return false
	case f.Participant != nil && n.FarmerID != *f.Participant && n.BuyerID != *f.Participant:
		return false
	case len(f.Statuses) > 0 && !slices.Contains(f.Statuses, n.Status):
		return false
	case f.ExpiresFrom != nil && n.ExpiresAt.Before(*f.ExpiresFrom):
		return false
	case f.ExpiresBefore != nil && !n.ExpiresAt.Before(*f.ExpiresBefore):
		return false
	case f.CreatedFrom != nil && n.CreatedAt.Before(*f.CreatedFrom):
		return false
	case f.CreatedTo != nil && n.CreatedAt.After(*f.CreatedTo):
		return false
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(n.FarmerNotes), q) ||
			strings.Contains(strings.ToLower(n.BuyerNotes), q)
	}

	return true
}
