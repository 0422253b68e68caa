package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanNegotiation reads a row in selectColumns order.
func scanNegotiation(s scanner) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation

	var statusStr string

	var finalPrice decimal.NullDecimal

	if err := s.Scan(
		&n.ID, &n.OrderID, &n.FarmerID, &n.BuyerID, &n.ProductID,
		&n.OriginalPrice, &n.ProposedPrice, &finalPrice,
		&statusStr, &n.CounterOfferCount, &n.FarmerNotes, &n.BuyerNotes,
		&n.ExpiresAt, &n.Version, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	n.Status = negotiation.Status(statusStr)

	if finalPrice.Valid {
		fp := finalPrice.Decimal
		n.FinalPrice = &fp
	}

	return &n, nil
}

const selectColumns = `
	id, order_id, farmer_id, buyer_id, product_id,
	original_price, proposed_price, final_price,
	status, counter_offer_count, farmer_notes, buyer_notes,
	expires_at, version, created_at, updated_at
`

func (s *Store) CreateNegotiation(ctx context.Context, n *negotiation.Negotiation) error {
	query := `
		INSERT INTO negotiations (
			order_id, farmer_id, buyer_id, product_id,
			original_price, proposed_price, status, counter_offer_count,
			farmer_notes, buyer_notes, expires_at, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $13)
		RETURNING id, version
	`

	err := s.db.QueryRowContext(ctx, query,
		n.OrderID,
		n.FarmerID,
		n.BuyerID,
		n.ProductID,
		n.OriginalPrice,
		n.ProposedPrice,
		n.Status,
		n.CounterOfferCount,
		n.FarmerNotes,
		n.BuyerNotes,
		n.ExpiresAt,
		n.CreatedAt,
		n.UpdatedAt,
	).Scan(&n.ID, &n.Version)
	if err != nil {
		return fmt.Errorf("creating negotiation: %w", err)
	}

	return nil
}

func (s *Store) GetNegotiation(ctx context.Context, id uuid.UUID) (*negotiation.Negotiation, error) {
	query := `SELECT ` + selectColumns + ` FROM negotiations WHERE id = $1`

	n, err := scanNegotiation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, negotiation.ErrNotFound
		}

		return nil, fmt.Errorf("getting negotiation: %w", err)
	}

	return n, nil
}

// UpdateNegotiation writes the mutable columns guarded by the version the
// caller read. Zero affected rows means either a concurrent write or a
// missing row; the two are told apart with a follow-up existence check.
func (s *Store) UpdateNegotiation(ctx context.Context, n *negotiation.Negotiation, expectedVersion int64) error {
	query := `
		UPDATE negotiations
		SET proposed_price = $1, final_price = $2, status = $3, counter_offer_count = $4,
			farmer_notes = $5, buyer_notes = $6, expires_at = $7, updated_at = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	var finalPrice decimal.NullDecimal
	if n.FinalPrice != nil {
		finalPrice = decimal.NewNullDecimal(*n.FinalPrice)
	}

	err := s.db.QueryRowContext(ctx, query,
		n.ProposedPrice,
		finalPrice,
		n.Status,
		n.CounterOfferCount,
		n.FarmerNotes,
		n.BuyerNotes,
		n.ExpiresAt,
		n.UpdatedAt,
		n.ID,
		expectedVersion,
	).Scan(&n.Version)
	if err == nil {
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating negotiation: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM negotiations WHERE id = $1)`, n.ID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking negotiation: %w", err)
	}

	if !exists {
		return negotiation.ErrNotFound
	}

	return negotiation.ErrConflict
}

func (s *Store) ExpireNegotiation(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE negotiations
		SET status = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND status IN ($4, $5) AND expires_at < $2
	`

	res, err := s.db.ExecContext(ctx, query,
		negotiation.StatusExpired,
		now,
		id,
		negotiation.StatusPending,
		negotiation.StatusCounterOffered,
	)
	if err != nil {
		return false, fmt.Errorf("expiring negotiation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return affected == 1, nil
}

func (s *Store) ListNegotiations(ctx context.Context, filter negotiation.ListFilter) ([]*negotiation.Negotiation, error) {
	query := `SELECT ` + selectColumns + ` FROM negotiations WHERE TRUE`

	var args []any

	argIdx := 1

	add := func(clause string, arg any) {
		query += fmt.Sprintf(clause, argIdx)

		args = append(args, arg)
		argIdx++
	}

	if filter.OrderID != nil {
		add(" AND order_id = $%d", *filter.OrderID)
	}

	if filter.FarmerID != nil {
		add(" AND farmer_id = $%d", *filter.FarmerID)
	}

	if filter.BuyerID != nil {
		add(" AND buyer_id = $%d", *filter.BuyerID)
	}

	if filter.Participant != nil {
		query += fmt.Sprintf(" AND (farmer_id = $%d OR buyer_id = $%d)", argIdx, argIdx)

		args = append(args, *filter.Participant)
		argIdx++
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}

		add(" AND status = ANY($%d)", statuses)
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += fmt.Sprintf(" AND (farmer_notes ILIKE '%%' || $%d || '%%' OR buyer_notes ILIKE '%%' || $%d || '%%')", argIdx, argIdx)

		args = append(args, escapeLike(q))
		argIdx++
	}

	if filter.ExpiresFrom != nil {
		add(" AND expires_at >= $%d", *filter.ExpiresFrom)
	}

	if filter.ExpiresBefore != nil {
		add(" AND expires_at < $%d", *filter.ExpiresBefore)
	}

	if filter.CreatedFrom != nil {
		add(" AND created_at >= $%d", *filter.CreatedFrom)
	}

	if filter.CreatedTo != nil {
		add(" AND created_at <= $%d", *filter.CreatedTo)
	}

	if filter.SortByExpiry {
		query += " ORDER BY expires_at ASC, id ASC"
	} else {
		query += " ORDER BY created_at DESC, id ASC"
	}

	if filter.Limit > 0 {
		add(" LIMIT $%d", filter.Limit)
	}

	if filter.Offset > 0 {
		add(" OFFSET $%d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing negotiations: %w", err)
	}
	defer rows.Close()

	var ns []*negotiation.Negotiation

	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning negotiation: %w", err)
		}

		ns = append(ns, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating negotiation rows: %w", err)
	}

	return ns, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside an ILIKE pattern. Postgres
// uses backslash as the default LIKE escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
