package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AutoExpire moves every active negotiation past its deadline to expired and
// returns how many it changed. Failures on single rows are logged and skipped.
// Rows accepted or rejected after the scan are left alone by the store's
// conditional update.
func (s *Service) AutoExpire(ctx context.Context) (int, error) {
	now := s.clock.Now()

	stale, err := s.repo.ListNegotiations(ctx, ListFilter{
		Statuses:      ActiveStatuses,
		ExpiresBefore: &now,
	})
	if err != nil {
		return 0, internalError("listing stale negotiations", err)
	}

	expired := 0

	for _, n := range stale {
		if err := ctx.Err(); err != nil {
			return expired, internalError("sweep interrupted", err)
		}

		if err := s.rules.ValidateStatusTransition(n.Status, StatusExpired); err != nil {
			slog.Error("skipping negotiation in sweep", "negotiation_id", n.ID, "error", err)
			continue
		}

		ok, err := s.repo.ExpireNegotiation(ctx, n.ID, now)
		if err != nil {
			slog.Error("failed to expire negotiation", "negotiation_id", n.ID, "error", err)
			continue
		}

		if ok {
			expired++
		}
	}

	return expired, nil
}

// Sweeper runs AutoExpire on a fixed interval.
type Sweeper struct {
	svc      *Service
	interval time.Duration
}

func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	return &Sweeper{svc: svc, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (sw *Sweeper) Run(ctx context.Context) error {
	if sw.interval <= 0 {
		return fmt.Errorf("sweeper interval must be positive, got %s", sw.interval)
	}

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		sw.sweep(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	n, err := sw.svc.AutoExpire(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("negotiation sweep failed", "error", err)
		}

		return
	}

	if n > 0 {
		slog.Info("expired negotiations", "count", n)
	}
}
