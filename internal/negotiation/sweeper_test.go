package negotiation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
)

func TestSweeper_Run(t *testing.T) {
	h := newHarness(t, "100")
	n := h.open(t, "90")
	h.clock.Advance(100 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- negotiation.NewSweeper(h.svc, 10*time.Millisecond).Run(ctx)
	}()

	require.Eventually(t, func() bool {
		stored, err := h.store.GetNegotiation(context.Background(), n.ID)
		return err == nil && stored.Status == negotiation.StatusExpired
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestSweeper_Run_InvalidInterval(t *testing.T) {
	h := newHarness(t, "100")

	err := negotiation.NewSweeper(h.svc, 0).Run(context.Background())
	assert.Error(t, err)
}
