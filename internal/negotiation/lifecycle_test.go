package negotiation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation/memstore"
	"github.com/MrJamesThe3rd/farmtrade/internal/order"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// listingPrices resolves any order line to the price of its product.
type listingPrices map[uuid.UUID]decimal.Decimal

func (l listingPrices) FindLine(_ context.Context, orderID, productID uuid.UUID) (*order.Line, error) {
	price, ok := l[productID]
	if !ok {
		return nil, order.ErrNotFound
	}

	return &order.Line{OrderID: orderID, ProductID: productID, ListingPrice: price}, nil
}

type harness struct {
	svc     *negotiation.Service
	store   *memstore.Store
	clock   *testClock
	farmer  uuid.UUID
	buyer   uuid.UUID
	product uuid.UUID
}

func newHarness(t *testing.T, listing string) *harness {
	t.Helper()

	h := &harness{
		store:   memstore.New(),
		clock:   &testClock{now: testNow},
		farmer:  uuid.New(),
		buyer:   uuid.New(),
		product: uuid.New(),
	}

	cfg := testRules().Config()
	cfg.MaxNotesLength = 200

	orders := listingPrices{h.product: dec(listing)}
	h.svc = negotiation.NewService(h.store, orders, negotiation.NewRules(cfg), negotiation.WithClock(h.clock))

	return h
}

func (h *harness) open(t *testing.T, proposed string) *negotiation.Negotiation {
	t.Helper()

	n, err := h.svc.Create(context.Background(), negotiation.CreateParams{
		OrderID:       uuid.New(),
		FarmerID:      h.farmer,
		BuyerID:       h.buyer,
		ProductID:     h.product,
		ProposedPrice: dec(proposed),
		ActingUserID:  h.buyer,
	})
	require.NoError(t, err)

	return n
}

func (h *harness) counter(id, actor uuid.UUID, price string) (*negotiation.Negotiation, error) {
	return h.svc.CounterOffer(context.Background(), negotiation.CounterOfferParams{
		NegotiationID: id,
		ProposedPrice: dec(price),
		ActingUserID:  actor,
	})
}

func TestLifecycle_EndToEnd(t *testing.T) {
	h := newHarness(t, "1000")
	ctx := context.Background()

	n := h.open(t, "900")
	assert.Equal(t, negotiation.StatusPending, n.Status)
	assert.Equal(t, 0, n.CounterOfferCount)

	n, err := h.counter(n.ID, h.buyer, "950")
	require.NoError(t, err)
	assert.Equal(t, negotiation.StatusCounterOffered, n.Status)
	assert.Equal(t, 1, n.CounterOfferCount)

	n, err = h.svc.Accept(ctx, n.ID, h.farmer)
	require.NoError(t, err)
	assert.Equal(t, negotiation.StatusAccepted, n.Status)
	require.NotNil(t, n.FinalPrice)
	assert.True(t, n.FinalPrice.Equal(dec("950")))

	_, err = h.counter(n.ID, h.buyer, "960")
	require.Error(t, err)
	assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))
	assert.Contains(t, err.Error(), "pending or counter-offered negotiations")

	stored, err := h.svc.Get(ctx, n.ID, h.buyer)
	require.NoError(t, err)
	assert.Equal(t, negotiation.StatusAccepted, stored.Status)
	assert.True(t, stored.ProposedPrice.Equal(dec("950")))
	assert.True(t, stored.FinalPrice.Equal(dec("950")))
}

func TestLifecycle_CounterOfferCeiling(t *testing.T) {
	h := newHarness(t, "100")
	n := h.open(t, "90")

	prices := []string{"95", "92", "94"}
	actors := []uuid.UUID{h.farmer, h.buyer, h.buyer}

	for i, price := range prices {
		got, err := h.counter(n.ID, actors[i], price)
		require.NoError(t, err)
		assert.Equal(t, i+1, got.CounterOfferCount)
	}

	_, err := h.counter(n.ID, h.farmer, "93")
	require.Error(t, err)
	assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))

	stored, err := h.svc.Get(context.Background(), n.ID, h.farmer)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CounterOfferCount)
	assert.True(t, stored.ProposedPrice.Equal(dec("94")))
}

func TestLifecycle_TerminalStatesAreFrozen(t *testing.T) {
	for _, resolve := range []string{"accept", "reject"} {
		t.Run(resolve, func(t *testing.T) {
			h := newHarness(t, "100")
			ctx := context.Background()
			n := h.open(t, "90")

			var err error
			if resolve == "accept" {
				_, err = h.svc.Accept(ctx, n.ID, h.farmer)
			} else {
				_, err = h.svc.Reject(ctx, n.ID, h.farmer)
			}
			require.NoError(t, err)

			before, err := h.svc.Get(ctx, n.ID, h.farmer)
			require.NoError(t, err)

			_, err = h.counter(n.ID, h.buyer, "95")
			assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))

			_, err = h.svc.Accept(ctx, n.ID, h.buyer)
			assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))

			_, err = h.svc.Reject(ctx, n.ID, h.buyer)
			assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))

			h.clock.Advance(365 * 24 * time.Hour)

			count, err := h.svc.AutoExpire(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)

			after, err := h.svc.Get(ctx, n.ID, h.farmer)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestLifecycle_ExpiryEnforcement(t *testing.T) {
	h := newHarness(t, "100")
	ctx := context.Background()

	n := h.open(t, "90")
	h.clock.Advance(73 * time.Hour)

	_, err := h.counter(n.ID, h.farmer, "95")
	require.Error(t, err)
	assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))
	assert.Contains(t, err.Error(), "expired")

	_, err = h.svc.Accept(ctx, n.ID, h.farmer)
	require.Error(t, err)
	assert.True(t, negotiation.IsKind(err, negotiation.KindValidation))

	count, err := h.svc.AutoExpire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := h.svc.Get(ctx, n.ID, h.farmer)
	require.NoError(t, err)
	assert.Equal(t, negotiation.StatusExpired, stored.Status)

	count, err = h.svc.AutoExpire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	again, err := h.svc.Get(ctx, n.ID, h.farmer)
	require.NoError(t, err)
	assert.Equal(t, stored, again)
}

func TestLifecycle_CounterOfferRefreshesExpiry(t *testing.T) {
	h := newHarness(t, "100")
	n := h.open(t, "90")

	h.clock.Advance(70 * time.Hour)

	got, err := h.counter(n.ID, h.farmer, "95")
	require.NoError(t, err)
	assert.Equal(t, h.clock.Now().Add(72*time.Hour), got.ExpiresAt)

	custom := h.clock.Now().Add(5 * time.Hour)

	got, err = h.svc.CounterOffer(context.Background(), negotiation.CounterOfferParams{
		NegotiationID: n.ID,
		ProposedPrice: dec("93"),
		ExpiresAt:     &custom,
		Notes:         "final offer",
		ActingUserID:  h.buyer,
	})
	require.NoError(t, err)
	assert.Equal(t, custom, got.ExpiresAt)
	assert.Equal(t, "final offer", got.BuyerNotes)
}

func TestLifecycle_CounterOfferWithoutNotesKeepsNotes(t *testing.T) {
	h := newHarness(t, "100")
	n := h.open(t, "90")

	_, err := h.svc.CounterOffer(context.Background(), negotiation.CounterOfferParams{
		NegotiationID: n.ID,
		ProposedPrice: dec("95"),
		Notes:         "can collect Monday",
		ActingUserID:  h.farmer,
	})
	require.NoError(t, err)

	got, err := h.counter(n.ID, h.farmer, "94")
	require.NoError(t, err)
	assert.Equal(t, "can collect Monday", got.FarmerNotes)
	assert.Equal(t, 2, got.CounterOfferCount)
}

// gatedRepo holds every GetNegotiation until both racing callers have read,
// so both act on the same version.
type gatedRepo struct {
	*memstore.Store
	reads sync.WaitGroup
}

func (g *gatedRepo) GetNegotiation(ctx context.Context, id uuid.UUID) (*negotiation.Negotiation, error) {
	n, err := g.Store.GetNegotiation(ctx, id)
	g.reads.Done()
	g.reads.Wait()

	return n, err
}

func TestLifecycle_ConcurrentAcceptAndReject(t *testing.T) {
	h := newHarness(t, "100")
	n := h.open(t, "90")

	gated := &gatedRepo{Store: h.store}
	gated.reads.Add(2)

	svc := negotiation.NewService(gated, listingPrices{}, testRules(), negotiation.WithClock(h.clock))

	var (
		wg                   sync.WaitGroup
		acceptErr, rejectErr error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		_, acceptErr = svc.Accept(context.Background(), n.ID, h.farmer)
	}()

	go func() {
		defer wg.Done()
		_, rejectErr = svc.Reject(context.Background(), n.ID, h.buyer)
	}()

	wg.Wait()

	stored, err := h.store.GetNegotiation(context.Background(), n.ID)
	require.NoError(t, err)

	switch {
	case acceptErr == nil:
		assert.True(t, negotiation.IsKind(rejectErr, negotiation.KindConflict))
		assert.Equal(t, negotiation.StatusAccepted, stored.Status)
		assert.NotNil(t, stored.FinalPrice)
	case rejectErr == nil:
		assert.True(t, negotiation.IsKind(acceptErr, negotiation.KindConflict))
		assert.Equal(t, negotiation.StatusRejected, stored.Status)
		assert.Nil(t, stored.FinalPrice)
	default:
		t.Fatalf("both operations failed: accept=%v reject=%v", acceptErr, rejectErr)
	}

	assert.Equal(t, int64(2), stored.Version)
}

func TestLifecycle_SweepLosesToLateAccept(t *testing.T) {
	h := newHarness(t, "100")
	ctx := context.Background()
	n := h.open(t, "90")

	_, err := h.svc.Accept(ctx, n.ID, h.farmer)
	require.NoError(t, err)

	// The sweep read the row while it was still pending.
	ok, err := h.store.ExpireNegotiation(ctx, n.ID, testNow.Add(100*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := h.svc.Get(ctx, n.ID, h.farmer)
	require.NoError(t, err)
	assert.Equal(t, negotiation.StatusAccepted, stored.Status)
}

func TestLifecycle_Reads(t *testing.T) {
	h := newHarness(t, "100")
	ctx := context.Background()

	soon := h.open(t, "90")
	_, err := h.svc.CounterOffer(ctx, negotiation.CounterOfferParams{
		NegotiationID: soon.ID,
		ProposedPrice: dec("95"),
		Notes:         "Ripe tomatoes, pick-up Friday",
		ExpiresAt:     func() *time.Time { t := testNow.Add(2 * time.Hour); return &t }(),
		ActingUserID:  h.farmer,
	})
	require.NoError(t, err)

	later := h.open(t, "85")
	done := h.open(t, "88")
	_, err = h.svc.Reject(ctx, done.ID, h.farmer)
	require.NoError(t, err)

	outsider := uuid.New()

	active, err := h.svc.ListActive(ctx, h.buyer)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	none, err := h.svc.ListActive(ctx, outsider)
	require.NoError(t, err)
	assert.Empty(t, none)

	expiring, err := h.svc.ListExpiringSoon(ctx, 0, h.farmer)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID, expiring[0].ID)

	expiring, err = h.svc.ListExpiringSoon(ctx, 100*time.Hour, h.farmer)
	require.NoError(t, err)
	require.Len(t, expiring, 2)
	assert.Equal(t, soon.ID, expiring[0].ID)
	assert.Equal(t, later.ID, expiring[1].ID)

	found, err := h.svc.Search(ctx, negotiation.SearchParams{Query: "TOMATO"}, h.buyer)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, soon.ID, found[0].ID)

	byOrder, err := h.svc.ListByOrder(ctx, later.OrderID, h.farmer)
	require.NoError(t, err)
	require.Len(t, byOrder, 1)

	byOrder, err = h.svc.ListByOrder(ctx, later.OrderID, outsider)
	require.NoError(t, err)
	assert.Empty(t, byOrder)

	rejected := negotiation.StatusRejected
	byBuyer, err := h.svc.ListByBuyer(ctx, h.buyer, &rejected, h.buyer)
	require.NoError(t, err)
	require.Len(t, byBuyer, 1)
	assert.Equal(t, done.ID, byBuyer[0].ID)

	_, err = h.svc.ListByBuyer(ctx, h.buyer, nil, h.farmer)
	assert.True(t, negotiation.IsKind(err, negotiation.KindPermissionDenied))

	_, err = h.svc.Get(ctx, soon.ID, outsider)
	assert.True(t, negotiation.IsKind(err, negotiation.KindPermissionDenied))

	h.clock.Advance(3 * time.Hour)

	expired, err := h.svc.ListExpired(ctx, h.farmer)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, soon.ID, expired[0].ID)
	assert.Equal(t, negotiation.StatusExpired, expired[0].Status)
}
