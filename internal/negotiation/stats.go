package negotiation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats summarises a set of negotiations.
type Stats struct {
	Total    int
	ByStatus map[Status]int
	// AcceptanceRate is accepted / (accepted + rejected), zero when nothing resolved.
	AcceptanceRate float64
	// AverageResolution is the mean time from creation to acceptance or rejection.
	AverageResolution      time.Duration
	AverageDiscountPercent decimal.Decimal // Over accepted negotiations
	AverageCounterOffers   float64
}

func computeStats(ns []*Negotiation) *Stats {
	st := &Stats{
		Total:                  len(ns),
		ByStatus:               make(map[Status]int, 5),
		AverageDiscountPercent: decimal.Zero,
	}

	for _, s := range []Status{StatusPending, StatusCounterOffered, StatusAccepted, StatusRejected, StatusExpired} {
		st.ByStatus[s] = 0
	}

	if len(ns) == 0 {
		return st
	}

	var (
		resolved      int
		resolution    time.Duration
		discountSum   = decimal.Zero
		counterOffers int
	)

	for _, n := range ns {
		st.ByStatus[n.Status]++
		counterOffers += n.CounterOfferCount

		if n.Status == StatusAccepted || n.Status == StatusRejected {
			resolved++
			resolution += n.UpdatedAt.Sub(n.CreatedAt)
		}

		if n.Status == StatusAccepted && n.FinalPrice != nil {
			discountSum = discountSum.Add(DiscountPercent(n.OriginalPrice, *n.FinalPrice))
		}
	}

	if resolved > 0 {
		st.AcceptanceRate = float64(st.ByStatus[StatusAccepted]) / float64(resolved)
		st.AverageResolution = resolution / time.Duration(resolved)
	}

	if accepted := st.ByStatus[StatusAccepted]; accepted > 0 {
		st.AverageDiscountPercent = discountSum.Div(decimal.NewFromInt(int64(accepted))).Round(2)
	}

	st.AverageCounterOffers = float64(counterOffers) / float64(len(ns))

	return st
}
