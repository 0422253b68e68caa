package negotiation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind    negotiation.Kind `json:"kind"`
	Message string           `json:"message"`
}

type negotiationResponse struct {
	ID                uuid.UUID          `json:"id"`
	OrderID           uuid.UUID          `json:"order_id"`
	FarmerID          uuid.UUID          `json:"farmer_id"`
	BuyerID           uuid.UUID          `json:"buyer_id"`
	ProductID         uuid.UUID          `json:"product_id"`
	OriginalPrice     decimal.Decimal    `json:"original_price"`
	ProposedPrice     decimal.Decimal    `json:"proposed_price"`
	FinalPrice        *decimal.Decimal   `json:"final_price,omitempty"`
	DiscountPercent   decimal.Decimal    `json:"discount_percent"`
	Status            negotiation.Status `json:"status"`
	CounterOfferCount int                `json:"counter_offer_count"`
	FarmerNotes       string             `json:"farmer_notes,omitempty"`
	BuyerNotes        string             `json:"buyer_notes,omitempty"`
	ExpiresAt         time.Time          `json:"expires_at"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func toResponse(n *negotiation.Negotiation) negotiationResponse {
	return negotiationResponse{
		ID:                n.ID,
		OrderID:           n.OrderID,
		FarmerID:          n.FarmerID,
		BuyerID:           n.BuyerID,
		ProductID:         n.ProductID,
		OriginalPrice:     n.OriginalPrice,
		ProposedPrice:     n.ProposedPrice,
		FinalPrice:        n.FinalPrice,
		DiscountPercent:   negotiation.DiscountPercent(n.OriginalPrice, n.ProposedPrice).Round(2),
		Status:            n.Status,
		CounterOfferCount: n.CounterOfferCount,
		FarmerNotes:       n.FarmerNotes,
		BuyerNotes:        n.BuyerNotes,
		ExpiresAt:         n.ExpiresAt,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         n.UpdatedAt,
	}
}

func toResponseList(ns []*negotiation.Negotiation) []negotiationResponse {
	resp := make([]negotiationResponse, len(ns))
	for i, n := range ns {
		resp[i] = toResponse(n)
	}

	return resp
}

type statsResponse struct {
	Total                    int                        `json:"total"`
	ByStatus                 map[negotiation.Status]int `json:"by_status"`
	AcceptanceRate           float64                    `json:"acceptance_rate"`
	AverageResolutionSeconds float64                    `json:"average_resolution_seconds"`
	AverageDiscountPercent   decimal.Decimal            `json:"average_discount_percent"`
	AverageCounterOffers     float64                    `json:"average_counter_offers"`
}

func toStatsResponse(st *negotiation.Stats) statsResponse {
	return statsResponse{
		Total:                    st.Total,
		ByStatus:                 st.ByStatus,
		AcceptanceRate:           st.AcceptanceRate,
		AverageResolutionSeconds: st.AverageResolution.Seconds(),
		AverageDiscountPercent:   st.AverageDiscountPercent,
		AverageCounterOffers:     st.AverageCounterOffers,
	}
}

type expireResponse struct {
	Expired int `json:"expired"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

var statusByKind = map[negotiation.Kind]int{
	negotiation.KindValidation:       http.StatusBadRequest,
	negotiation.KindNotFound:         http.StatusNotFound,
	negotiation.KindPermissionDenied: http.StatusForbidden,
	negotiation.KindConflict:         http.StatusConflict,
	negotiation.KindInternal:         http.StatusInternalServerError,
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := negotiation.KindOf(err)

	msg := err.Error()
	var e *negotiation.Error
	if errors.As(err, &e) {
		msg = e.Message
	}

	if kind == negotiation.KindInternal {
		slog.Error("negotiation request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)

		msg = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusByKind[kind])

	if err := json.NewEncoder(w).Encode(envelope{Error: &errorBody{Kind: kind, Message: msg}}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeError(w, r, &negotiation.Error{Kind: negotiation.KindValidation, Message: msg})
}
