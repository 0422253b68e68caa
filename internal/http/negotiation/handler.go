package negotiation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmtrade/internal/auth"
	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
)

type Handler struct {
	svc *negotiation.Service
}

func NewHandler(svc *negotiation.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/expire", h.autoExpire)

	r.Get("/active", h.active)
	r.Get("/expired", h.expired)
	r.Get("/expiring-soon", h.expiringSoon)
	r.Get("/search", h.search)
	r.Get("/stats", h.stats)
	r.Get("/orders/{orderID}", h.byOrder)
	r.Get("/farmers/{farmerID}", h.byFarmer)
	r.Get("/buyers/{buyerID}", h.byBuyer)

	r.Get("/{id}", h.get)
	r.Post("/{id}/counter-offers", h.counterOffer)
	r.Post("/{id}/accept", h.accept)
	r.Post("/{id}/reject", h.reject)
}

type createNegotiationRequest struct {
	OrderID       uuid.UUID        `json:"order_id"`
	FarmerID      uuid.UUID        `json:"farmer_id"`
	BuyerID       uuid.UUID        `json:"buyer_id"`
	ProductID     uuid.UUID        `json:"product_id"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ProposedPrice decimal.Decimal  `json:"proposed_price"`
	Notes         string           `json:"notes,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	params := negotiation.CreateParams{
		OrderID:       req.OrderID,
		FarmerID:      req.FarmerID,
		BuyerID:       req.BuyerID,
		ProductID:     req.ProductID,
		ProposedPrice: req.ProposedPrice,
		Notes:         req.Notes,
		ExpiresAt:     req.ExpiresAt,
		ActingUserID:  auth.UserID(r.Context()),
	}

	if req.OriginalPrice != nil {
		params.OriginalPrice = *req.OriginalPrice
	}

	n, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(n))
}

type counterOfferRequest struct {
	ProposedPrice decimal.Decimal `json:"proposed_price"`
	Notes         string          `json:"notes,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

func (h *Handler) counterOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req counterOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	n, err := h.svc.CounterOffer(r.Context(), negotiation.CounterOfferParams{
		NegotiationID: id,
		ProposedPrice: req.ProposedPrice,
		Notes:         req.Notes,
		ExpiresAt:     req.ExpiresAt,
		ActingUserID:  auth.UserID(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	n, err := h.svc.Accept(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	n, err := h.svc.Reject(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) autoExpire(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.AutoExpire(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expireResponse{Expired: count})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	n, err := h.svc.Get(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(n))
}

func (h *Handler) byOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}

	ns, err := h.svc.ListByOrder(r.Context(), orderID, auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) byFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, ok := urlUUID(w, r, "farmerID")
	if !ok {
		return
	}

	ns, err := h.svc.ListByFarmer(r.Context(), farmerID, statusParam(r), auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) byBuyer(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := urlUUID(w, r, "buyerID")
	if !ok {
		return
	}

	ns, err := h.svc.ListByBuyer(r.Context(), buyerID, statusParam(r), auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	ns, err := h.svc.ListActive(r.Context(), auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) expired(w http.ResponseWriter, r *http.Request) {
	ns, err := h.svc.ListExpired(r.Context(), auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) expiringSoon(w http.ResponseWriter, r *http.Request) {
	var within time.Duration

	if s := r.URL.Query().Get("within"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			badRequest(w, r, "within must be a positive duration such as 48h")
			return
		}

		within = d
	}

	ns, err := h.svc.ListExpiringSoon(r.Context(), within, auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := negotiation.SearchParams{
		Query:  q.Get("q"),
		Status: statusParam(r),
	}

	if s := q.Get("order_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(w, r, "invalid order_id")
			return
		}

		params.OrderID = &id
	}

	var err error

	if params.Limit, err = intParam(q.Get("limit")); err != nil {
		badRequest(w, r, "invalid limit")
		return
	}

	if params.Offset, err = intParam(q.Get("offset")); err != nil {
		badRequest(w, r, "invalid offset")
		return
	}

	ns, err := h.svc.Search(r.Context(), params, auth.UserID(r.Context()))
	h.writeList(w, r, ns, err)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	from, err := timeParam(r.URL.Query().Get("from"), false)
	if err != nil {
		badRequest(w, r, "invalid from")
		return
	}

	to, err := timeParam(r.URL.Query().Get("to"), true)
	if err != nil {
		badRequest(w, r, "invalid to")
		return
	}

	st, err := h.svc.Stats(r.Context(), from, to, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStatsResponse(st))
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, ns []*negotiation.Negotiation, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(ns))
}

func urlUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, r, "invalid "+name)
		return uuid.Nil, false
	}

	return id, true
}

func statusParam(r *http.Request) *negotiation.Status {
	if s := r.URL.Query().Get("status"); s != "" {
		status := negotiation.Status(s)
		return &status
	}

	return nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

// timeParam accepts RFC 3339 timestamps or plain dates. A plain date used as
// the end of a range covers that whole day.
func timeParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}

	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return &t, nil
}
