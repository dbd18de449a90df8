package payment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/cardtracker/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListByCard(ctx context.Context, cardID string) ([]*Payment, error)
	RecordPayment(ctx context.Context, cardID string, dto CreatePaymentDTO) (*Payment, error)
	History(ctx context.Context, cardID string) (*History, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListPayments handles GET /cards/{id}/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	payments, err := h.Service.ListByCard(r.Context(), cardID)
	if err != nil {
		h.Log(r).Error("ListPayments: service error", "error", err, "card_id", cardID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payments)
}

// CreatePayment handles POST /cards/{id}/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	var req CreatePaymentDTO
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.Log(r).Warn("CreatePayment: failed to parse request body", "error", appErr.Cause)
		h.HandleError(w, appErr)
		return
	}

	p, err := h.Service.RecordPayment(r.Context(), cardID, req)
	if err != nil {
		h.Log(r).Warn("CreatePayment: service error", "error", err, "card_id", cardID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

// GetPaymentHistory handles GET /cards/{id}/payments/summary
func (h *Handler) GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	history, err := h.Service.History(r.Context(), cardID)
	if err != nil {
		h.Log(r).Error("GetPaymentHistory: service error", "error", err, "card_id", cardID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, history)
}
