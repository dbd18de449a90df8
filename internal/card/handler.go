package card

import (
	"context"
	"net/http"

	"github.com/frahmantamala/cardtracker/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListCards(ctx context.Context) ([]View, error)
	GetCard(ctx context.Context, id string) (*View, error)
	CreateCard(ctx context.Context, dto CardDTO) (*View, error)
	UpdateCard(ctx context.Context, id string, dto CardDTO) (*View, error)
	DeleteCard(ctx context.Context, id string) error
	SetPaymentStatus(ctx context.Context, id string, status string) (*StatusUpdateResponse, error)
	Summary(ctx context.Context) (*Summary, error)
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

// ListCards handles GET /cards
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Service.ListCards(r.Context())
	if err != nil {
		h.Log(r).Error("ListCards: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cards)
}

// GetCard handles GET /cards/{id}
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	card, err := h.Service.GetCard(r.Context(), id)
	if err != nil {
		h.Log(r).Warn("GetCard: service error", "error", err, "card_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, card)
}

// CreateCard handles POST /cards
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CardDTO
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.Log(r).Warn("CreateCard: failed to parse request body", "error", appErr.Cause)
		h.HandleError(w, appErr)
		return
	}

	card, err := h.Service.CreateCard(r.Context(), req)
	if err != nil {
		h.Log(r).Warn("CreateCard: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, card)
}

// UpdateCard handles PUT /cards/{id}
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CardDTO
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.Log(r).Warn("UpdateCard: failed to parse request body", "error", appErr.Cause, "card_id", id)
		h.HandleError(w, appErr)
		return
	}

	card, err := h.Service.UpdateCard(r.Context(), id, req)
	if err != nil {
		h.Log(r).Warn("UpdateCard: service error", "error", err, "card_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/{id}
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.DeleteCard(r.Context(), id); err != nil {
		h.Log(r).Warn("DeleteCard: service error", "error", err, "card_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePaymentStatus handles PUT /cards/{id}/payment
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req StatusUpdateDTO
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.Log(r).Warn("UpdatePaymentStatus: failed to parse request body", "error", appErr.Cause, "card_id", id)
		h.HandleError(w, appErr)
		return
	}

	resp, err := h.Service.SetPaymentStatus(r.Context(), id, req.Status)
	if err != nil {
		h.Log(r).Warn("UpdatePaymentStatus: service error", "error", err, "card_id", id, "status", req.Status)
		h.HandleServiceError(w, err)
		return
	}

	h.Log(r).Info("UpdatePaymentStatus: payment status set", "card_id", id, "status", resp.Status)
	h.WriteJSON(w, http.StatusOK, resp)
}

// GetSummary handles GET /summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.Log(r).Error("GetSummary: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}
