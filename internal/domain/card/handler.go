package card

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/svpay/svpay-api/internal/pkg/response"
	"github.com/svpay/svpay-api/internal/pkg/validator"
)

// Handler handles card HTTP requests
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /cards
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.svc.CreateCard(r.Context(), req.RFIDUID, req.Name, req.Balance)
	if err != nil {
		if errors.Is(err, ErrDuplicateUID) {
			response.BadRequest(w, "Card with this UID already exists")
			return
		}
		log.Error().Err(err).Str("rfid_uid", req.RFIDUID).Msg("failed to create card")
		response.InternalError(w)
		return
	}

	response.OK(w, c)
}

// List handles GET /cards?search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListCards(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		log.Error().Err(err).Msg("failed to list cards")
		response.InternalError(w)
		return
	}

	response.OK(w, cards)
}

// GetByID handles GET /cards/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.GetCard(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "failed to get card")
		return
	}

	response.OK(w, c)
}

// GetByUID handles GET /cards/uid/{uid}
func (h *Handler) GetByUID(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCardByUID(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		h.respondError(w, err, "failed to get card by uid")
		return
	}

	response.OK(w, c)
}

// Update handles PUT /cards/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.svc.UpdateCard(r.Context(), id, req.Name, req.Balance)
	if err != nil {
		h.respondError(w, err, "failed to update card")
		return
	}

	response.OK(w, c)
}

// AddBalance handles POST /cards/{id}/add-balance
func (h *Handler) AddBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req AddBalanceRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	c, err := h.svc.AddBalance(r.Context(), id, req.Amount)
	if err != nil {
		h.respondError(w, err, "failed to add balance")
		return
	}

	response.OK(w, c)
}

// Use handles POST /cards/uid/{uid}/use. No auth: the reader client
// cannot hold credentials.
func (h *Handler) Use(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.UseCard(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Card not found")
		case errors.Is(err, ErrInsufficientBalance):
			response.BadRequest(w, "Insufficient balance")
		default:
			log.Error().Err(err).Msg("failed to use card")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, UseResponse{
		Success:          true,
		Message:          "Wash activated",
		RemainingBalance: c.Balance,
	})
}

// Delete handles DELETE /cards/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCard(r.Context(), id); err != nil {
		h.respondError(w, err, "failed to delete card")
		return
	}

	response.OK(w, DeleteResponse{Success: true, Message: "Card deleted"})
}

// ListTransactions handles GET /transactions/{card_id}?limit=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid card id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.svc.ListTransactions(r.Context(), cardID, limit)
	if err != nil {
		log.Error().Err(err).Int64("card_id", cardID).Msg("failed to list transactions")
		response.InternalError(w)
		return
	}

	response.OK(w, txs)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "Card not found")
		return
	}
	log.Error().Err(err).Msg(msg)
	response.InternalError(w)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid card id")
		return 0, false
	}
	return id, true
}
