package menu

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lotuskitchen/lotuskitchen/internal/platform/httpx"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Handler wires HTTP endpoints for the menu module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the menu handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type itemPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        int64   `json:"price"`
	PriceDisplay string  `json:"priceDisplay"`
	CostPrice    int64   `json:"costPrice"`
	Category     string  `json:"category"`
	Image        string  `json:"image"`
	Available    bool    `json:"available"`
	Popular      bool    `json:"popular"`
	Profit       int64   `json:"profit"`
	ProfitMargin float64 `json:"profitMargin"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toItemPayload(it Item) itemPayload {
	return itemPayload{
		ID:           it.ID,
		Name:         it.Name,
		Description:  it.Description,
		Price:        it.Price,
		PriceDisplay: shared.FormatVND(it.Price),
		CostPrice:    it.CostPrice,
		Category:     string(it.Category),
		Image:        it.Image,
		Available:    it.Available,
		Popular:      it.Popular,
		Profit:       it.Profit(),
		ProfitMargin: it.ProfitMargin(),
		UpdatedAt:    it.UpdatedAt.Format(time.RFC3339),
	}
}

type createRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"gte=0"`
	CostPrice   int64  `json:"costPrice" validate:"gte=0"`
	Category    string `json:"category" validate:"required"`
	Image       string `json:"image"`
	Popular     bool   `json:"popular"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	CostPrice   *int64  `json:"costPrice"`
	Category    *string `json:"category"`
	Image       *string `json:"image"`
	Available   *bool   `json:"available"`
	Popular     *bool   `json:"popular"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		AvailableOnly: q.Get("available") == "true",
		PopularOnly:   q.Get("popular") == "true",
	}
	if cat := q.Get("category"); cat != "" {
		category, err := ParseCategory(cat)
		if err != nil {
			h.respondError(w, "list menu", err)
			return
		}
		filter.Category = category
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list menu", err)
		return
	}
	payload := make([]itemPayload, 0, len(items))
	for _, it := range items {
		payload = append(payload, toItemPayload(it))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get menu item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemPayload(item))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	category, err := ParseCategory(req.Category)
	if err != nil {
		h.respondError(w, "create menu item", err)
		return
	}
	item, err := h.service.Create(r.Context(), CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Category:    category,
		Image:       req.Image,
		Popular:     req.Popular,
	})
	if err != nil {
		h.respondError(w, "create menu item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemPayload(item))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Image:       req.Image,
		Available:   req.Available,
		Popular:     req.Popular,
	}
	if req.Category != nil {
		category, err := ParseCategory(*req.Category)
		if err != nil {
			h.respondError(w, "update menu item", err)
			return
		}
		input.Category = &category
	}
	item, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "update menu item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemPayload(item))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete menu item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case shared.IsValidation(err):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
