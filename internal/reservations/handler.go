package reservations

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

// Handler wires HTTP endpoints for the reservations module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the reservations handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers reservation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type payload struct {
	ID              string `json:"id"`
	CustomerName    string `json:"customerName"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	People          int    `json:"people"`
	SpecialRequests string `json:"specialRequests,omitempty"`
	Status          string `json:"status"`
	Table           string `json:"table,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

func toPayload(res Reservation) payload {
	return payload{
		ID:              res.ID,
		CustomerName:    res.CustomerName,
		Phone:           res.Phone,
		Email:           res.Email,
		Date:            res.Date.Format("2006-01-02"),
		Time:            res.Time,
		People:          res.People,
		SpecialRequests: res.SpecialRequests,
		Status:          string(res.Status),
		Table:           res.Table,
		CreatedAt:       res.CreatedAt.Format(time.RFC3339),
	}
}

type createRequest struct {
	CustomerName    string `json:"customerName" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Email           string `json:"email"`
	Date            string `json:"date" validate:"required"`
	Time            string `json:"time" validate:"required"`
	People          int    `json:"people" validate:"gte=1"`
	SpecialRequests string `json:"specialRequests"`
}

type updateRequest struct {
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	People          *int    `json:"people"`
	SpecialRequests *string `json:"specialRequests"`
	Status          *string `json:"status"`
	Table           *string `json:"table"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{}
	if st := q.Get("status"); st != "" {
		status, err := ParseStatus(st)
		if err != nil {
			h.respondError(w, "list reservations", err)
			return
		}
		filter.Status = status
	}
	if dateStr := q.Get("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid date")
			return
		}
		filter.Date = date
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list reservations", err)
		return
	}
	out := make([]payload, 0, len(list))
	for _, res := range list {
		out = append(out, toPayload(res))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get reservation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(res))
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
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid date")
		return
	}
	res, err := h.service.Create(r.Context(), CreateInput{
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		Email:           req.Email,
		Date:            date,
		Time:            req.Time,
		People:          req.People,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.respondError(w, "create reservation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPayload(res))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := UpdateInput{
		Time:            req.Time,
		People:          req.People,
		SpecialRequests: req.SpecialRequests,
		Table:           req.Table,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid date")
			return
		}
		input.Date = &date
	}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			h.respondError(w, "update reservation", err)
			return
		}
		input.Status = &status
	}
	res, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "update reservation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(res))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete reservation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "reservation deleted"})
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
