package orders

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

// Handler wires HTTP endpoints for the orders module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the orders handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers order routes. Track-by-code is public; the rest
// sits behind the staff session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/track/{code}", h.handleTrack)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleCancel)
}

type linePayload struct {
	MenuItem string `json:"menuItem"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

type orderPayload struct {
	ID            string        `json:"id"`
	OrderCode     string        `json:"orderCode"`
	CustomerName  string        `json:"customerName"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email,omitempty"`
	Items         []linePayload `json:"items"`
	ReservationID string        `json:"reservationId,omitempty"`
	TotalAmount   int64         `json:"totalAmount"`
	TotalDisplay  string        `json:"totalDisplay"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod"`
	ServeTime     string        `json:"serveTime,omitempty"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

func toOrderPayload(o Order) orderPayload {
	lines := make([]linePayload, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, linePayload{MenuItem: l.MenuItemID, Name: l.Name, Price: l.Price, Quantity: l.Quantity, Note: l.Note})
	}
	p := orderPayload{
		ID:            o.ID,
		OrderCode:     o.OrderCode,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Email:         o.Email,
		Items:         lines,
		ReservationID: o.ReservationID,
		TotalAmount:   o.TotalAmount,
		TotalDisplay:  shared.FormatVND(o.TotalAmount),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
	if !o.ServeTime.IsZero() {
		p.ServeTime = o.ServeTime.Format(time.RFC3339)
	}
	return p
}

// trackPayload is the public view: no internal ids, masked phone.
type trackPayload struct {
	OrderCode     string        `json:"orderCode"`
	CustomerName  string        `json:"customerName"`
	Phone         string        `json:"phone"`
	Status        string        `json:"status"`
	Items         []linePayload `json:"items"`
	TotalAmount   int64         `json:"totalAmount"`
	TotalDisplay  string        `json:"totalDisplay"`
	PaymentStatus string        `json:"paymentStatus"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

type createLineRequest struct {
	MenuItem string `json:"menuItem" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Note     string `json:"note"`
}

type createRequest struct {
	CustomerName  string              `json:"customerName" validate:"required"`
	Phone         string              `json:"phone" validate:"required"`
	Email         string              `json:"email"`
	Items         []createLineRequest `json:"items" validate:"required,min=1,dive"`
	ReservationID string              `json:"reservationId"`
	Note          string              `json:"note"`
}

type updateRequest struct {
	Status        *string    `json:"status"`
	PaymentStatus *string    `json:"paymentStatus"`
	PaymentMethod *string    `json:"paymentMethod"`
	ServeTime     *time.Time `json:"serveTime"`
	Note          *string    `json:"note"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{}
	if st := q.Get("status"); st != "" {
		status, err := ParseStatus(st)
		if err != nil {
			h.respondError(w, "list orders", err)
			return
		}
		filter.Status = status
	}
	if ps := q.Get("paymentStatus"); ps != "" {
		status, err := ParsePaymentStatus(ps)
		if err != nil {
			h.respondError(w, "list orders", err)
			return
		}
		filter.PaymentStatus = status
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list orders", err)
		return
	}
	payload := make([]orderPayload, 0, len(list))
	for _, o := range list {
		payload = append(payload, toOrderPayload(o))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderPayload(order))
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.TrackByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, "track order", err)
		return
	}
	lines := make([]linePayload, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, linePayload{Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	httpx.JSON(w, http.StatusOK, trackPayload{
		OrderCode:     order.OrderCode,
		CustomerName:  order.CustomerName,
		Phone:         order.Phone,
		Status:        string(order.Status),
		Items:         lines,
		TotalAmount:   order.TotalAmount,
		TotalDisplay:  shared.FormatVND(order.TotalAmount),
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     order.UpdatedAt.Format(time.RFC3339),
	})
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
	lines := make([]CreateLine, 0, len(req.Items))
	for _, l := range req.Items {
		lines = append(lines, CreateLine{MenuItemID: l.MenuItem, Quantity: l.Quantity, Note: l.Note})
	}
	order, err := h.service.Create(r.Context(), CreateInput{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Email:         req.Email,
		Lines:         lines,
		ReservationID: req.ReservationID,
		Note:          req.Note,
	})
	if err != nil {
		h.respondError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderPayload(order))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := UpdateInput{ServeTime: req.ServeTime, Note: req.Note}
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			h.respondError(w, "update order", err)
			return
		}
		input.Status = &status
	}
	if req.PaymentStatus != nil {
		status, err := ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			h.respondError(w, "update order", err)
			return
		}
		input.PaymentStatus = &status
	}
	if req.PaymentMethod != nil {
		method, err := ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			h.respondError(w, "update order", err)
			return
		}
		input.PaymentMethod = &method
	}
	order, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "update order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderPayload(order))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "cancel order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderPayload(order))
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
