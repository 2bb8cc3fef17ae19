package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lotuskitchen/lotuskitchen/internal/orders"
	"github.com/lotuskitchen/lotuskitchen/internal/platform/httpx"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// sessionKey holds the customer id in the shared session, separate from
// the staff user binding so a customer login never opens staff routes.
const sessionKey = "customer_id"

// CustomerFromContext returns the signed-in customer id, or "".
func CustomerFromContext(r *http.Request) string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return ""
	}
	return sess.Get(sessionKey)
}

// RequireCustomer guards account routes behind a customer session.
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CustomerFromContext(r) == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler wires HTTP endpoints for customer accounts.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler constructs the customers handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, validate: validator.New()}
}

// MountRoutes registers customer routes. Registration and login are
// public; the account itself requires a customer session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)

	r.Group(func(account chi.Router) {
		account.Use(RequireCustomer)
		account.Post("/logout", h.handleLogout)
		account.Get("/profile", h.handleProfile)
		account.Put("/profile", h.handleUpdateProfile)
		account.Get("/orders", h.handleOrders)
	})
}

type customerPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

func toCustomerPayload(c Customer) customerPayload {
	return customerPayload{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	customer, err := h.service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		h.respondError(w, "register customer", err)
		return
	}
	h.bindSession(r, customer.ID)
	httpx.JSON(w, http.StatusCreated, toCustomerPayload(customer))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	customer, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
			return
		}
		h.logger.Error("customer login failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.bindSession(r, customer.ID)
	httpx.JSON(w, http.StatusOK, toCustomerPayload(customer))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Profile(r.Context(), CustomerFromContext(r))
	if err != nil {
		h.respondError(w, "load customer profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCustomerPayload(customer))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.service.UpdateProfile(r.Context(), CustomerFromContext(r), UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(w, "update customer profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCustomerPayload(customer))
}

type orderPayload struct {
	OrderCode     string             `json:"orderCode"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	TotalAmount   int64              `json:"totalAmount"`
	TotalDisplay  string             `json:"totalDisplay"`
	Items         []orderLinePayload `json:"items"`
	CreatedAt     string             `json:"createdAt"`
}

type orderLinePayload struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Orders(r.Context(), CustomerFromContext(r))
	if err != nil {
		h.respondError(w, "list customer orders", err)
		return
	}
	payload := make([]orderPayload, 0, len(list))
	for _, o := range list {
		payload = append(payload, toOrderPayload(o))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func toOrderPayload(o orders.Order) orderPayload {
	lines := make([]orderLinePayload, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLinePayload{Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	return orderPayload{
		OrderCode:     o.OrderCode,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount,
		TotalDisplay:  shared.FormatVND(o.TotalAmount),
		Items:         lines,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
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

// bindSession attaches the customer id to the request session.
func (h *Handler) bindSession(r *http.Request, id string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Set(sessionKey, id)
	}
}
