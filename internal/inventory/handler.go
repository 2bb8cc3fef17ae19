package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lotuskitchen/lotuskitchen/internal/platform/httpx"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleListItems)
	r.Post("/", h.handleCreateItem)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/transactions", h.handleListTransactions)
	r.Post("/import", h.handleImport)
	r.Post("/export", h.handleExport)
	r.Get("/{id}", h.handleGetItem)
	r.Put("/{id}", h.handleUpdateItem)
	r.Delete("/{id}", h.handleDeleteItem)
}

type itemPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	Quantity     int64  `json:"quantity"`
	CostPerUnit  int64  `json:"costPerUnit"`
	Supplier     string `json:"supplier"`
	Category     string `json:"category"`
	MinimumStock int64  `json:"minimumStock"`
	IsLowStock   bool   `json:"isLowStock"`
	UpdatedAt    string `json:"updatedAt"`
}

func toItemPayload(it Item) itemPayload {
	return itemPayload{
		ID:           it.ID,
		Name:         it.Name,
		Unit:         it.Unit,
		Quantity:     it.Quantity,
		CostPerUnit:  it.CostPerUnit,
		Supplier:     it.Supplier,
		Category:     string(it.Category),
		MinimumStock: it.MinimumStock,
		IsLowStock:   it.IsLowStock(),
		UpdatedAt:    it.UpdatedAt.Format(time.RFC3339),
	}
}

type linePayload struct {
	Item     string `json:"item"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Cost     int64  `json:"cost"`
}

type transactionPayload struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Items        []linePayload `json:"items"`
	TotalAmount  int64         `json:"totalAmount"`
	TotalDisplay string        `json:"totalDisplay"`
	Note         string        `json:"note"`
	Supplier     string        `json:"supplier,omitempty"`
	OrderID      string        `json:"orderId,omitempty"`
	OrderCode    string        `json:"orderCode,omitempty"`
	CreatedBy    string        `json:"createdBy,omitempty"`
	CreatedAt    string        `json:"createdAt"`
}

func toTransactionPayload(t Transaction) transactionPayload {
	lines := make([]linePayload, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, linePayload{Item: l.ItemID, Name: l.Name, Quantity: l.Quantity, Cost: l.Cost})
	}
	return transactionPayload{
		ID:           t.ID,
		Type:         string(t.Type),
		Items:        lines,
		TotalAmount:  t.TotalAmount,
		TotalDisplay: shared.FormatVND(t.TotalAmount),
		Note:         t.Note,
		Supplier:     t.Supplier,
		OrderID:      t.OrderID,
		OrderCode:    t.OrderCode,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
}

type createItemRequest struct {
	Name         string `json:"name" validate:"required"`
	Unit         string `json:"unit" validate:"required"`
	Quantity     int64  `json:"quantity" validate:"gte=0"`
	CostPerUnit  int64  `json:"costPerUnit" validate:"gte=0"`
	Supplier     string `json:"supplier"`
	Category     string `json:"category"`
	MinimumStock int64  `json:"minimumStock" validate:"gte=0"`
}

type updateItemRequest struct {
	Name         *string `json:"name"`
	Unit         *string `json:"unit"`
	CostPerUnit  *int64  `json:"costPerUnit"`
	Supplier     *string `json:"supplier"`
	Category     *string `json:"category"`
	MinimumStock *int64  `json:"minimumStock"`
}

type importLineRequest struct {
	Item     string `json:"item" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Cost     *int64 `json:"cost"`
}

type importRequest struct {
	Items    []importLineRequest `json:"items" validate:"required,min=1,dive"`
	Supplier string              `json:"supplier"`
	Note     string              `json:"note"`
}

type exportLineRequest struct {
	Item     string `json:"item" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

type exportRequest struct {
	Items   []exportLineRequest `json:"items" validate:"required,min=1,dive"`
	OrderID string              `json:"orderId"`
	Note    string              `json:"note"`
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.respondError(w, "list items", err)
		return
	}
	payload := make([]itemPayload, 0, len(items))
	for _, it := range items {
		payload = append(payload, toItemPayload(it))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemPayload(item))
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
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
		h.respondError(w, "create item", err)
		return
	}
	item, err := h.service.CreateItem(r.Context(), CreateItemInput{
		Name:         req.Name,
		Unit:         req.Unit,
		Quantity:     req.Quantity,
		CostPerUnit:  req.CostPerUnit,
		Supplier:     req.Supplier,
		Category:     category,
		MinimumStock: req.MinimumStock,
	})
	if err != nil {
		h.respondError(w, "create item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemPayload(item))
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := UpdateItemInput{
		Name:         req.Name,
		Unit:         req.Unit,
		CostPerUnit:  req.CostPerUnit,
		Supplier:     req.Supplier,
		MinimumStock: req.MinimumStock,
	}
	if req.Category != nil {
		category, err := ParseCategory(*req.Category)
		if err != nil {
			h.respondError(w, "update item", err)
			return
		}
		input.Category = &category
	}
	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, "update item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemPayload(item))
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, "delete item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "inventory item deleted"})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		h.respondError(w, "low stock", err)
		return
	}
	payload := make([]itemPayload, 0, len(items))
	for _, it := range items {
		payload = append(payload, toItemPayload(it))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	lines := make([]ImportLine, 0, len(req.Items))
	for _, l := range req.Items {
		lines = append(lines, ImportLine{ItemID: l.Item, Quantity: l.Quantity, UnitCost: l.Cost})
	}
	entry, err := h.service.ApplyImport(r.Context(), ImportInput{
		Lines:     lines,
		Supplier:  req.Supplier,
		Note:      req.Note,
		CreatedBy: shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, "import", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionPayload(entry))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	lines := make([]ExportLine, 0, len(req.Items))
	for _, l := range req.Items {
		lines = append(lines, ExportLine{ItemID: l.Item, Quantity: l.Quantity})
	}
	entry, err := h.service.ApplyExport(r.Context(), ExportInput{
		Lines:     lines,
		OrderID:   req.OrderID,
		Note:      req.Note,
		CreatedBy: shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, "export", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionPayload(entry))
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := TransactionFilter{OrderID: q.Get("orderId")}
	if typeStr := q.Get("type"); typeStr != "" {
		txType, err := ParseTransactionType(typeStr)
		if err != nil {
			h.respondError(w, "list transactions", err)
			return
		}
		filter.Type = txType
	}
	if fromStr := q.Get("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filter.From = shared.StartOfDay(from)
	}
	if toStr := q.Get("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		filter.To = shared.EndOfDay(to)
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	txs, err := h.service.Transactions(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list transactions", err)
		return
	}
	payload := make([]transactionPayload, 0, len(txs))
	for _, t := range txs {
		payload = append(payload, toTransactionPayload(t))
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// respondError maps domain errors onto problem responses. Insufficient
// stock is a business rejection, not a validation failure, so it gets 409.
func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var ise *shared.InsufficientStockError
	switch {
	case errors.As(err, &ise):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", ise.Error())
	case shared.IsValidation(err):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
