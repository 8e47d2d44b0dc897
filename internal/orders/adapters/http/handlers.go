package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopworks/fulfillment/internal/orders/app"
	"github.com/shopworks/fulfillment/internal/orders/app/commands"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order and stock operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByID)
	mux.HandleFunc("/v1/stock/transactions", h.recordStockTransaction)
	mux.HandleFunc("/v1/stock/", h.handleStockByProduct)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.placeOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.getOrder(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.updateStatus(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "items":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.adjustLine(w, r, parts[0], parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleStockByProduct(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stock/"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[1] != "transactions" || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.listStockTransactions(w, r, parts[0])
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	if stored, err := h.service.GetIdempotentResponse(ctx, idemKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	} else if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload app.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.PlaceOrder(ctx, payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    order.ID,
	}
	if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order":   view.Order,
		"history": view.History,
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{
		UserID: r.URL.Query().Get("user_id"),
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown status "+statusParam)
			return
		}
		filter.Status = &status
	}
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}
	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	actorID := actorFrom(r)
	if actorID == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var payload updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	status := domain.OrderStatus(payload.Status)
	if !status.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown status "+payload.Status)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, status, payload.Note, actorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

type adjustLineRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) adjustLine(w http.ResponseWriter, r *http.Request, orderID, itemID string) {
	actorID := actorFrom(r)
	if actorID == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var payload adjustLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.AdjustLineQuantity(r.Context(), orderID, itemID, payload.Quantity, actorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

type recordStockRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

func (h *Handler) recordStockTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actorID := actorFrom(r)
	if actorID == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header required")
		return
	}

	var payload recordStockRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	entry, err := h.service.RecordStockTransaction(
		r.Context(),
		payload.ProductID,
		domain.StockTransactionType(payload.Type),
		payload.Quantity,
		payload.Note,
		actorID,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": entry})
}

func (h *Handler) listStockTransactions(w http.ResponseWriter, r *http.Request, productID string) {
	entries, err := h.service.ListStockTransactions(r.Context(), productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": entries})
}

func actorFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr  *domain.ValidationError
		notFoundErr    *domain.NotFoundError
		ownershipErr   *domain.OwnershipError
		stockErr       *domain.InsufficientStockError
		couponErr      *domain.InvalidCouponError
		promoErr       *domain.InvalidPromotionConfigError
		adjustErr      *domain.InvalidAdjustmentError
		transitionErr  *domain.InvalidStatusTransitionError
		concurrencyErr *domain.ConcurrencyConflictError
	)

	switch {
	case errors.Is(err, commands.ErrAdminOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, commands.ErrOrderNotEditable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &ownershipErr):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &couponErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &promoErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &adjustErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &transitionErr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &concurrencyErr):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
