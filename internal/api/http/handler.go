package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/repository"
	"github.com/shestoi/inventory-allocation/internal/service"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// Handler содержит HTTP-обработчики inventory.
// Преобразует HTTP DTO в вызовы service слоя и ошибки service в HTTP статусы.
type Handler struct {
	inventory *service.InventoryService
	logger    *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(inventory *service.InventoryService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		inventory: inventory,
		logger:    logger,
	}
}

// ConfirmRequest - тело POST /v1/variants/{variantID}/confirm
type ConfirmRequest struct {
	Quantity       *int64  `json:"quantity"`
	LocationID     *string `json:"location_id"`
	SalesChannelID *string `json:"sales_channel_id"`
}

// ConfirmResponse - результат проверки доступности
type ConfirmResponse struct {
	Available bool `json:"available"`
}

// AvailabilityResponse - доступное количество варианта
type AvailabilityResponse struct {
	Quantity  int64 `json:"quantity"`
	Unlimited bool  `json:"unlimited"`
}

// AttachRequest - тело POST /v1/variants/{variantID}/items
type AttachRequest struct {
	InventoryItemID  *string `json:"inventory_item_id"`
	RequiredQuantity *int64  `json:"required_quantity"`
}

// LinkResponse - связь варианта со складской позицией
type LinkResponse struct {
	ID               string    `json:"id"`
	VariantID        string    `json:"variant_id"`
	InventoryItemID  string    `json:"inventory_item_id"`
	RequiredQuantity int64     `json:"required_quantity"`
	CreatedAt        time.Time `json:"created_at"`
}

// VariantResponse - вариант товара
type VariantResponse struct {
	ID                string `json:"id"`
	AllowBackorder    bool   `json:"allow_backorder"`
	ManageInventory   bool   `json:"manage_inventory"`
	InventoryQuantity int64  `json:"inventory_quantity"`
}

// ReserveRequest - тело POST /v1/reservations
type ReserveRequest struct {
	LineItemID     *string `json:"line_item_id"`
	VariantID      *string `json:"variant_id"`
	Quantity       *int64  `json:"quantity"`
	LocationID     *string `json:"location_id"`
	SalesChannelID *string `json:"sales_channel_id"`
	Description    *string `json:"description"`
}

// AdjustRequest - тело PATCH /v1/reservations/line-items/{lineItemID}
type AdjustRequest struct {
	VariantID  *string `json:"variant_id"`
	LocationID *string `json:"location_id"`
	Delta      *int64  `json:"delta"`
}

// ReleaseRequest - тело DELETE /v1/reservations/line-items/{lineItemID}
type ReleaseRequest struct {
	VariantID *string `json:"variant_id"`
	Quantity  *int64  `json:"quantity"`
}

// ValidateItem - позиция заказа в запросе проверки отгрузки
type ValidateItem struct {
	LineItemID *string `json:"line_item_id"`
	VariantID  *string `json:"variant_id"`
	Quantity   *int64  `json:"quantity"`
}

// ValidateRequest - тело POST /v1/fulfillments/validate
type ValidateRequest struct {
	LocationID *string        `json:"location_id"`
	Items      []ValidateItem `json:"items"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error      string `json:"error"`
	LineItemID string `json:"line_item_id,omitempty"`
}

// PostConfirm обрабатывает POST /v1/variants/{variantID}/confirm
func (h *Handler) PostConfirm(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")

	var req ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		h.badRequest(w, r, "quantity is required")
		return
	}

	ok, err := h.inventory.ConfirmInventory(r.Context(), variantID, *req.Quantity, service.LocationContext{
		LocationID:     deref(req.LocationID),
		SalesChannelID: deref(req.SalesChannelID),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ConfirmResponse{Available: ok})
}

// GetAvailability обрабатывает GET /v1/variants/{variantID}/availability
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	variantID := chi.URLParam(r, "variantID")
	query := r.URL.Query()

	a, err := h.inventory.VariantAvailability(r.Context(), variantID, service.LocationContext{
		LocationID:     query.Get("location_id"),
		SalesChannelID: query.Get("sales_channel_id"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, AvailabilityResponse{Quantity: a.Quantity, Unlimited: a.Unlimited})
}

// GetVariantItems обрабатывает GET /v1/variants/{variantID}/items
func (h *Handler) GetVariantItems(w http.ResponseWriter, r *http.Request) {
	links, err := h.inventory.ListByVariant(r.Context(), chi.URLParam(r, "variantID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, toLinkResponse(l))
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// PostVariantItem обрабатывает POST /v1/variants/{variantID}/items
func (h *Handler) PostVariantItem(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.InventoryItemID == nil || *req.InventoryItemID == "" {
		h.badRequest(w, r, "inventory_item_id is required")
		return
	}

	link, err := h.inventory.Attach(r.Context(), service.AttachInput{
		VariantID:        chi.URLParam(r, "variantID"),
		InventoryItemID:  *req.InventoryItemID,
		RequiredQuantity: req.RequiredQuantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toLinkResponse(link))
}

// DeleteVariantItem обрабатывает DELETE /v1/variants/{variantID}/items/{itemID}
func (h *Handler) DeleteVariantItem(w http.ResponseWriter, r *http.Request) {
	err := h.inventory.Detach(r.Context(), chi.URLParam(r, "variantID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetItemVariants обрабатывает GET /v1/items/{itemID}/variants
func (h *Handler) GetItemVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.inventory.ListVariantsByItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]VariantResponse, 0, len(variants))
	for _, v := range variants {
		resp = append(resp, VariantResponse{
			ID:                v.ID,
			AllowBackorder:    v.AllowBackorder,
			ManageInventory:   v.ManageInventory,
			InventoryQuantity: v.InventoryQuantity,
		})
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// PostReservation обрабатывает POST /v1/reservations
func (h *Handler) PostReservation(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.LineItemID == nil || *req.LineItemID == "" || req.VariantID == nil || req.Quantity == nil {
		h.badRequest(w, r, "line_item_id, variant_id and quantity are required")
		return
	}

	err := h.inventory.Reserve(r.Context(), *req.VariantID, *req.Quantity, service.ReserveInput{
		LineItemID:     *req.LineItemID,
		LocationID:     deref(req.LocationID),
		SalesChannelID: deref(req.SalesChannelID),
		Description:    deref(req.Description),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// PatchLineItemReservation обрабатывает PATCH /v1/reservations/line-items/{lineItemID}
func (h *Handler) PatchLineItemReservation(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.VariantID == nil || req.Delta == nil {
		h.badRequest(w, r, "variant_id and delta are required")
		return
	}

	err := h.inventory.AdjustByLineItem(r.Context(), service.AdjustInput{
		LineItemID: chi.URLParam(r, "lineItemID"),
		VariantID:  *req.VariantID,
		LocationID: deref(req.LocationID),
		Delta:      *req.Delta,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLineItemReservation обрабатывает DELETE /v1/reservations/line-items/{lineItemID}
func (h *Handler) DeleteLineItemReservation(w http.ResponseWriter, r *http.Request) {
	var req ReleaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	var quantity int64
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	err := h.inventory.Release(r.Context(), chi.URLParam(r, "lineItemID"), deref(req.VariantID), quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostValidateFulfillment обрабатывает POST /v1/fulfillments/validate
func (h *Handler) PostValidateFulfillment(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, &req) {
		return
	}

	items := make([]service.LineItem, 0, len(req.Items))
	for i, item := range req.Items {
		if item.VariantID == nil || item.Quantity == nil {
			h.badRequest(w, r, fmt.Sprintf("variant_id and quantity are required in items[%d]", i))
			return
		}
		items = append(items, service.LineItem{
			ID:        deref(item.LineItemID),
			VariantID: *item.VariantID,
			Quantity:  *item.Quantity,
		})
	}

	if err := h.inventory.ValidateAtLocation(r.Context(), items, deref(req.LocationID)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode разбирает JSON тело; пустое тело допустимо
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.badRequest(w, r, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: msg})
}

// writeError переводит ошибку service слоя в HTTP статус
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := platformobservability.LoggerFromContext(r.Context(), h.logger)
	status := statusFromError(err)

	resp := ErrorResponse{Error: err.Error()}
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		resp.LineItemID = stockErr.LineItemID
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		// детали внутренних ошибок наружу не отдаём
		if status == http.StatusInternalServerError {
			resp.Error = "internal server error"
		}
	} else {
		logger.Warn("request rejected",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
		)
	}

	h.writeJSON(w, r, status, resp)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLocationRequired), errors.Is(err, service.ErrNoLocationForChannel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrLedgerNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		platformobservability.LoggerFromContext(r.Context(), h.logger).Error("failed to encode response", zap.Error(err))
	}
}

func toLinkResponse(l repository.VariantInventoryLink) LinkResponse {
	return LinkResponse{
		ID:               l.ID,
		VariantID:        l.VariantID,
		InventoryItemID:  l.InventoryItemID,
		RequiredQuantity: l.RequiredQuantity,
		CreatedAt:        l.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
