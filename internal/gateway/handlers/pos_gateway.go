package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
	posHandler "syntra-pos/internal/services/pos/handler"
	"syntra-pos/internal/services/pos/pricing"
	"syntra-pos/internal/store"
)

type POSHTTPHandler struct {
	pos *posHandler.POSHandler
}

func NewPOSHTTPHandler(pos *posHandler.POSHandler) *POSHTTPHandler {
	return &POSHTTPHandler{
		pos: pos,
	}
}

// Request structs
type OrderModifierRequest struct {
	ModifierID string `json:"modifier_id" binding:"required"`
	Quantity   *int32 `json:"quantity,omitempty"`
}

type OrderItemRequest struct {
	ItemType        string                 `json:"item_type" binding:"required"`
	ItemID          string                 `json:"item_id" binding:"required"`
	ClientReference string                 `json:"client_reference" binding:"required"`
	Quantity        int32                  `json:"quantity"`
	Notes           *string                `json:"notes,omitempty"`
	Modifiers       []OrderModifierRequest `json:"modifiers,omitempty" binding:"dive"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	OrderType       string             `json:"order_type,omitempty"`
	TableSessionID  *string            `json:"table_session_id,omitempty"`
	DiscountType    string             `json:"discount_type,omitempty"`
	DiscountValue   decimal.Decimal    `json:"discount_value"`
	ServiceFeeType  string             `json:"service_fee_type,omitempty"`
	ServiceFeeValue decimal.Decimal    `json:"service_fee_value"`
	Notes           *string            `json:"notes,omitempty"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type PaymentItemRequest struct {
	Method   string           `json:"method" binding:"required"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Received *decimal.Decimal `json:"received,omitempty"`
	Change   *decimal.Decimal `json:"change,omitempty"`
}

type FinalizePaymentRequest struct {
	Payments []PaymentItemRequest `json:"payments" binding:"required,min=1,dive"`
}

// Query structs
type ListOrdersQuery struct {
	Page           int     `form:"page,default=1"`
	PageSize       int     `form:"page_size,default=20"`
	Status         *string `form:"status,omitempty"`
	CashRegisterID *string `form:"cash_register_id,omitempty"`
	ShiftID        *string `form:"shift_id,omitempty"`
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (r CreateOrderRequest) toCart() (pricing.Cart, error) {
	cart := pricing.Cart{
		OrderType:       models.OrderType(upper(r.OrderType)),
		DiscountType:    models.AdjustmentType(upper(r.DiscountType)),
		DiscountValue:   r.DiscountValue,
		ServiceFeeType:  models.AdjustmentType(upper(r.ServiceFeeType)),
		ServiceFeeValue: r.ServiceFeeValue,
		Notes:           r.Notes,
	}

	sessionID, err := parseOptionalUUID(r.TableSessionID)
	if err != nil {
		return cart, errors.New("invalid table_session_id")
	}
	cart.TableSessionID = sessionID

	for i, it := range r.Items {
		itemID, err := uuid.Parse(it.ItemID)
		if err != nil {
			return cart, errors.Errorf("item %d: invalid item_id", i+1)
		}
		line := pricing.LineRequest{
			ItemType:        models.ItemType(upper(it.ItemType)),
			ItemID:          itemID,
			ClientReference: it.ClientReference,
			Quantity:        it.Quantity,
			Notes:           it.Notes,
		}
		for j, m := range it.Modifiers {
			modID, err := uuid.Parse(m.ModifierID)
			if err != nil {
				return cart, errors.Errorf("item %d modifier %d: invalid modifier_id", i+1, j+1)
			}
			qty := int32(1)
			if m.Quantity != nil {
				qty = *m.Quantity
			}
			line.Modifiers = append(line.Modifiers, pricing.ModifierRequest{ModifierID: modID, Quantity: qty})
		}
		cart.Items = append(cart.Items, line)
	}
	return cart, nil
}

// --- Order Handlers ---

func (h *POSHTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	cart, err := req.toCart()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	order, err := h.pos.CreateOrder(ctx, operatorID(c), cart)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order created successfully", order))
}

func (h *POSHTTPHandler) GetOrder(c *gin.Context) {
	orderID, ok := uuidParam(c, "id", "order")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	order, err := h.pos.GetOrder(ctx, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

func (h *POSHTTPHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	filter := store.OrderFilter{Page: query.Page, PageSize: query.PageSize}
	if query.Status != nil && *query.Status != "" {
		status := models.OrderStatus(upper(*query.Status))
		switch status {
		case models.OrderOpen, models.OrderPaid, models.OrderCanceled:
			filter.Status = &status
		default:
			badRequest(c, "Invalid status filter")
			return
		}
	}
	var err error
	if filter.CashRegisterID, err = parseOptionalUUID(query.CashRegisterID); err != nil {
		badRequest(c, "Invalid cash_register_id")
		return
	}
	if filter.ShiftID, err = parseOptionalUUID(query.ShiftID); err != nil {
		badRequest(c, "Invalid shift_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	page, err := h.pos.ListOrders(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", page.Orders, PaginationMeta{
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}))
}

func (h *POSHTTPHandler) CancelOrder(c *gin.Context) {
	orderID, ok := uuidParam(c, "id", "order")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	order, err := h.pos.CancelOrder(ctx, operatorID(c), orderID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order canceled successfully", order))
}

// --- Payment Handlers ---

func (h *POSHTTPHandler) FinalizePayment(c *gin.Context) {
	orderID, ok := uuidParam(c, "id", "order")
	if !ok {
		return
	}
	var req FinalizePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	payments := make([]posHandler.PaymentRequest, len(req.Payments))
	for i, p := range req.Payments {
		payments[i] = posHandler.PaymentRequest{
			Method:   p.Method,
			Amount:   *p.Amount,
			Received: p.Received,
			Change:   p.Change,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	order, err := h.pos.FinalizePayment(ctx, operatorID(c), orderID, payments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Payment processed successfully", order))
}
