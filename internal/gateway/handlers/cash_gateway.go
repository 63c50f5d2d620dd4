package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
	cashHandler "syntra-pos/internal/services/cash/handler"
)

type CashHTTPHandler struct {
	cash *cashHandler.CashHandler
}

func NewCashHTTPHandler(cash *cashHandler.CashHandler) *CashHTTPHandler {
	return &CashHTTPHandler{
		cash: cash,
	}
}

type OpenRegisterRequest struct {
	OpeningAmount *decimal.Decimal `json:"opening_amount" binding:"required"`
}

type CloseRegisterRequest struct {
	ClosingAmount *decimal.Decimal `json:"closing_amount" binding:"required"`
}

type CashMovementRequest struct {
	Type   string           `json:"type" binding:"required"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Reason string           `json:"reason" binding:"required"`
}

type ShiftNoteRequest struct {
	Note *string `json:"note,omitempty"`
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// --- Registers ---

func (h *CashHTTPHandler) OpenRegister(c *gin.Context) {
	var req OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	reg, err := h.cash.OpenRegister(ctx, operatorID(c), *req.OpeningAmount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Cash register opened", reg))
}

func (h *CashHTTPHandler) CloseRegister(c *gin.Context) {
	var req CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	summary, err := h.cash.CloseRegister(ctx, operatorID(c), *req.ClosingAmount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Cash register closed", summary))
}

func (h *CashHTTPHandler) CurrentRegister(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	summary, err := h.cash.CurrentRegister(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Cash register retrieved successfully", summary))
}

func (h *CashHTTPHandler) RecordMovement(c *gin.Context) {
	var req CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	kind := models.CashMovementType(strings.ToUpper(strings.TrimSpace(req.Type)))
	mv, err := h.cash.RecordMovement(ctx, operatorID(c), kind, *req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Cash movement recorded", mv))
}

// --- Shifts ---

func (h *CashHTTPHandler) OpenShift(c *gin.Context) {
	var req ShiftNoteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	sh, err := h.cash.OpenShift(ctx, operatorID(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Shift opened", sh))
}

func (h *CashHTTPHandler) CloseShift(c *gin.Context) {
	var req ShiftNoteRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	sh, err := h.cash.CloseShift(ctx, operatorID(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Shift closed", sh))
}

func (h *CashHTTPHandler) CurrentShift(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	sh, err := h.cash.CurrentShift(ctx, operatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Shift retrieved successfully", sh))
}
