package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryHandler "syntra-pos/internal/services/inventory/handler"
)

type InventoryHTTPHandler struct {
	inventory *inventoryHandler.InventoryHandler
}

func NewInventoryHTTPHandler(inventory *inventoryHandler.InventoryHandler) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		inventory: inventory,
	}
}

func (h *InventoryHTTPHandler) LowStock(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	products, err := h.inventory.LowStock(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Low stock products retrieved successfully", products))
}

func (h *InventoryHTTPHandler) ProductMovements(c *gin.Context) {
	productID, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	movements, err := h.inventory.Movements(ctx, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Stock movements retrieved successfully", movements))
}
