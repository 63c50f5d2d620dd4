package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogHandler "syntra-pos/internal/services/catalog/handler"
)

type CatalogHTTPHandler struct {
	catalog *catalogHandler.CatalogHandler
}

func NewCatalogHTTPHandler(catalog *catalogHandler.CatalogHandler) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{
		catalog: catalog,
	}
}

func (h *CatalogHTTPHandler) GetCatalog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	listing, err := h.catalog.Listing(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Catalog retrieved successfully", listing))
}

func (h *CatalogHTTPHandler) ListPaymentMethods(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	methods, err := h.catalog.PaymentMethods(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Payment methods retrieved successfully", methods))
}
