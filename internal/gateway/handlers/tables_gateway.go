package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	tablesHandler "syntra-pos/internal/services/tables/handler"
)

type TablesHTTPHandler struct {
	tables *tablesHandler.TablesHandler
}

func NewTablesHTTPHandler(tables *tablesHandler.TablesHandler) *TablesHTTPHandler {
	return &TablesHTTPHandler{
		tables: tables,
	}
}

func (h *TablesHTTPHandler) OpenSession(c *gin.Context) {
	tableID, ok := uuidParam(c, "id", "table")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	ts, err := h.tables.OpenSession(ctx, operatorID(c), tableID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Table session opened", ts))
}

func (h *TablesHTTPHandler) CloseSession(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id", "table session")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), REQUEST_TIMEOUT)
	defer cancel()

	ts, err := h.tables.CloseSession(ctx, operatorID(c), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Table session closed", ts))
}
