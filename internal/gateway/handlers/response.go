package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/gateway/middleware"
	"syntra-pos/internal/poserr"
)

const REQUEST_TIMEOUT = 10 * time.Second

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type PaginationMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(code, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   code,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

func statusFor(kind poserr.Kind) int {
	switch kind {
	case poserr.KindValidation:
		return http.StatusBadRequest
	case poserr.KindUnauthenticated:
		return http.StatusUnauthorized
	case poserr.KindNotFound:
		return http.StatusNotFound
	case poserr.KindConflict, poserr.KindConcurrentSettlement:
		return http.StatusConflict
	case poserr.KindAmountMismatch, poserr.KindInsufficientStock:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes a service error. Internal errors are logged and hidden
// behind a generic message.
func respondError(c *gin.Context, err error) {
	var pe *poserr.Error
	if !errors.As(err, &pe) || pe.Kind == poserr.KindInternal {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, errorResponse(poserr.CodeInternal, "Internal server error"))
		return
	}
	c.JSON(statusFor(pe.Kind), errorResponse(pe.Code, pe.Message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse(poserr.CodeValidation, message))
}

func operatorID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(middleware.OPERATOR_ID_KEY); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
