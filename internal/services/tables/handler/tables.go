package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/poserr"
	"syntra-pos/internal/store"
)

type TablesHandler struct {
	store store.Tables
	now   func() time.Time
}

func NewTablesHandler(st store.Tables) *TablesHandler {
	return &TablesHandler{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (h *TablesHandler) OpenSession(ctx context.Context, operatorID, tableID uuid.UUID) (*models.TableSession, error) {
	if operatorID == uuid.Nil {
		return nil, poserr.Unauthenticated()
	}

	table, err := h.store.GetTable(ctx, tableID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.NotFound("table %s not found", tableID)
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load table")
	}
	if !table.Active {
		return nil, poserr.InvalidTable("table %s is inactive", table.Name)
	}

	ts := &models.TableSession{
		ID:       uuid.New(),
		TableID:  table.ID,
		OpenedBy: operatorID,
		OpenedAt: h.now(),
		Status:   models.TableSessionOpen,
	}
	if err := h.store.CreateTableSession(ctx, ts); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, poserr.Conflict("table %s is already open", table.Name)
		}
		return nil, poserr.Internal(err, "failed to open table")
	}

	log.WithFields(log.Fields{
		"table_id":    table.ID,
		"session_id":  ts.ID,
		"operator_id": operatorID,
	}).Info("table session opened")
	return ts, nil
}

func (h *TablesHandler) CloseSession(ctx context.Context, operatorID, sessionID uuid.UUID) (*models.TableSession, error) {
	if operatorID == uuid.Nil {
		return nil, poserr.Unauthenticated()
	}

	at := h.now()
	if err := h.store.CloseTableSession(ctx, sessionID, operatorID, at); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, poserr.NotFound("no open table session %s", sessionID)
		}
		return nil, poserr.Internal(err, "failed to close table")
	}

	ts, err := h.store.GetTableSession(ctx, sessionID)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load table session")
	}
	log.WithFields(log.Fields{"session_id": sessionID, "operator_id": operatorID}).Info("table session closed")
	return ts, nil
}
