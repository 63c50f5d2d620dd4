package handler

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/poserr"
	"syntra-pos/internal/store/memory"
)

func TestTableSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	table := models.Table{ID: uuid.New(), Name: "T1", Active: true}
	st.PutTable(table)
	h := NewTablesHandler(st)
	operator := uuid.New()

	ts, err := h.OpenSession(ctx, operator, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableSessionOpen, ts.Status)

	_, err = h.OpenSession(ctx, operator, table.ID)
	assert.Equal(t, poserr.KindConflict, poserr.KindOf(err))

	closed, err := h.CloseSession(ctx, operator, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableSessionClosed, closed.Status)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, operator, *closed.ClosedBy)

	_, err = h.CloseSession(ctx, operator, ts.ID)
	assert.Equal(t, poserr.KindNotFound, poserr.KindOf(err))

	_, err = h.OpenSession(ctx, operator, table.ID)
	require.NoError(t, err, "a closed session frees the table")
}

func TestOpenSessionRejectsUnknownOrInactiveTable(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	inactive := models.Table{ID: uuid.New(), Name: "Patio", Active: false}
	st.PutTable(inactive)
	h := NewTablesHandler(st)

	_, err := h.OpenSession(ctx, uuid.New(), uuid.New())
	assert.Equal(t, poserr.KindNotFound, poserr.KindOf(err))

	_, err = h.OpenSession(ctx, uuid.New(), inactive.ID)
	assert.True(t, poserr.HasCode(err, poserr.CodeInvalidTable))

	_, err = h.OpenSession(ctx, uuid.Nil, inactive.ID)
	assert.Equal(t, poserr.KindUnauthenticated, poserr.KindOf(err))
}
