package handler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/money"
	"syntra-pos/internal/poserr"
	"syntra-pos/internal/store"
)

const AUTO_SHIFT_NOTE = "automatic"

type Store interface {
	store.Cash
	PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
}

type CashHandler struct {
	store Store
	now   func() time.Time
}

func NewCashHandler(st Store) *CashHandler {
	return &CashHandler{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// RegisterSummary reconciles the drawer: expected cash is the opening amount
// plus cash payments and supplies, minus withdrawals.
type RegisterSummary struct {
	Register         models.CashRegister        `json:"register"`
	OpeningAmount    decimal.Decimal            `json:"opening_amount"`
	CashPayments     decimal.Decimal            `json:"cash_payments"`
	Supplies         decimal.Decimal            `json:"supplies"`
	Withdrawals      decimal.Decimal            `json:"withdrawals"`
	Expected         decimal.Decimal            `json:"expected"`
	PaymentsByMethod map[string]decimal.Decimal `json:"payments_by_method"`
	Counted          *decimal.Decimal           `json:"counted,omitempty"`
	Difference       *decimal.Decimal           `json:"difference,omitempty"`
}

func requireOperator(operatorID uuid.UUID) error {
	if operatorID == uuid.Nil {
		return poserr.Unauthenticated()
	}
	return nil
}

func (h *CashHandler) OpenRegister(ctx context.Context, operatorID uuid.UUID, opening decimal.Decimal) (*models.CashRegister, error) {
	if err := requireOperator(operatorID); err != nil {
		return nil, err
	}
	if opening.IsNegative() {
		return nil, poserr.Validation("opening amount must not be negative")
	}
	if !money.IsExactCents(opening) {
		return nil, poserr.Validation("opening amount must have at most two decimals")
	}

	if _, err := h.store.CurrentRegister(ctx); err == nil {
		return nil, poserr.Conflict("a cash register is already open")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, poserr.Internal(err, "failed to check open register")
	}

	reg := &models.CashRegister{
		ID:            uuid.New(),
		OpeningAmount: opening,
		OpenedAt:      h.now(),
		Status:        models.RegisterOpen,
		OpenedBy:      operatorID,
	}
	if err := h.store.CreateRegister(ctx, reg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, poserr.Conflict("a cash register is already open")
		}
		return nil, poserr.Internal(err, "failed to open register")
	}

	if _, err := h.EnsureShift(ctx, operatorID, reg.ID); err != nil {
		log.WithError(err).WithField("register_id", reg.ID).Warn("register opened without shift")
	}

	log.WithFields(log.Fields{
		"register_id": reg.ID,
		"operator_id": operatorID,
		"opening":     money.String(opening),
	}).Info("cash register opened")
	return reg, nil
}

// EnsureShift returns the operator's OPEN shift, opening an automatic one
// linked to registerID when none exists.
func (h *CashHandler) EnsureShift(ctx context.Context, operatorID, registerID uuid.UUID) (*models.Shift, error) {
	sh, err := h.store.CurrentShift(ctx, operatorID)
	if err == nil {
		return sh, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, poserr.Internal(err, "failed to load shift")
	}

	note := AUTO_SHIFT_NOTE
	rid := registerID
	sh = &models.Shift{
		ID:             uuid.New(),
		OpenedBy:       operatorID,
		CashRegisterID: &rid,
		OpenedAt:       h.now(),
		Status:         models.ShiftOpen,
		NoteOpen:       &note,
	}
	switch err := h.store.CreateShift(ctx, sh); {
	case err == nil:
		return sh, nil
	case errors.Is(err, store.ErrDuplicate):
		// Lost a race with another request for the same operator.
		existing, err := h.store.CurrentShift(ctx, operatorID)
		if err != nil {
			return nil, poserr.Internal(err, "failed to load shift")
		}
		return existing, nil
	default:
		return nil, poserr.Internal(err, "failed to open shift")
	}
}

func (h *CashHandler) CloseRegister(ctx context.Context, operatorID uuid.UUID, counted decimal.Decimal) (*RegisterSummary, error) {
	if err := requireOperator(operatorID); err != nil {
		return nil, err
	}
	if counted.IsNegative() {
		return nil, poserr.Validation("closing amount must not be negative")
	}
	if !money.IsExactCents(counted) {
		return nil, poserr.Validation("closing amount must have at most two decimals")
	}

	reg, err := h.store.CurrentRegister(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.NotFound("no open cash register")
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load register")
	}

	open, err := h.store.CountOpenOrders(ctx, reg.ID)
	if err != nil {
		return nil, poserr.Internal(err, "failed to count open orders")
	}
	if open > 0 {
		return nil, poserr.Conflict("%d open orders must be paid or canceled before closing", open)
	}

	summary, err := h.summarize(ctx, reg)
	if err != nil {
		return nil, err
	}

	at := h.now()
	if err := h.store.CloseRegister(ctx, reg.ID, counted, operatorID, at); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, poserr.Conflict("register was closed or received an order meanwhile")
		}
		return nil, poserr.Internal(err, "failed to close register")
	}

	if sh, err := h.store.CurrentShift(ctx, operatorID); err == nil {
		if err := h.store.CloseShift(ctx, sh.ID, operatorID, nil, at); err != nil && !errors.Is(err, store.ErrConditionFailed) {
			log.WithError(err).WithField("shift_id", sh.ID).Warn("failed to close shift with register")
		}
	}

	reg.Status = models.RegisterClosed
	reg.ClosingAmount = &counted
	reg.ClosedAt = &at
	reg.ClosedBy = &operatorID
	summary.Register = *reg
	diff := counted.Sub(summary.Expected)
	summary.Counted = &counted
	summary.Difference = &diff

	log.WithFields(log.Fields{
		"register_id": reg.ID,
		"operator_id": operatorID,
		"expected":    money.String(summary.Expected),
		"counted":     money.String(counted),
		"difference":  money.String(diff),
	}).Info("cash register closed")
	return summary, nil
}

// CurrentRegister returns the OPEN register with its running summary.
func (h *CashHandler) CurrentRegister(ctx context.Context) (*RegisterSummary, error) {
	reg, err := h.store.CurrentRegister(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.NotFound("no open cash register")
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load register")
	}
	return h.summarize(ctx, reg)
}

func (h *CashHandler) summarize(ctx context.Context, reg *models.CashRegister) (*RegisterSummary, error) {
	methods, err := h.store.PaymentMethods(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load payment methods")
	}
	isCash := map[string]bool{}
	for _, m := range methods {
		isCash[m.Code] = m.IsCash
	}

	payments, err := h.store.RegisterPayments(ctx, reg.ID)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load payments")
	}
	movements, err := h.store.CashMovements(ctx, reg.ID)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load cash movements")
	}

	s := &RegisterSummary{
		Register:         *reg,
		OpeningAmount:    reg.OpeningAmount,
		CashPayments:     decimal.Zero,
		Supplies:         decimal.Zero,
		Withdrawals:      decimal.Zero,
		PaymentsByMethod: map[string]decimal.Decimal{},
	}
	for _, p := range payments {
		s.PaymentsByMethod[p.Method] = s.PaymentsByMethod[p.Method].Add(p.Amount)
		if isCash[p.Method] {
			s.CashPayments = s.CashPayments.Add(p.Amount)
		}
	}
	for _, m := range movements {
		switch m.Type {
		case models.CashSupply:
			s.Supplies = s.Supplies.Add(m.Amount)
		case models.CashWithdraw:
			s.Withdrawals = s.Withdrawals.Add(m.Amount)
		}
	}
	s.Expected = money.Round(s.OpeningAmount.Add(s.CashPayments).Add(s.Supplies).Sub(s.Withdrawals))
	return s, nil
}

func (h *CashHandler) RecordMovement(ctx context.Context, operatorID uuid.UUID, kind models.CashMovementType, amount decimal.Decimal, reason string) (*models.CashMovement, error) {
	if err := requireOperator(operatorID); err != nil {
		return nil, err
	}
	if kind != models.CashSupply && kind != models.CashWithdraw {
		return nil, poserr.Validation("invalid movement type %q", kind)
	}
	if !amount.IsPositive() || !money.IsExactCents(amount) {
		return nil, poserr.Validation("amount must be a positive value in cents")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, poserr.Validation("reason is required")
	}

	reg, err := h.store.CurrentRegister(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.RegisterClosed()
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load register")
	}

	m := &models.CashMovement{
		ID:             uuid.New(),
		CashRegisterID: reg.ID,
		Type:           kind,
		Amount:         amount,
		Reason:         reason,
		CreatedBy:      operatorID,
		CreatedAt:      h.now(),
	}
	if sh, err := h.store.CurrentShift(ctx, operatorID); err == nil {
		m.ShiftID = &sh.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, poserr.Internal(err, "failed to load shift")
	}

	if err := h.store.CreateCashMovement(ctx, m); err != nil {
		return nil, poserr.Internal(err, "failed to record cash movement")
	}

	log.WithFields(log.Fields{
		"register_id": reg.ID,
		"operator_id": operatorID,
		"type":        kind,
		"amount":      money.String(amount),
	}).Info("cash movement recorded")
	return m, nil
}

func (h *CashHandler) OpenShift(ctx context.Context, operatorID uuid.UUID, note *string) (*models.Shift, error) {
	if err := requireOperator(operatorID); err != nil {
		return nil, err
	}

	if _, err := h.store.CurrentShift(ctx, operatorID); err == nil {
		return nil, poserr.Conflict("operator already has an open shift")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, poserr.Internal(err, "failed to check open shift")
	}

	sh := &models.Shift{
		ID:       uuid.New(),
		OpenedBy: operatorID,
		OpenedAt: h.now(),
		Status:   models.ShiftOpen,
		NoteOpen: trimNote(note),
	}
	if reg, err := h.store.CurrentRegister(ctx); err == nil {
		sh.CashRegisterID = &reg.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, poserr.Internal(err, "failed to load register")
	}

	if err := h.store.CreateShift(ctx, sh); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, poserr.Conflict("operator already has an open shift")
		}
		return nil, poserr.Internal(err, "failed to open shift")
	}

	log.WithFields(log.Fields{"shift_id": sh.ID, "operator_id": operatorID}).Info("shift opened")
	return sh, nil
}

func (h *CashHandler) CloseShift(ctx context.Context, operatorID uuid.UUID, note *string) (*models.Shift, error) {
	if err := requireOperator(operatorID); err != nil {
		return nil, err
	}

	sh, err := h.store.CurrentShift(ctx, operatorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.NotFound("operator has no open shift")
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load shift")
	}

	at := h.now()
	note = trimNote(note)
	if err := h.store.CloseShift(ctx, sh.ID, operatorID, note, at); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, poserr.NotFound("operator has no open shift")
		}
		return nil, poserr.Internal(err, "failed to close shift")
	}

	sh.Status = models.ShiftClosed
	sh.ClosedAt = &at
	sh.ClosedBy = &operatorID
	sh.NoteClose = note
	log.WithFields(log.Fields{"shift_id": sh.ID, "operator_id": operatorID}).Info("shift closed")
	return sh, nil
}

func (h *CashHandler) CurrentShift(ctx context.Context, operatorID uuid.UUID) (*models.Shift, error) {
	if err := requireOperator(operatorID); err != nil {
		return nil, err
	}
	sh, err := h.store.CurrentShift(ctx, operatorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.NotFound("operator has no open shift")
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load shift")
	}
	return sh, nil
}

func trimNote(note *string) *string {
	if note == nil {
		return nil
	}
	n := strings.TrimSpace(*note)
	if n == "" {
		return nil
	}
	return &n
}
