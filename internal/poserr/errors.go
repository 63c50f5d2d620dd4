// Package poserr defines the error values returned by the POS services.
// Each error carries a Kind, used by the gateway to pick a status code, and a
// stable Code that clients can switch on.
package poserr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindConcurrentSettlement
	KindInsufficientStock
	KindAmountMismatch
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConcurrentSettlement:
		return "concurrent_settlement"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindAmountMismatch:
		return "amount_mismatch"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

const (
	CodeValidation           = "VALIDATION"
	CodeInvalidReference     = "INVALID_REFERENCE"
	CodeModifierConstraint   = "MODIFIER_CONSTRAINT"
	CodeInvalidTable         = "INVALID_TABLE"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeRegisterClosed       = "REGISTER_CLOSED"
	CodeShiftRequired        = "SHIFT_REQUIRED"
	CodeNotCancelable        = "NOT_CANCELABLE"
	CodeInvalidOrder         = "INVALID_ORDER"
	CodeAlreadyPaid          = "ALREADY_PAID"
	CodeConcurrentSettlement = "CONCURRENT_SETTLEMENT"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeAmountMismatch       = "AMOUNT_MISMATCH"
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeInternal             = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, CodeValidation, format, args...)
}

func InvalidReference(format string, args ...interface{}) *Error {
	return newError(KindValidation, CodeInvalidReference, format, args...)
}

func ModifierConstraint(group string, format string, args ...interface{}) *Error {
	return newError(KindValidation, CodeModifierConstraint, "modifier group %q: %s", group, fmt.Sprintf(format, args...))
}

func InvalidTable(format string, args ...interface{}) *Error {
	return newError(KindValidation, CodeInvalidTable, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, CodeNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, CodeConflict, format, args...)
}

func RegisterClosed() *Error {
	return newError(KindConflict, CodeRegisterClosed, "cash register is closed")
}

func ShiftRequired() *Error {
	return newError(KindConflict, CodeShiftRequired, "operator has no open shift")
}

func NotCancelable(format string, args ...interface{}) *Error {
	return newError(KindConflict, CodeNotCancelable, format, args...)
}

func InvalidOrder(format string, args ...interface{}) *Error {
	return newError(KindConflict, CodeInvalidOrder, format, args...)
}

func AlreadyPaid() *Error {
	return newError(KindConflict, CodeAlreadyPaid, "order already has payments")
}

func ConcurrentSettlement() *Error {
	return newError(KindConcurrentSettlement, CodeConcurrentSettlement, "order was settled or canceled by another request")
}

func InsufficientStock(product string) *Error {
	return newError(KindInsufficientStock, CodeInsufficientStock, "insufficient stock for %s", product)
}

func AmountMismatch(paid, total string) *Error {
	return newError(KindAmountMismatch, CodeAmountMismatch, "payments total %s does not match order total %s", paid, total)
}

func Unauthenticated() *Error {
	return newError(KindUnauthenticated, CodeUnauthenticated, "operator is not authenticated")
}

// Internal wraps an infrastructure failure behind an opaque message.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
