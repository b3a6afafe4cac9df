package apperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-distinguishable class of a request failure. The
// HTTP layer maps kinds to status codes; handlers never parse messages.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindInternal        Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "admin privilege required"}
	ErrEmptyOrder      = &Error{Kind: KindValidation, Message: "order must contain at least one line"}
	ErrInvalidQuantity = &Error{Kind: KindValidation, Message: "line quantity must be at least 1"}
	ErrInvalidStatus   = &Error{Kind: KindValidation, Message: "invalid order status"}
	ErrOrderNotFound   = &Error{Kind: KindNotFound, Message: "order not found"}
)

func ProductNotFound(productID int64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("product %d not found", productID)}
}

// KindOf extracts the Kind from err, unwrapping as needed. Errors that
// carry no kind are treated as internal faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
