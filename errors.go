package cexkit

import "errors"

// The shared error taxonomy. Adapters map exchange-native codes/messages
// onto these sentinels; callers match with errors.Is.
var (
	ErrExchange             = errors.New("exchange error")
	ErrBadRequest           = errors.New("bad request")
	ErrAuthentication       = errors.New("authentication failed")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrInvalidNonce         = errors.New("invalid nonce")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrRequestTimeout       = errors.New("request timeout")
	ErrDDoSProtection       = errors.New("rate limit exceeded")
	ErrExchangeNotAvailable = errors.New("exchange not available")
	ErrNotSupported         = errors.New("not supported")
)

// Error carries the exchange id and the raw response body alongside the
// taxonomy sentinel, so a diagnosis never loses the original payload.
type Error struct {
	Exchange string
	Body     string
	kind     error
}

func NewError(kind error, exchange, body string) *Error {
	if kind == nil {
		kind = ErrExchange
	}
	return &Error{Exchange: exchange, Body: body, kind: kind}
}

func (e *Error) Error() string {
	s := e.Exchange + ": " + e.kind.Error()
	if e.Body != "" {
		s += ": " + e.Body
	}
	return s
}

func (e *Error) Unwrap() error { return e.kind }
