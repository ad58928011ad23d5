package safe

import (
	"errors"
	"fmt"
)

// Kind classifies a Safe operation failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBadAddress
	KindBadParams
	KindAlreadyExists
	KindNotDeployed
	KindRPC
)

func (k Kind) String() string {
	switch k {
	case KindBadAddress:
		return "bad_address"
	case KindBadParams:
		return "bad_params"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotDeployed:
		return "not_deployed"
	case KindRPC:
		return "rpc_error"
	default:
		return "unknown"
	}
}

// IsClientFault reports whether the kind is caused by caller input or state
// the caller asked for, as opposed to the chain being unavailable.
func (k Kind) IsClientFault() bool {
	return k != KindRPC && k != KindUnknown
}

// Error is returned by every Safe operation.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrBadAddress    = &Error{Kind: KindBadAddress}
	ErrBadParams     = &Error{Kind: KindBadParams}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrNotDeployed   = &Error{Kind: KindNotDeployed}
	ErrRPC           = &Error{Kind: KindRPC}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindAlreadyExists:
		return "Safe is already deployed"
	case KindNotDeployed:
		return "Safe is not deployed"
	case KindBadAddress:
		msg = "Invalid address"
	case KindBadParams:
		msg = "Bad parameters passed"
	case KindRPC:
		msg = "Rpc unavailable"
	default:
		msg = "Safe error"
	}
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", msg, e.Detail, e.Err)
	case e.Detail != "":
		return msg + ": " + e.Detail
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels (errors without detail and cause) by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func badAddress(field string, err error) error {
	return &Error{Kind: KindBadAddress, Detail: field, Err: err}
}

func badParams(field string, err error) error {
	return &Error{Kind: KindBadParams, Detail: field, Err: err}
}

func rpcError(op string, err error) error {
	return &Error{Kind: KindRPC, Detail: op, Err: err}
}
