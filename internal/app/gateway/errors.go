// internal/app/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindConnectivity means no usable response arrived (transport error,
	// timeout, cancelled context).
	KindConnectivity Kind = iota + 1
	// KindServer means the backend answered with success:false.
	KindServer
	// KindMalformed means the response was not a valid envelope or lacked
	// the expected payload.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// MsgConnectivity is shown for every connectivity failure.
const MsgConnectivity = "Cannot reach the server. Please try again."

// Error is the failure half of every gateway result. Message is safe to
// show to the user as-is.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s failure: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s failure: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// MessageFor returns the user-visible message for err. Gateway errors carry
// their own message; anything else falls back to fallback.
func MessageFor(err error, fallback string) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return fallback
}

// IsKind reports whether err is a gateway error of kind k.
func IsKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}
