package domain

import (
	"errors"
	"fmt"
)

// ErrCodeUnableToOpenApp is reported when every resolution strategy was skipped or failed.
const ErrCodeUnableToOpenApp = "ROUTING_ERR_UNABLE_TO_OPEN_APP"

// ErrUnsupportedCodecVersion is returned when decoding an envelope written by an unknown codec version.
var ErrUnsupportedCodecVersion = errors.New("unsupported codec version")

// RoutingError is the single failure of a resolution attempt.
// It only carries a code so hosts can show a generic "couldn't open" message.
type RoutingError struct {
	Code string
}

func (e *RoutingError) Error() string {
	return "routing failed: " + e.Code
}

// IsRoutingFailure reports whether err is a *RoutingError.
func IsRoutingFailure(err error) bool {
	var re *RoutingError
	return errors.As(err, &re)
}

// MalformedHandlerError is returned when a handler payload cannot be parsed.
// Path locates the offending node, e.g. "links[1].links[0]"; it is empty for the root.
type MalformedHandlerError struct {
	Path   string
	Type   string
	Reason string
	Err    error
}

func (e *MalformedHandlerError) Error() string {
	where := "root"
	if e.Path != "" {
		where = e.Path
	}
	msg := fmt.Sprintf("malformed handler at %s", where)
	if e.Type != "" {
		msg += fmt.Sprintf(" (@type %q)", e.Type)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedHandlerError) Unwrap() error { return e.Err }
