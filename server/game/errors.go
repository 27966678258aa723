package game

import (
	"errors"
	"fmt"
)

// Kind classifies every error leaving the game service so transports can
// translate it uniformly (HTTP status, chat message text).
type Kind int

const (
	Internal Kind = iota
	NotFound
	Forbidden
	NotAcceptable
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Forbidden:
		return "forbidden"
	case NotAcceptable:
		return "not acceptable"
	}
	return "internal"
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain; anything untagged is
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
