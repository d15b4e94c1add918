package common

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kind values are themselves errors, so callers can
// match any wrapped *Error with errors.Is(err, common.NotFound).
type Kind uint8

const (
	Unknown Kind = iota
	DuplicateName
	NotFound
	UnknownMetadataKey
	SyncDisabled
	StorageFailure
	TransportFailure
	RemoteRejected
)

var kindText = map[Kind]string{
	Unknown:            "unknown error",
	DuplicateName:      "duplicate snippet name",
	NotFound:           "not found",
	UnknownMetadataKey: "unknown metadata key",
	SyncDisabled:       "sync is disabled",
	StorageFailure:     "storage failure",
	TransportFailure:   "transport failure",
	RemoteRejected:     "rejected by remote peer",
}

func (k Kind) Error() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", uint8(k))
}

// Error is the tagged error carried across layer boundaries. Op names the
// operation that was being attempted; Err is the underlying cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// E builds an *Error. A nil err yields an error whose message is the kind text.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e, so that errors.Is works with the
// bare Kind sentinels.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
