package client

import (
	"context"

	"github.com/dmitrijs2005/snip/internal/wire"
)

// Client delivers one change set to a sync peer. since is the watermark the
// change set was extracted from. It returns the number of rows the peer
// accepted.
type Client interface {
	Push(ctx context.Context, since int64, payload *wire.Payload) (int, error)
}

// State is a step of a single sync attempt.
type State int

const (
	Idle State = iota
	Connecting
	Handshaking
	Sending
	AwaitingAck
	Committed
	Failed
)

var stateNames = [...]string{
	Idle:        "idle",
	Connecting:  "connecting",
	Handshaking: "handshaking",
	Sending:     "sending",
	AwaitingAck: "awaiting-ack",
	Committed:   "committed",
	Failed:      "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == Committed || s == Failed
}

// StateFunc observes state transitions. It must not block.
type StateFunc func(State)
