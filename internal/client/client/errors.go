package client

import "errors"

var (
	ErrNoAddress = errors.New("sync address is not configured")
	ErrNoToken   = errors.New("sync token is not configured")
	ErrBadCAFile = errors.New("no certificates found in CA file")
	ErrUnacked   = errors.New("peer closed the stream without an acknowledgement")
)
