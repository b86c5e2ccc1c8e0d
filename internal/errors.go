package internal

import "errors"

// Every error returned by Client wraps exactly one of these.
var (
	ErrNetwork  = errors.New("network error")
	ErrProtocol = errors.New("protocol error")
	ErrSchema   = errors.New("schema error")
)
