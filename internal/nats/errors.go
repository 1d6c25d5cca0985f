package nats

import "errors"

// Sentinel errors for the nats package.
var (
	ErrNotConnected  = errors.New("NATS is not connected")
	ErrSourceStarted = errors.New("source already started")
)
