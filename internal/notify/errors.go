package notify

import "errors"

var (
	// ErrNoRecipient indicates a delivery without recipient address.
	ErrNoRecipient = errors.New("notify: recipient is required")
	// ErrNoSender indicates a delivery without sender address.
	ErrNoSender = errors.New("notify: sender is required")
	// ErrNoTransport indicates a Notifier without transport.
	ErrNoTransport = errors.New("notify: transport is required")
)
