package chat

import "errors"

// Error kinds reported by Context operations and request failures. Request
// failures wrap one of these sentinels with detail, so callers can match the
// kind with errors.Is while still seeing the underlying cause.
var (
	// ErrBusy is returned by SendAsync and Send when a request is already in
	// flight; the prior request's state is left untouched.
	ErrBusy = errors.New("chat: request already in flight")

	// ErrClosed is returned when sending on a Context after Close.
	ErrClosed = errors.New("chat: context closed")

	// ErrOutOfRange is returned by HistoryAt for an invalid index.
	ErrOutOfRange = errors.New("chat: history index out of range")

	// ErrConnection marks a failure to reach the chat server.
	ErrConnection = errors.New("chat: connection failed")

	// ErrSend marks a failure to write the request to the server.
	ErrSend = errors.New("chat: send failed")

	// ErrRequestBuild marks a failure to serialize the request payload.
	ErrRequestBuild = errors.New("chat: request build failed")
)
