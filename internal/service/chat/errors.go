package chat

import (
	"errors"
	"net/http"

	"github.com/learnnova/learnnova-cli/internal/api"
)

// Error slot tokens. The UI switches on these to choose between a sign-in
// prompt, a rate-limit notice and a generic failure message; anything else in
// the slot is a raw error message.
const (
	ErrorTokenAuth = "auth"
	ErrorTokenRate = "rate"
)

var (
	// ErrStreamInFlight rejects a send issued while another response stream
	// is still active.
	ErrStreamInFlight = errors.New("chat: a response stream is already in flight")
	// ErrThreadNotFound reports an operation against an unknown thread id.
	ErrThreadNotFound = errors.New("chat: thread not found")
	// ErrNoUserMessage reports a retry on a thread with no user message yet.
	ErrNoUserMessage = errors.New("chat: thread has no user message to retry")
	// ErrEmptyTitle rejects renaming a thread to a blank title.
	ErrEmptyTitle = errors.New("chat: thread title must not be empty")
)

// classifyError maps a send failure onto the error slot: auth and rate-limit
// statuses collapse to their fixed tokens, everything else keeps its message.
func classifyError(err error) string {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrorTokenAuth
		case http.StatusTooManyRequests:
			return ErrorTokenRate
		}
	}
	return err.Error()
}
