package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/learnnova/learnnova-cli/internal/api"
)

// chatPath is the completion endpoint, resolved against the configured API
// base by the underlying client.
const chatPath = "/chat"

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat completion payload.
type Request struct {
	Messages []Message      `json:"messages"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Poster issues authenticated POSTs whose responses may be consumed
// incrementally. Implemented by api.Client.
type Poster interface {
	PostStream(ctx context.Context, path string, body any, accept string) (*http.Response, error)
}

// Streamer drives one chat completion attempt, delivering each content delta
// through onToken in arrival order.
type Streamer interface {
	Name() string
	Stream(ctx context.Context, req Request, onToken func(delta string)) error
}

// Mode selects the preferred transport tier.
type Mode string

const (
	ModeSSE   Mode = "sse"
	ModeFetch Mode = "fetch"
	ModeJSON  Mode = "json"
)

// ParseMode validates a configured mode string.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeSSE, ModeFetch, ModeJSON:
		return Mode(raw), nil
	case "":
		return ModeFetch, nil
	default:
		return "", fmt.Errorf("unknown chat stream mode %q (want sse, fetch or json)", raw)
	}
}

// Terminal reports whether err must end the whole send instead of falling
// through to the next tier: auth and rate-limit statuses, plus caller
// cancellation.
func Terminal(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return true
		}
	}
	return false
}

// Chain tries its tiers in order. A tier failure logs and falls through to
// the next tier unless it is Terminal; when every tier fails, only the last
// failure is surfaced.
type Chain struct {
	tiers  []Streamer
	logger *zap.Logger
}

// NewChain assembles a fallback chain. A nil logger falls back to a no-op
// one.
func NewChain(logger *zap.Logger, tiers ...Streamer) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{tiers: tiers, logger: logger}
}

// ForMode builds the fallback chain a configured mode implies: sse tries all
// three tiers, fetch skips sse, json never streams.
func ForMode(mode Mode, poster Poster, logger *zap.Logger) *Chain {
	switch mode {
	case ModeSSE:
		return NewChain(logger, NewSSE(poster), NewNDJSON(poster), NewJSON(poster))
	case ModeJSON:
		return NewChain(logger, NewJSON(poster))
	default:
		return NewChain(logger, NewNDJSON(poster), NewJSON(poster))
	}
}

// Names lists the tier order, for startup logging.
func (c *Chain) Names() []string {
	names := make([]string, len(c.tiers))
	for i, tier := range c.tiers {
		names[i] = tier.Name()
	}
	return names
}

// Stream runs the chain.
func (c *Chain) Stream(ctx context.Context, req Request, onToken func(delta string)) error {
	var lastErr error
	for _, tier := range c.tiers {
		err := tier.Stream(ctx, req, onToken)
		if err == nil {
			return nil
		}
		if Terminal(err) {
			return err
		}
		c.logger.Warn("chat transport tier failed",
			zap.String("tier", tier.Name()),
			zap.Error(err))
		lastErr = err
	}
	return lastErr
}

// decodeDelta interprets one stream line: a JSON object carrying a string
// delta yields the delta, anything else is emitted verbatim.
func decodeDelta(line string) string {
	var event struct {
		Delta *string `json:"delta"`
	}
	if err := json.Unmarshal([]byte(line), &event); err == nil && event.Delta != nil {
		return *event.Delta
	}
	return line
}

// decodeMessageBody reads a whole-body JSON response and returns
// message.content.
func decodeMessageBody(r io.Reader) (string, error) {
	var body struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return body.Message.Content, nil
}
