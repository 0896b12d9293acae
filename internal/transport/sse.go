package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnnova/learnnova-cli/pkg/streamio"
)

const sseDoneMarker = "[DONE]"

// SSE is the server-sent-events tier. It demands a real event-stream
// response; anything else is an error so the chain can fall through to the
// fetch tier against backends that do not speak SSE.
type SSE struct {
	poster Poster
}

// NewSSE builds the event-stream tier.
func NewSSE(poster Poster) *SSE {
	return &SSE{poster: poster}
}

func (t *SSE) Name() string { return "sse" }

func (t *SSE) Stream(ctx context.Context, req Request, onToken func(delta string)) error {
	resp, err := t.poster.PostStream(ctx, chatPath, req, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ctype, "text/event-stream") {
		return fmt.Errorf("sse: unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	err = streamio.ScanLines(resp.Body, func(line string) error {
		data, ok := streamio.SSEData(line)
		if !ok {
			return nil
		}
		if data == sseDoneMarker {
			return streamio.ErrStop
		}
		onToken(decodeDelta(data))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("read sse stream: %w", err)
	}
	return nil
}
