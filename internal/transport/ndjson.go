package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnnova/learnnova-cli/pkg/streamio"
)

// NDJSON is the streaming-fetch tier: it reads the response body line by
// line, treating each line as a delta event. Servers that answer with a
// non-stream content type are handled in place by decoding the whole body as
// a single message.
type NDJSON struct {
	poster Poster
}

// NewNDJSON builds the streaming-fetch tier.
func NewNDJSON(poster Poster) *NDJSON {
	return &NDJSON{poster: poster}
}

func (t *NDJSON) Name() string { return "fetch" }

func (t *NDJSON) Stream(ctx context.Context, req Request, onToken func(delta string)) error {
	resp, err := t.poster.PostStream(ctx, chatPath, req, "application/x-ndjson, text/plain, application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ctype, "text") && !strings.Contains(ctype, "ndjson") {
		content, err := decodeMessageBody(resp.Body)
		if err != nil {
			return err
		}
		onToken(content)
		return nil
	}

	err = streamio.ScanLines(resp.Body, func(line string) error {
		if line == "" {
			return nil
		}
		onToken(decodeDelta(line))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("read chat stream: %w", err)
	}
	return nil
}
