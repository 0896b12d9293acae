package transport

import (
	"context"
)

// JSON is the non-streaming tier: one request, one JSON body, the whole
// completion delivered as a single token.
type JSON struct {
	poster Poster
}

// NewJSON builds the plain-JSON tier.
func NewJSON(poster Poster) *JSON {
	return &JSON{poster: poster}
}

func (t *JSON) Name() string { return "json" }

func (t *JSON) Stream(ctx context.Context, req Request, onToken func(delta string)) error {
	resp, err := t.poster.PostStream(ctx, chatPath, req, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	content, err := decodeMessageBody(resp.Body)
	if err != nil {
		return err
	}
	onToken(content)
	return nil
}
