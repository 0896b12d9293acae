package transport

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestSSEStreamsDataEvents(t *testing.T) {
	poster := newTestPoster(t, func(r chi.Router) {
		r.Post("/chat", func(w http.ResponseWriter, req *http.Request) {
			if accept := req.Header.Get("Accept"); accept != "text/event-stream" {
				t.Errorf("unexpected Accept header: %q", accept)
			}
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for _, delta := range []string{"Hel", "lo, ", "world"} {
				_, _ = w.Write([]byte("data: {\"delta\":\"" + delta + "\"}\n\n"))
				flusher.Flush()
			}
			_, _ = w.Write([]byte("data: [DONE]\n\n"))
		})
	})

	var tokens []string
	if err := NewSSE(poster).Stream(context.Background(), Request{}, collect(&tokens)); err != nil {
		t.Fatalf("Stream err: %v", err)
	}

	if strings.Join(tokens, "") != "Hello, world" {
		t.Fatalf("tokens do not accumulate: %v", tokens)
	}
}

func TestSSEIgnoresCommentsAndOtherFields(t *testing.T) {
	poster := newTestPoster(t, func(r chi.Router) {
		r.Post("/chat", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte(": keepalive\nevent: message\nid: 1\ndata: {\"delta\":\"only this\"}\n\ndata: [DONE]\n\n"))
		})
	})

	var tokens []string
	if err := NewSSE(poster).Stream(context.Background(), Request{}, collect(&tokens)); err != nil {
		t.Fatalf("Stream err: %v", err)
	}

	if len(tokens) != 1 || tokens[0] != "only this" {
		t.Fatalf("unexpected tokens: %#v", tokens)
	}
}

func TestSSERawDataLinesPassThrough(t *testing.T) {
	poster := newTestPoster(t, func(r chi.Router) {
		r.Post("/chat", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte("data: plain words\n\n"))
		})
	})

	var tokens []string
	if err := NewSSE(poster).Stream(context.Background(), Request{}, collect(&tokens)); err != nil {
		t.Fatalf("Stream err: %v", err)
	}

	if len(tokens) != 1 || tokens[0] != "plain words" {
		t.Fatalf("unexpected tokens: %#v", tokens)
	}
}

func TestSSERejectsNonEventStream(t *testing.T) {
	poster := newTestPoster(t, func(r chi.Router) {
		r.Post("/chat", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message": {"content": "not a stream"}}`))
		})
	})

	var tokens []string
	err := NewSSE(poster).Stream(context.Background(), Request{}, collect(&tokens))
	if err == nil {
		t.Fatal("expected error for non event-stream response")
	}
	if Terminal(err) {
		t.Fatalf("content-type mismatch must fall through, not terminate: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("no tokens expected, got %#v", tokens)
	}
}
