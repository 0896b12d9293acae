package api

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// GetSession fetches the current session descriptor. Unauthenticated callers
// receive a *StatusError with a 4xx code.
func (c *Client) GetSession(ctx context.Context) (Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, "/session", nil, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// ListThreads returns the authenticated user's thread summaries.
func (c *Client) ListThreads(ctx context.Context) ([]ThreadSummary, error) {
	var envelope threadListEnvelope
	if err := c.do(ctx, http.MethodGet, "/chat_threads", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

// GetThread fetches one thread with its full message history.
func (c *Client) GetThread(ctx context.Context, id string) (ThreadDetail, error) {
	var detail ThreadDetail
	if err := c.do(ctx, http.MethodGet, "/chat_threads/"+url.PathEscape(id), nil, &detail); err != nil {
		return ThreadDetail{}, err
	}
	return detail, nil
}

// CreateThread creates a server-side thread and returns its descriptor.
func (c *Client) CreateThread(ctx context.Context, title string) (ThreadSummary, error) {
	var created ThreadSummary
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/chat_threads", body, &created); err != nil {
		return ThreadSummary{}, err
	}
	c.logger.Debug("created cloud thread", zap.String("id", string(created.ID)))
	return created, nil
}

// RenameThread updates a thread's title.
func (c *Client) RenameThread(ctx context.Context, id, title string) error {
	body := map[string]string{"title": title}
	return c.do(ctx, http.MethodPatch, "/chat_threads/"+url.PathEscape(id), body, nil)
}

// DeleteThread removes a thread server-side. The backend answers 204.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/chat_threads/"+url.PathEscape(id), nil, nil)
}

// AppendMessage stores one message on a server-side thread.
func (c *Client) AppendMessage(ctx context.Context, threadID, role, content string) error {
	body := map[string]string{"role": role, "content": content}
	return c.do(ctx, http.MethodPost, "/chat_threads/"+url.PathEscape(threadID)+"/messages", body, nil)
}
