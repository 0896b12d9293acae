package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// UploadDocument sends a study document to the backend for extraction and
// summarization. The backend only needs the file under the "file" form field.
func (c *Client) UploadDocument(ctx context.Context, path string) (UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return UploadResult{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("finish upload form: %w", err)
	}

	ctx, cancel := contextWithUploadTimeout(ctx, c)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.attachSession(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("POST /upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, decodeStatusError(resp)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, fmt.Errorf("decode upload response: %w", err)
	}
	return result, nil
}

// Extraction plus summarization can take far longer than a plain API call,
// so uploads get triple the configured timeout.
func contextWithUploadTimeout(ctx context.Context, c *Client) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 3*c.timeout)
}

// GenerateQuiz asks the backend for a multiple-choice quiz over a summary.
// Size is one of QuizSizes; the backend falls back to a small quiz for
// anything it does not recognize.
func (c *Client) GenerateQuiz(ctx context.Context, summary, size string) (Quiz, error) {
	body := map[string]string{"summary": summary, "size": size}
	var quiz Quiz
	if err := c.do(ctx, http.MethodPost, "/quiz", body, &quiz); err != nil {
		return Quiz{}, err
	}
	return quiz, nil
}
