package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient is the subset of *http.Client every outbound caller depends on.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var ErrEmptyURL = errors.New("empty url")

// StatusError is returned for any non-2xx upstream answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx: %d body=%s", e.Code, e.Body)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Header values applied to a request before it is sent.
type Header map[string]string

func GetJSON(ctx context.Context, c HTTPClient, url string, h Header, v any) error {
	return do(ctx, c, http.MethodGet, url, h, nil, v)
}

// PostJSON encodes body as JSON. v may be nil when the response is ignored.
func PostJSON(ctx context.Context, c HTTPClient, url string, h Header, body, v any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	return PostRaw(ctx, c, url, h, b, v)
}

// PostRaw sends an already encoded JSON payload, used when the caller signs the bytes.
func PostRaw(ctx context.Context, c HTTPClient, url string, h Header, body []byte, v any) error {
	return do(ctx, c, http.MethodPost, url, h, body, v)
}

func do(ctx context.Context, c HTTPClient, method, url string, h Header, body []byte, v any) error {
	if url == "" {
		return ErrEmptyURL
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, val := range h {
		req.Header.Set(k, val)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
