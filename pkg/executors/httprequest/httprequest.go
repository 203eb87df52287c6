// Package httprequest implements the "http_request" node kind: a real
// net/http call whose URL, headers, and body come from the node's
// already-resolved input or its static config (the method comes from
// config only), with a retry-on-5xx loop and
// JSON-body sniffing. There is no template rendering step here: the
// mapping engine has already substituted every reference before
// Execute ever runs.
package httprequest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Executor implements protocol.Executor for the "http_request" kind.
type Executor struct {
	client *http.Client
}

func New() *Executor {
	return &Executor{client: &http.Client{}}
}

// requestConfig is read from the node's static Config
// (method/headers/retries) merged with its resolved input (url/body
// override config when present).
type requestConfig struct {
	url     string
	method  string
	headers map[string]string
	body    string
	retries int
	delayMS int
}

func (e *Executor) Execute(ctx context.Context, input map[string]any, cfg map[string]any) (any, error) {
	rc, err := buildConfig(input, cfg)
	if err != nil {
		return nil, err
	}

	var lastErr error

	made := 0

	for attempt := 1; attempt <= rc.retries; attempt++ {
		made = attempt

		if attempt > 1 {
			select {
			case <-time.After(time.Duration(rc.delayMS) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := e.performRequest(ctx, rc)
		if err == nil {
			return result, nil
		}

		lastErr = err

		var herr *HTTPError
		if errors.As(err, &herr) && herr.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("httprequest: request failed after %d attempt(s): %w", made, lastErr)
}

// HTTPError is returned for any response with status 400 or above, status code attached
// so callers can distinguish a 4xx (don't retry) from a 5xx (retry).
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

func buildConfig(input, cfg map[string]any) (*requestConfig, error) {
	rc := &requestConfig{method: "GET", headers: map[string]string{}, retries: 1}

	if m, ok := cfg["method"].(string); ok && m != "" {
		rc.method = strings.ToUpper(m)
	}

	if h, ok := cfg["headers"].(map[string]any); ok {
		for k, v := range h {
			if s, ok := v.(string); ok {
				rc.headers[k] = s
			}
		}
	}

	if r, ok := cfg["retries"].(map[string]any); ok {
		if a, ok := r["attempts"].(float64); ok {
			rc.retries = int(a)
		}

		if d, ok := r["delay"].(float64); ok {
			rc.delayMS = int(d)
		}
	}

	if rc.retries < 1 {
		rc.retries = 1
	}

	url, _ := input["url"].(string)
	if url == "" {
		url, _ = cfg["url"].(string)
	}

	if url == "" {
		return nil, fmt.Errorf("httprequest: missing required field %q", "url")
	}

	rc.url = url

	if b, ok := input["body"].(string); ok {
		rc.body = b
	} else if b, ok := cfg["body"].(string); ok {
		rc.body = b
	}

	if h, ok := input["headers"].(map[string]any); ok {
		for k, v := range h {
			if s, ok := v.(string); ok {
				rc.headers[k] = s
			}
		}
	}

	return rc, nil
}

func (e *Executor) performRequest(ctx context.Context, rc *requestConfig) (map[string]any, error) {
	var reqBody io.Reader
	if rc.body != "" {
		reqBody = bytes.NewReader([]byte(rc.body))
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, rc.url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("httprequest: building request: %w", err)
	}

	for k, v := range rc.headers {
		req.Header.Set(k, v)
	}

	if rc.body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httprequest: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httprequest: reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"headers":     resp.Header,
		"body":        string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}

	return result, nil
}
