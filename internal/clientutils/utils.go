// Package clientutils provides the shared JSON POST plumbing for talking
// to the completion endpoint.
package clientutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// JSONRequestConfig holds configuration for JSON requests.
type JSONRequestConfig struct {
	URL     string
	Headers map[string]string
	Body    any
}

// StatusError reports a non-success HTTP status together with the raw
// response body, so callers can surface the service's own error message.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, string(e.Body))
}

// DecodeError reports a success-status response whose body could not be
// decoded as the expected JSON shape.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to unmarshal response: %s", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DoJSON performs a JSON POST request and unmarshals the response. The
// error is a *StatusError for non-2xx responses, a *DecodeError for
// undecodable success bodies, and the transport error otherwise.
func DoJSON[T any](ctx context.Context, client *http.Client, config JSONRequestConfig) (*T, error) {
	reqBody, err := json.Marshal(config.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", config.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Status: resp.StatusCode, Body: respBody}
	}

	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &DecodeError{Err: err, Body: respBody}
	}

	return &result, nil
}
