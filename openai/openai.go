// Package openai implements the completion client against the OpenAI
// chat-completions wire shape.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sketchwire/makereal"
	"github.com/sketchwire/makereal/internal/clientutils"
)

const (
	// DefaultBaseURL is the hosted completion endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds one call. The invoking context is itself
	// time-bounded, so a hung call must surface as a timeout rather than
	// hang indefinitely.
	DefaultTimeout = 60 * time.Second
)

// Client is a makereal.CompletionClient backed by the chat-completions
// endpoint.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// APIKey is the bearer credential. An empty key makes Send fail fast
	// with an unconfigured error before any network call.
	APIKey string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient defaults to a fresh http.Client.
	HTTPClient *http.Client
}

// NewClient creates a completion client.
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := options.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		timeout: timeout,
		client:  httpClient,
	}
}

// Send performs one completion call and returns the model's raw answer
// text. All failures are *makereal.PipelineError values. Send never
// retries.
func (c *Client) Send(ctx context.Context, req *makereal.GenerationRequest) (string, error) {
	if c.apiKey == "" {
		return "", makereal.NewUnconfiguredError("completion API key is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := convertToChatParams(req)
	completion, err := clientutils.DoJSON[chatCompletion](ctx, c.client, clientutils.JSONRequestConfig{
		URL:  fmt.Sprintf("%s/chat/completions", c.baseURL),
		Body: body,
		Headers: map[string]string{
			"Authorization": fmt.Sprintf("Bearer %s", c.apiKey),
		},
	})
	if err != nil {
		return "", mapTransportError(err)
	}

	if len(completion.Choices) == 0 {
		return "", makereal.NewProtocolViolationError("no choices in response", nil)
	}
	return completion.Choices[0].Message.Content, nil
}

func convertToChatParams(req *makereal.GenerationRequest) *chatCompletionParams {
	content := []contentPart{
		{Type: "image_url", ImageURL: &imageURL{URL: req.ImageDataURL, Detail: "high"}},
		{Type: "text", Text: req.TriggerText},
	}
	if req.PriorMarkup != nil {
		content = append(content, contentPart{Type: "text", Text: *req.PriorMarkup})
	}

	return &chatCompletionParams{
		Model:       req.Model,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemInstructions},
			{Role: "user", Content: content},
		},
	}
}

// mapTransportError converts the raw HTTP outcome into the pipeline error
// taxonomy.
func mapTransportError(err error) error {
	var statusErr *clientutils.StatusError
	if errors.As(err, &statusErr) {
		msg := serviceMessage(statusErr.Body)
		return makereal.NewServiceRejectedError(statusErr.Status, msg)
	}

	var decodeErr *clientutils.DecodeError
	if errors.As(err, &decodeErr) {
		return makereal.NewProtocolViolationError("response body is not valid JSON", decodeErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return makereal.NewTimeoutError(err)
	}
	return makereal.NewNetworkFailureError(err)
}

// serviceMessage extracts the human-readable message from an error body,
// falling back to the raw body when it does not parse.
func serviceMessage(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}
