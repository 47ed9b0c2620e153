// Package llm talks to the Anthropic Messages API to pick a tool for a query
// and to suggest fixes for failed log reads.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fleezesd/krs/pkg/log"
)

const (
	anthropicVersion = "2023-06-01"
	maxResponseBytes = 1 << 20

	selectSystemPrompt    = "You are a Kubernetes assistant. Decide the best function to call based on user queries."
	remediateSystemPrompt = "You are a Kubernetes assistant. Based on the provided error logs, suggest a step-by-step troubleshooting process."
)

// Selection is the model's choice for a query. Tool is empty when the model
// answered with text only.
type Selection struct {
	Tool      string
	Arguments map[string]any
	Text      string
}

type Client struct {
	http      *retryablehttp.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

func NewClient(opts *Options) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = retryLogger{}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:      rc,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	Tools     []tool    `json:"tools,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// SelectTool asks the model which of tools answers query.
func (c *Client) SelectTool(ctx context.Context, query string, tools []mcp.Tool) (*Selection, error) {
	req := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    selectSystemPrompt,
		Messages: []message{{
			Role:    "user",
			Content: fmt.Sprintf("User query: %s. Decide which function to call and what arguments are needed.", query),
		}},
	}
	for _, t := range tools {
		schema, err := inputSchema(t)
		if err != nil {
			return nil, fmt.Errorf("encode schema of %s: %w", t.Name, err)
		}
		req.Tools = append(req.Tools, tool{Name: t.Name, Description: t.Description, InputSchema: schema})
	}

	resp, err := c.messages(ctx, req)
	if err != nil {
		return nil, err
	}

	sel := &Selection{}
	for _, block := range resp.Content {
		switch block.Type {
		case "tool_use":
			if sel.Tool != "" {
				continue
			}
			sel.Tool = block.Name
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &sel.Arguments); err != nil {
					return nil, fmt.Errorf("decode arguments of %s: %w", block.Name, err)
				}
			}
		case "text":
			if sel.Text == "" {
				sel.Text = block.Text
			}
		}
	}
	log.Debugw("Model selected tool", "tool", sel.Tool, "args", sel.Arguments, "stopReason", resp.StopReason)
	return sel, nil
}

// Remediate asks for step-by-step troubleshooting of errText.
func (c *Client) Remediate(ctx context.Context, errText string) (string, error) {
	resp, err := c.messages(ctx, messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    remediateSystemPrompt,
		Messages: []message{{
			Role:    "user",
			Content: fmt.Sprintf("Error detected in Kubernetes pod logs: %s. Suggest a step-by-step troubleshooting process.", errText),
		}},
	})
	if err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("model returned no text")
}

// Ping checks the key with a one-token request.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.messages(ctx, messagesRequest{
		Model:     c.model,
		MaxTokens: 1,
		System:    "Test",
		Messages:  []message{{Role: "user", Content: "test"}},
	})
	return err
}

func (c *Client) messages(ctx context.Context, body messagesRequest) (*messagesResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%s: %s (status %d)", apiErr.Error.Type, apiErr.Error.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out messagesResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &out, nil
}

func inputSchema(t mcp.Tool) (json.RawMessage, error) {
	if len(t.RawInputSchema) > 0 {
		return t.RawInputSchema, nil
	}
	return json.Marshal(t.InputSchema)
}

// retryLogger routes retryablehttp logs into pkg/log.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) { log.Warnw(msg, keysAndValues...) }
func (retryLogger) Info(msg string, keysAndValues ...interface{})  { log.Debugw(msg, keysAndValues...) }
func (retryLogger) Debug(msg string, keysAndValues ...interface{}) { log.Debugw(msg, keysAndValues...) }
func (retryLogger) Warn(msg string, keysAndValues ...interface{})  { log.Warnw(msg, keysAndValues...) }
