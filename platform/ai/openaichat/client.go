// Package openaichat provides a client for OpenAI-compatible chat-completions
// APIs with function-calling support. This is part of the platform layer and
// contains no business logic.
package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/genai"
)

// ErrRateLimited is returned when the API rejects a call with HTTP 429.
// Callers degrade to a canned reply instead of failing the turn.
var ErrRateLimited = errors.New("model service rate limited")

// Config for the chat-completions client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a chat-completions client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	return &Client{
		config: cfg,
		client: &http.Client{},
	}
}

// Message is a single transcript entry on the chat-completions wire.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a model-issued request to invoke a declared function.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Request is one completion call: a transcript plus optional tool declarations.
type Request struct {
	Messages   []Message
	Tools      []*genai.FunctionDeclaration
	ToolChoice string
}

// Response is the first choice of a completion.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

type toolDef struct {
	Type     string      `json:"type"`
	Function toolDefFunc `json:"function"`
}

type toolDefFunc struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  interface{} `json:"parameters,omitempty"`
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete performs one chat-completion round trip.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	payload := map[string]interface{}{
		"model":    c.config.Model,
		"messages": req.Messages,
	}

	if tools := convertTools(req.Tools); len(tools) > 0 {
		payload["tools"] = tools
		choice := req.ToolChoice
		if choice == "" {
			choice = "auto"
		}
		payload["tool_choice"] = choice
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return Response{}, ErrRateLimited
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Response{}, fmt.Errorf("failed to decode chat response: %v", err)
	}
	if result.Error != nil {
		return Response{}, fmt.Errorf("chat api error: %s", result.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return Response{}, fmt.Errorf("chat api error: status %d", resp.StatusCode)
	}
	if len(result.Choices) == 0 {
		return Response{}, fmt.Errorf("chat api error: empty choices")
	}

	choice := result.Choices[0].Message
	return Response{
		Content:   choice.Content,
		ToolCalls: choice.ToolCalls,
	}, nil
}

func convertTools(decls []*genai.FunctionDeclaration) []toolDef {
	var tools []toolDef
	for _, decl := range decls {
		if decl == nil || decl.Name == "" {
			continue
		}
		var params interface{}
		switch {
		case decl.ParametersJsonSchema != nil:
			params = decl.ParametersJsonSchema
		case decl.Parameters != nil:
			params = decl.Parameters
		}
		tools = append(tools, toolDef{
			Type: "function",
			Function: toolDefFunc{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}
