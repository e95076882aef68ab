package mistral

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/jarvis/internal/jsonschema"
	"github.com/leofalp/jarvis/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest is the /v1/chat/completions request body.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	RandomSeed  *int          `json:"random_seed,omitempty"`
	Tools       []chatTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"` // "auto", "none", "any", "required"
}

type chatMessage struct {
	Role       string         `json:"role"` // system, user, assistant, tool
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"` // For role=tool
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`   // For role=assistant
}

type chatTool struct {
	Type     string       `json:"type"` // "function"
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"` // "function"
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON string, parsed later with ParseStringAs
	} `json:"function"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                  `json:"index"`
	Message      *chatResponseMessage `json:"message"`
	FinishReason string               `json:"finish_reason"` // "stop", "length", "tool_calls", "model_length", "error"
}

type chatResponseMessage struct {
	Role      string          `json:"role"` // "assistant"
	Content   json.RawMessage `json:"content"`
	ToolCalls []chatToolCall  `json:"tool_calls,omitempty"`
}

// contentChunk is one element of an array-valued content field.
type contentChunk struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestToChatCompletion converts ai.ChatRequest to the Mistral wire format.
// Tools and tool_choice are sent only when the request carries tools.
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:    request.Model,
		Messages: make([]chatMessage, 0, len(request.Messages)),
	}

	for _, msg := range request.Messages {
		chatMsg := chatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		for _, tc := range msg.ToolCalls {
			toolCall := chatToolCall{ID: tc.ID, Type: tc.Type}
			if toolCall.Type == "" {
				toolCall.Type = ai.ToolCallType
			}
			toolCall.Function.Name = tc.Function.Name
			toolCall.Function.Arguments = tc.Function.Arguments
			chatMsg.ToolCalls = append(chatMsg.ToolCalls, toolCall)
		}
		req.Messages = append(req.Messages, chatMsg)
	}

	if cfg := request.GenerationConfig; cfg != nil {
		req.Temperature = cfg.Temperature
		req.TopP = cfg.TopP
		req.RandomSeed = cfg.RandomSeed
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			req.MaxTokens = &maxTokens
		}
	}

	if len(request.Tools) > 0 {
		for _, tl := range request.Tools {
			params := tl.Parameters
			if params == nil {
				params = &jsonschema.Schema{Type: "object"}
			}
			req.Tools = append(req.Tools, chatTool{
				Type: ai.ToolCallType,
				Function: chatFunction{
					Name:        tl.Name,
					Description: tl.Description,
					Parameters:  params,
				},
			})
		}
		req.ToolChoice = string(request.ToolChoice)
		if req.ToolChoice == "" {
			req.ToolChoice = string(ai.ToolChoiceAuto)
		}
	}

	return req
}

// responseToGeneric validates the first choice and converts it. Anything that
// is not a well-formed completion becomes an *ai.ProtocolError carrying raw.
func responseToGeneric(resp chatCompletionResponse, raw []byte) (*ai.ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, &ai.ProtocolError{Reason: "response has no choices", Raw: raw}
	}
	choice := resp.Choices[0]
	if choice.Message == nil {
		return nil, &ai.ProtocolError{Reason: "first choice has no message", Raw: raw}
	}

	content, err := decodeContent(choice.Message.Content)
	if err != nil {
		return nil, &ai.ProtocolError{Reason: err.Error(), Raw: raw}
	}

	out := &ai.ChatResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      content,
		FinishReason: choice.FinishReason,
	}

	for i, tc := range choice.Message.ToolCalls {
		if tc.ID == "" || tc.Function.Name == "" {
			return nil, &ai.ProtocolError{
				Reason: fmt.Sprintf("tool call %d lacks an id or a function name", i),
				Raw:    raw,
			}
		}
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:   tc.ID,
			Type: ai.ToolCallType,
			Function: ai.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return out, nil
}

// decodeContent accepts the content field as null, a string, or an array of
// text chunks.
func decodeContent(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var chunks []contentChunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return "", fmt.Errorf("message content is neither text nor chunks: %w", err)
	}
	var sb strings.Builder
	for _, c := range chunks {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}
