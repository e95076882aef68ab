package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/jarvis/internal/jsonschema"
	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/observability"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *MistralProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewMistralProvider().WithAPIKey("test-key").WithBaseURL(server.URL + "/")
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestNewMistralProvider_FromEnv(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "env-key")
	t.Setenv("MISTRAL_BASE_URL", "")

	p := NewMistralProvider()
	if p.apiKey != "env-key" {
		t.Errorf("apiKey = %q, want env-key", p.apiKey)
	}
	if p.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", p.baseURL, DefaultBaseURL)
	}
	if p.model != DefaultModel {
		t.Errorf("model = %q, want %q", p.model, DefaultModel)
	}
}

func TestSendMessage_MissingAPIKey(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "")
	_, err := NewMistralProvider().SendMessage(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

// TestSendMessage_FirstPhaseRequest verifies the wire body of a request carrying tools.
func TestSendMessage_FirstPhaseRequest(t *testing.T) {
	var body map[string]any
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		writeJSON(w, `{"id":"r1","model":"mistral-small-2506","choices":[{"index":0,"message":{"role":"assistant","content":"Hello, sir."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`)
	})

	temp := 1.4
	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{ai.NewSystemMessage("be brief"), ai.NewUserMessage("hi")},
		Tools: []ai.ToolDescription{{
			Name:        "open_app",
			Description: "Open an application",
			Parameters:  jsonschema.GenerateJSONSchema[struct {
				AppName string `json:"app_name"`
			}](),
		}},
		ToolChoice:       ai.ToolChoiceAuto,
		GenerationConfig: &ai.GenerationConfig{Temperature: &temp},
	})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}

	if resp.Content != "Hello, sir." || resp.HasToolCalls() {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 13 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	if body["model"] != DefaultModel {
		t.Errorf("model = %v, want default model", body["model"])
	}
	if body["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v, want auto", body["tool_choice"])
	}
	if body["temperature"] != 1.4 {
		t.Errorf("temperature = %v, want 1.4", body["temperature"])
	}
	tools, _ := body["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("tools = %v", body["tools"])
	}
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	if fn["name"] != "open_app" {
		t.Errorf("function name = %v", fn["name"])
	}
}

// TestSendMessage_FinalPhaseRequest verifies tools and tool_choice are omitted
// and tool messages keep their call id.
func TestSendMessage_FinalPhaseRequest(t *testing.T) {
	var raw []byte
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		writeJSON(w, `{"choices":[{"message":{"role":"assistant","content":"Done."}}]}`)
	})

	_, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Model: "custom-model",
		Messages: []ai.Message{
			ai.NewUserMessage("open calc"),
			{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "c1", Function: ai.ToolCallFunction{Name: "open_app", Arguments: `{"app_name":"calc"}`}}}},
			ai.NewToolMessage("c1", "open_app", "Application calc opened."),
		},
	})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}

	body := string(raw)
	for _, unwanted := range []string{`"tools"`, `"tool_choice"`, `"temperature"`} {
		if strings.Contains(body, unwanted) {
			t.Errorf("final request should not contain %s: %s", unwanted, body)
		}
	}
	for _, wanted := range []string{`"model":"custom-model"`, `"tool_call_id":"c1"`, `"type":"function"`} {
		if !strings.Contains(body, wanted) {
			t.Errorf("request missing %s: %s", wanted, body)
		}
	}
}

func TestSendMessage_ToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"choices":[{"message":{"role":"assistant","content":null,"tool_calls":[
			{"id":"a1","type":"function","function":{"name":"set_volume","arguments":"{\"level\":40}"}},
			{"id":"a2","function":{"name":"web_search","arguments":"{\"query\":\"weather London\"}"}}
		]},"finish_reason":"tool_calls"}]}`)
	})

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{Messages: []ai.Message{ai.NewUserMessage("x")}})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("ToolCalls = %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].ID != "a1" || resp.ToolCalls[1].Function.Name != "web_search" {
		t.Errorf("tool calls out of order: %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[1].Type != ai.ToolCallType {
		t.Errorf("missing type should default to function, got %q", resp.ToolCalls[1].Type)
	}
	if resp.Content != "" {
		t.Errorf("null content should decode to empty string, got %q", resp.Content)
	}
	if resp.FinishReason != "tool_calls" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
}

func TestSendMessage_ChunkedContent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"Rain "},{"type":"reference","reference_ids":[1]},{"type":"text","text":"later."}]}}]}`)
	})

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}
	if resp.Content != "Rain later." {
		t.Errorf("Content = %q, want %q", resp.Content, "Rain later.")
	}
}

// TestSendMessage_ProtocolErrors verifies malformed bodies surface as protocol errors with the raw body.
func TestSendMessage_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"object":"error","message":"quota exceeded"}`},
		{"empty choices", `{"choices":[]}`},
		{"no message", `{"choices":[{"index":0}]}`},
		{"tool call without id", `{"choices":[{"message":{"tool_calls":[{"function":{"name":"open_app","arguments":"{}"}}]}}]}`},
		{"tool call without name", `{"choices":[{"message":{"tool_calls":[{"id":"x","function":{"arguments":"{}"}}]}}]}`},
		{"content of wrong type", `{"choices":[{"message":{"content":42}}]}`},
		{"not JSON", `<html>gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.body)
			})

			_, err := p.SendMessage(context.Background(), ai.ChatRequest{})
			if !errors.Is(err, ai.ErrCompletionProtocol) {
				t.Fatalf("err = %v, want ErrCompletionProtocol", err)
			}
			var pe *ai.ProtocolError
			if !errors.As(err, &pe) {
				t.Fatalf("err is not *ai.ProtocolError: %T", err)
			}
			if string(pe.Raw) != tt.body {
				t.Errorf("Raw = %q, want %q", pe.Raw, tt.body)
			}
		})
	}
}

func TestSendMessage_StatusError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"message":"rate limited"}`)
	})

	_, err := p.SendMessage(context.Background(), ai.ChatRequest{})
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if errors.Is(err, ai.ErrCompletionProtocol) {
		t.Error("HTTP status failures must not be reported as protocol errors")
	}
}

func TestSendMessage_ContextCancelled(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.SendMessage(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

type attrSpan struct {
	attrs map[string]any
}

func (s *attrSpan) End() {}
func (s *attrSpan) SetAttributes(attrs ...observability.Attribute) {
	for _, a := range attrs {
		s.attrs[a.Key] = a.Value
	}
}
func (s *attrSpan) SetStatus(observability.StatusCode, string)  {}
func (s *attrSpan) RecordError(error)                           {}
func (s *attrSpan) AddEvent(string, ...observability.Attribute) {}

// TestSendMessage_LabelsSpan verifies the provider name and endpoint are set
// on the span carried by the context.
func TestSendMessage_LabelsSpan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
	}))
	t.Cleanup(server.Close)
	p := NewMistralProvider().WithAPIKey("test-key").WithBaseURL(server.URL)

	span := &attrSpan{attrs: map[string]any{}}
	ctx := observability.ContextWithSpan(context.Background(), span)
	if _, err := p.SendMessage(ctx, ai.ChatRequest{Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if span.attrs[observability.AttrLLMProvider] != ProviderName {
		t.Errorf("llm.provider = %v", span.attrs[observability.AttrLLMProvider])
	}
	if span.attrs[observability.AttrLLMEndpoint] != server.URL+"/chat/completions" {
		t.Errorf("llm.endpoint = %v", span.attrs[observability.AttrLLMEndpoint])
	}
}
