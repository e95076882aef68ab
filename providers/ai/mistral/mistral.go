package mistral

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/observability"
)

const (
	// ProviderName is recorded as llm.provider on request spans.
	ProviderName = "mistral"

	// DefaultBaseURL is the public Mistral API, used when MISTRAL_BASE_URL is unset.
	DefaultBaseURL = "https://api.mistral.ai/v1"

	// DefaultModel is sent when neither the request nor WithModel names one.
	DefaultModel = "mistral-small-2506"

	chatCompletionsEndpoint = "/chat/completions"
)

// ErrMissingAPIKey is returned by SendMessage when no API key is configured.
var ErrMissingAPIKey = errors.New("jarvis: mistral API key is not set")

// MistralProvider implements ai.Provider for the Mistral chat completions API
// and any service exposing the same contract.
type MistralProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ ai.Provider = (*MistralProvider)(nil)

// NewMistralProvider creates a provider configured from MISTRAL_API_KEY and
// MISTRAL_BASE_URL, falling back to the public endpoint.
func NewMistralProvider() *MistralProvider {
	baseURL := os.Getenv("MISTRAL_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &MistralProvider{
		apiKey:  os.Getenv("MISTRAL_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   DefaultModel,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the bearer token sent with every request, overriding
// MISTRAL_API_KEY. An empty key makes SendMessage fail with
// [ErrMissingAPIKey] before any request is made.
func (p *MistralProvider) WithAPIKey(apiKey string) *MistralProvider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL points the provider at another chat-completions service,
// overriding MISTRAL_BASE_URL. The URL should include the version prefix
// (for example "https://api.mistral.ai/v1"). Trailing slashes are dropped.
func (p *MistralProvider) WithBaseURL(baseURL string) *MistralProvider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithHttpClient replaces the HTTP client used for requests.
// The default client has no timeout of its own. Per-request deadlines come
// from the context, which the timeout middleware sets.
func (p *MistralProvider) WithHttpClient(httpClient *http.Client) *MistralProvider {
	p.client = httpClient
	return p
}

// WithModel sets the model used when a request does not name one.
// Requests that set ChatRequest.Model keep their own value.
func (p *MistralProvider) WithModel(model string) *MistralProvider {
	p.model = model
	return p
}

// SendMessage posts request to {base}/chat/completions and converts the first
// choice into an ai.ChatResponse.
//
// Non-2xx answers return *ai.StatusError with the response body. A body that
// is not a well-formed completion returns *ai.ProtocolError with the raw bytes
// (for example no choices or a tool call without an id). When ctx carries a
// span, the provider name and endpoint are recorded on it.
func (p *MistralProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if request.Model == "" {
		request.Model = p.model
	}

	endpoint := p.baseURL + chatCompletionsEndpoint
	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, ProviderName),
			observability.String(observability.AttrLLMEndpoint, endpoint),
		)
	}

	resp, raw, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, endpoint, p.apiKey, requestToChatCompletion(request))
	if err != nil {
		var decodeErr *utils.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, &ai.ProtocolError{Reason: decodeErr.Err.Error(), Raw: decodeErr.Raw}
		}
		return nil, fmt.Errorf("mistral: %w", err)
	}

	return responseToGeneric(*resp, raw)
}
