package observability

// Semantic conventions for observability attributes.

// --- Completion service attributes ---

const (
	// AttrLLMProvider is the name of the completion provider (e.g. "mistral")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMToolChoice is the tool_choice sent with the request, if any
	AttrLLMToolChoice = "llm.tool_choice"

	// AttrLLMTokensPrompt is the number of prompt tokens
	AttrLLMTokensPrompt = "llm.tokens.prompt" // #nosec G101 -- not a credential

	// AttrLLMTokensCompletion is the number of completion tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- not a credential

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- not a credential
)

// --- Turn attributes ---

const (
	// AttrSessionID identifies the orchestrator session
	AttrSessionID = "session.id"

	// AttrTurnPhase is the completion phase ("initial" or "final")
	AttrTurnPhase = "turn.phase"

	// AttrTurnState is the orchestrator state
	AttrTurnState = "turn.state"

	// AttrTurnInput is the user text submitted for the turn
	AttrTurnInput = "turn.input"

	// AttrTurnToolCalls is the number of tool calls requested by the model
	AttrTurnToolCalls = "turn.tool_calls"

	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestToolsCount is the number of tools in the request
	AttrRequestToolsCount = "request.tools_count"
)

// --- Tool execution attributes ---

const (
	// AttrToolName is the name of the tool being executed
	AttrToolName = "tool.name"

	// AttrToolCallID is the identifier of the tool call being answered
	AttrToolCallID = "tool.call_id"

	// AttrToolInput is the raw tool arguments
	AttrToolInput = "tool.input"

	// AttrToolOutput is the tool output
	AttrToolOutput = "tool.output"

	// AttrToolDuration is the execution duration
	AttrToolDuration = "tool.duration"
)

// --- Web retrieval attributes ---

const (
	// AttrSearchQuery is the search query
	AttrSearchQuery = "search.query"

	// AttrSearchResults is the number of results returned by the provider
	AttrSearchResults = "search.results"

	// AttrFetchErrorKind is the classification of a failed page fetch
	AttrFetchErrorKind = "fetch.error_kind"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"

	// AttrHTTPRetryAttempt is the retry attempt number
	AttrHTTPRetryAttempt = "http.retry.attempt"
)

// --- Memory attributes ---

const (
	// AttrMemoryMessageRole is the role of the message being stored
	AttrMemoryMessageRole = "memory.message.role"

	// AttrMemoryTotalMessages is the total number of messages in memory
	AttrMemoryTotalMessages = "memory.total_messages"
)

// --- General attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	// SpanTurn is the span covering one Submit call
	SpanTurn = "orchestrator.turn"

	// SpanLLMRequest is the span name for completion requests
	SpanLLMRequest = "llm.request"

	// SpanToolExecution is the span name for tool executions
	SpanToolExecution = "tool.execution"

	// SpanWebSearch is the span name for a retrieval pipeline run
	SpanWebSearch = "websearch.search"
)

// --- Event names ---

const (
	// EventHTTPRequestStart marks the start of an HTTP request
	EventHTTPRequestStart = "http.request.start"

	// EventHTTPRequestEnd marks the end of an HTTP request
	EventHTTPRequestEnd = "http.request.end"

	// EventHTTPRetry marks a failed attempt that is about to be retried
	EventHTTPRetry = "http.retry"

	// EventToolExecutionEnd marks the end of a tool execution
	EventToolExecutionEnd = "tool.execution.end"

	// EventPageFetched marks a page fetch inside the retrieval pipeline
	EventPageFetched = "websearch.page_fetched"

	// EventMemoryAppend marks when a message is appended to memory
	EventMemoryAppend = "memory.append"

	// EventMemoryClear marks when memory is cleared
	EventMemoryClear = "memory.clear"
)
