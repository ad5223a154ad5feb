package model

// StreamEventType names a server-sent event emitted by the chat stream.
type StreamEventType string

const (
	StreamStart          StreamEventType = "start"
	StreamStatus         StreamEventType = "status"
	StreamInvestorsFound StreamEventType = "investors_found"
	StreamPagination     StreamEventType = "pagination_info"
	StreamContentStart   StreamEventType = "content_start"
	StreamContent        StreamEventType = "content"
	StreamDone           StreamEventType = "done"
	StreamError          StreamEventType = "error"
)

// StreamEvent is one event of a chat stream. Data is JSON-encoded as-is.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data any             `json:"data,omitempty"`
}

// StatusEvent reports search progress.
type StatusEvent struct {
	Message string `json:"message"`
}

// StartEvent opens a stream.
type StartEvent struct {
	ConversationID string `json:"conversation_id"`
}

// InvestorsFoundEvent carries the current page of investors.
type InvestorsFoundEvent struct {
	Investors        []Investor `json:"investors"`
	Total            int64      `json:"total"`
	SectorsDiscussed []string   `json:"sectors_discussed"`
}

// ContentEvent carries one chunk of reply text.
type ContentEvent struct {
	Content string `json:"content"`
}

// ContentStartEvent names the provider about to stream.
type ContentStartEvent struct {
	Provider string `json:"provider"`
}

// DoneEvent closes a stream.
type DoneEvent struct {
	ConversationID   string `json:"conversation_id"`
	MessageID        uint64 `json:"message_id"`
	Provider         string `json:"provider,omitempty"`
	ModelUsed        string `json:"model_used,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	ErrorKind        string `json:"error_kind,omitempty"`
}

// ErrorEvent reports a failure to the client.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
