package model

// ChatRequest is an inbound chat message.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Provider       string `json:"provider,omitempty"`
}

// ChatResponse is the reply to a ChatRequest.
type ChatResponse struct {
	Message          string      `json:"message"`
	ConversationID   string      `json:"conversation_id"`
	MessageID        uint64      `json:"message_id"`
	Investors        []Investor  `json:"investors"`
	TotalInvestors   int64       `json:"total_investors"`
	SectorsDiscussed []string    `json:"sectors_discussed"`
	Pagination       *Pagination `json:"pagination,omitempty"`
	Provider         string      `json:"provider,omitempty"`
	ModelUsed        string      `json:"model_used,omitempty"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	// ErrorKind is set when the reply is the fallback apology.
	ErrorKind string `json:"error_kind,omitempty"`
}

// Pagination describes which page of a conversation's investors is shown.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	HasMore    bool  `json:"has_more"`
}

// ProvidersResponse lists provider names per category.
type ProvidersResponse struct {
	LLMProviders           []string `json:"llm_providers"`
	ConfiguredLLMProviders []string `json:"configured_llm_providers"`
	FallbackOrder          []string `json:"fallback_order"`
	CoolingDown            []string `json:"cooling_down"`
	SearchProviders        []string `json:"search_providers"`
	SearchReady            bool     `json:"search_ready"`
	ScraperProviders       []string `json:"scraper_providers"`
	ScraperReady           bool     `json:"scraper_ready"`
}
