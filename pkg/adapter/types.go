package adapter

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a normalized model reply.
type Response struct {
	Text    string `json:"text"`
	Adapter string `json:"adapter"`
	Model   string `json:"model"`
	Usage   *Usage `json:"usage,omitempty"`
}

// CallReport captures adapter call metadata.
type CallReport struct {
	Adapter      string `json:"adapter"`
	Model        string `json:"model"`
	Usage        Usage  `json:"usage"`
	Retries      int    `json:"retries"`
	FallbackUsed bool   `json:"fallback_used"`
	Error        string `json:"error,omitempty"`
	// Status is the provider's HTTP status for a failed call.
	Status       int    `json:"status,omitempty"`
}
