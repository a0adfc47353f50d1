package metrics

// TokenUsage reports the tokens spent on a narrative summary, as returned
// by the chat provider or estimated locally when the provider omits them.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// EstimateUsage counts the prompt parts and the completion with counter.
func EstimateUsage(counter interface{ Count(string) int }, completion string, prompt ...string) TokenUsage {
	u := TokenUsage{CompletionTokens: counter.Count(completion)}
	for _, p := range prompt {
		u.PromptTokens += counter.Count(p)
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}

// IsZero reports whether the provider sent no usage block.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}
