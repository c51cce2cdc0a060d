// Package shared holds value types passed between the generation gateway,
// the planner and the metrics store.
package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by one generation call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// Add returns the sum of two usages; the model of u wins unless empty.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	model := u.Model
	if model == "" {
		model = o.Model
	}
	return TokenUsage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
		Model:            model,
	}
}

// GenerationMeta is the operational record of a single planner operation.
type GenerationMeta struct {
	Operation string
	Usage     TokenUsage
	Latency   time.Duration
}
