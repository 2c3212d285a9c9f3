package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMInteraction is the audit record of one generation call.
type LLMInteraction struct {
	RequestID        uuid.UUID `json:"request_id"`
	SessionID        string    `json:"session_id,omitempty"`
	Intent           string    `json:"intent"`
	Destination      string    `json:"destination"`
	PromptHash       string    `json:"prompt_hash"`
	Prompt           string    `json:"prompt,omitempty"`
	ResponseText     string    `json:"response,omitempty"`
	ModelName        string    `json:"model_name"`
	Provider         string    `json:"provider"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	LatencyMs        int64     `json:"latency_ms"`
	Outcome          string    `json:"outcome"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CostEstimateUSD  float64   `json:"cost_estimate_usd"`
	Timestamp        time.Time `json:"timestamp"`
}
