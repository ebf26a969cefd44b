package response_models

const (
	SeverityBlock   = "block"
	SeverityWarning = "warning"
	SeveritySafe    = "safe"

	CategoryHarmful   = "harmful"
	CategoryInjection = "injection-attempt"
)

// SafetyVerdict is the classifier's judgement of one user message.
type SafetyVerdict struct {
	IsValid    bool    `json:"isValid"`
	Category   string  `json:"category"`
	Severity   string  `json:"severity"`
	Reason     string  `json:"reason"`
	Suggestion *string `json:"suggestion,omitempty"`
	// TripwireTriggered is set when the verdict blocked the message.
	TripwireTriggered bool `json:"tripwireTriggered,omitempty"`
}

// Blocks reports whether the message must not reach the assistant.
func (v SafetyVerdict) Blocks() bool {
	return v.Severity == SeverityBlock ||
		!v.IsValid ||
		v.Category == CategoryHarmful ||
		v.Category == CategoryInjection
}

type GuardrailLogEntry struct {
	Timestamp  string        `json:"timestamp"`
	SessionKey string        `json:"session_key,omitempty"`
	Input      string        `json:"input"`
	Validation SafetyVerdict `json:"validation"`
}

type GuardrailStats struct {
	Total        int                 `json:"total"`
	Blocked      int                 `json:"blocked"`
	Passed       int                 `json:"passed"`
	RecentBlocks []GuardrailLogEntry `json:"recent_blocks,omitempty"`
}
