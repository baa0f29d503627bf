package llm

// Params holds the optional generation parameters of a chat request.
// Nil fields mean "not set": each adapter substitutes its vendor's own
// default, so a zero value is distinguishable from an explicit zero.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`

	// Attachments carries file URIs for multimodal requests. Only
	// providers listed in the dispatcher's capability table accept
	// them; everything else never sees this field.
	Attachments []string `json:"attachments,omitempty"`
}

// Merge returns a copy of p with every field that is set in override
// replacing the corresponding field of p.
func (p Params) Merge(override Params) Params {
	merged := p
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.TopK != nil {
		merged.TopK = override.TopK
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	if len(override.Stop) > 0 {
		merged.Stop = override.Stop
	}
	if len(override.Attachments) > 0 {
		merged.Attachments = override.Attachments
	}
	return merged
}

// Float returns a pointer to v, for building Params literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building Params literals.
func Int(v int) *int { return &v }

// FloatOr dereferences p, or returns def when p is nil.
func FloatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

// IntOr dereferences p, or returns def when p is nil.
func IntOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}
