package factory

import (
	"fmt"

	"github.com/omnillm/omnillm/pkg/llm"
)

// Factory creates LLM clients based on configuration
type Factory struct{}

// New creates a new client factory
func New() *Factory {
	return &Factory{}
}

// CreateClient creates an LLM client based on the configuration
func (f *Factory) CreateClient(config llm.ClientConfig) (llm.Client, error) {
	if config.Provider == "" {
		return nil, llm.NewValidationError("missing_provider", "provider is required")
	}

	constructor, exists := GetProvider(config.Provider)
	if !exists {
		return nil, &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s", config.Provider),
			Type:    llm.ErrTypeUnsupportedProvider,
		}
	}

	return constructor(config)
}
