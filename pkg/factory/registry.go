package factory

import (
	"strings"
	"sync"

	"github.com/omnillm/omnillm/pkg/llm"
)

// ProviderConstructor is a function that creates a new client for a provider
type ProviderConstructor func(config llm.ClientConfig) (llm.Client, error)

// providerRegistry holds all registered provider constructors
type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]ProviderConstructor
	aliases   map[string]string
}

var globalRegistry = &providerRegistry{
	providers: make(map[string]ProviderConstructor),
	aliases:   make(map[string]string),
}

// RegisterProvider registers a provider constructor function
func RegisterProvider(name string, constructor ProviderConstructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.providers[strings.ToLower(name)] = constructor
}

// RegisterAlias maps an alternate name onto a canonical provider name.
func RegisterAlias(alias, canonical string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.aliases[strings.ToLower(alias)] = strings.ToLower(canonical)
}

// Canonical resolves name (case-insensitively, through the alias
// table) to a registered provider identifier.
func Canonical(name string) (string, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := globalRegistry.aliases[key]; ok {
		key = canonical
	}
	_, exists := globalRegistry.providers[key]
	return key, exists
}

// GetProvider returns a provider constructor by name
func GetProvider(name string) (ProviderConstructor, bool) {
	canonical, ok := Canonical(name)
	if !ok {
		return nil, false
	}
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	constructor, exists := globalRegistry.providers[canonical]
	return constructor, exists
}

// ListProviders returns all registered canonical provider names
func ListProviders() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.providers))
	for name := range globalRegistry.providers {
		names = append(names, name)
	}
	return names
}
