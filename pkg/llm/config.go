package llm

import (
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is used when a configuration does not set one.
const DefaultTimeout = 60 * time.Second

// ClientConfig holds the configuration for creating a provider client.
// Most vendors need only APIKey; the remaining credential fields exist
// for vendors with multi-part credentials (Baidu's key/secret pair,
// Spark's app/key/secret triple).
type ClientConfig struct {
	Provider string `json:"provider"`

	APIKey    string `json:"api_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	AppID     string `json:"app_id,omitempty"`
	APISecret string `json:"api_secret,omitempty"`

	OrganizationID string `json:"organization_id,omitempty"`
	APIVersion     string `json:"api_version,omitempty"`
	BaseURL        string `json:"base_url,omitempty"`
	Region         string `json:"region,omitempty"`

	Timeout time.Duration `json:"timeout,omitempty"`

	// Logger is never persisted. Adapters fall back to a no-op
	// logger when nil.
	Logger *zap.Logger `json:"-"`
}

// EffectiveTimeout returns the configured timeout or DefaultTimeout.
func (c ClientConfig) EffectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// EffectiveLogger returns the configured logger or a no-op logger.
func (c ClientConfig) EffectiveLogger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
