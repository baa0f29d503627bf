package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/factory"
	"github.com/omnillm/omnillm/pkg/llm"
)

// Configuration is the persisted description of one provider entry:
// the credentials and endpoint, an optional pinned model, and the
// generation defaults applied to every request.
type Configuration struct {
	llm.ClientConfig

	// Model, when set, overrides the model name supplied with each
	// request: a saved configuration pins the model.
	Model string `json:"model,omitempty"`

	llm.Params
}

// registration pairs a live client with the canonical vendor it was
// built from.
type registration struct {
	client llm.Client
	vendor string
}

// Options configures a Dispatcher.
type Options struct {
	// StorePath is the JSON file for persisted configurations. Empty
	// disables persistence.
	StorePath string

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Dispatcher routes chat requests to the active provider.
type Dispatcher struct {
	mu      sync.RWMutex
	factory *factory.Factory
	store   *Store
	logger  *zap.Logger

	clients map[string]registration
	configs map[string]Configuration
	active  string
}

// New creates a Dispatcher, loading any persisted configurations from
// the store. Persisted entries are configurations only; providers must
// still be registered to become routable.
func New(opts Options) (*Dispatcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		factory: factory.New(),
		logger:  logger,
		clients: make(map[string]registration),
		configs: make(map[string]Configuration),
	}

	if opts.StorePath != "" {
		d.store = NewStore(opts.StorePath)
		configs, active, err := d.store.Load()
		if err != nil {
			return nil, err
		}
		d.configs = configs
		d.active = active
		logger.Info("loaded provider configurations",
			zap.Int("count", len(configs)),
			zap.String("active", active))
	}

	return d, nil
}

// persist saves the current state. Persistence failures are logged,
// never fatal: an unwritable disk must not take chat down.
func (d *Dispatcher) persist() {
	if d.store == nil {
		return
	}
	if err := d.store.Save(d.configs, d.active); err != nil {
		d.logger.Error("failed to persist configurations", zap.Error(err))
	}
}

// Register constructs a client for name and stores its configuration.
// The name may be any known vendor identifier, alias, or localized
// display name; unknown names fail with an unsupported-provider error.
// Registering a name again replaces its previous client.
func (d *Dispatcher) Register(name string, config Configuration) error {
	vendor, ok := factory.Canonical(name)
	if !ok {
		return &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s", name),
			Type:    llm.ErrTypeUnsupportedProvider,
		}
	}

	clientConfig := config.ClientConfig
	clientConfig.Provider = vendor
	clientConfig.Logger = d.logger

	client, err := d.factory.CreateClient(clientConfig)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if old, exists := d.clients[name]; exists {
		if err := old.client.Close(); err != nil {
			d.logger.Warn("failed to close replaced client", zap.String("provider", name), zap.Error(err))
		}
	}
	d.clients[name] = registration{client: client, vendor: vendor}
	d.configs[name] = config
	d.persist()

	d.logger.Info("registered provider", zap.String("name", name), zap.String("vendor", vendor))
	return nil
}

// Activate selects the provider requests are routed to. The provider
// must have been registered in this process.
func (d *Dispatcher) Activate(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.clients[name]; !exists {
		return &llm.Error{
			Code:    "not_registered",
			Message: fmt.Sprintf("provider not registered: %s", name),
			Type:    llm.ErrTypeNotRegistered,
		}
	}
	d.active = name
	d.persist()
	d.logger.Info("switched active provider", zap.String("name", name))
	return nil
}

// Dispatch routes a chat request to the active provider. The saved
// configuration's model pins the effective model; its generation
// defaults are merged with overrides, overrides winning. Requests with
// attachments are checked against the multimodal capability table
// before any network call.
func (d *Dispatcher) Dispatch(ctx context.Context, messages []llm.Message, model string, overrides llm.Params) (string, error) {
	d.mu.RLock()
	active := d.active
	reg, registered := d.clients[active]
	saved := d.configs[active]
	d.mu.RUnlock()

	if active == "" || !registered {
		return "", &llm.Error{
			Code:    "no_active_provider",
			Message: "no active provider selected",
			Type:    llm.ErrTypeNoActiveProvider,
		}
	}

	effectiveModel := model
	if saved.Model != "" {
		effectiveModel = saved.Model
	}
	if effectiveModel == "" {
		return "", llm.NewValidationError("invalid_model", "model name is empty")
	}

	params := saved.Params.Merge(overrides)

	if len(params.Attachments) > 0 && !supportsMultimodal(reg.vendor, model) {
		return "", &llm.Error{
			Code: "multimodal_unsupported",
			Message: fmt.Sprintf(
				"provider %s with model %s does not accept attachments; switch to a multimodal-capable model",
				active, model),
			Type: llm.ErrTypeMultimodalUnsupported,
		}
	}

	result, err := reg.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:    effectiveModel,
		Messages: messages,
		Params:   params,
	})
	if err != nil {
		d.logger.Error("chat request failed",
			zap.String("provider", active),
			zap.String("model", effectiveModel),
			zap.Error(err))
		return "", err
	}

	d.logger.Debug("chat request completed",
		zap.String("provider", active),
		zap.String("model", effectiveModel),
		zap.Int("response_length", len(result)))
	return result, nil
}

// ActiveProvider returns the name of the active provider, or "".
func (d *Dispatcher) ActiveProvider() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Configuration returns the saved configuration for name.
func (d *Dispatcher) Configuration(name string) (Configuration, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	config, ok := d.configs[name]
	return config, ok
}

// Configurations returns a copy of every saved configuration.
func (d *Dispatcher) Configurations() map[string]Configuration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	configs := make(map[string]Configuration, len(d.configs))
	for name, config := range d.configs {
		configs[name] = config
	}
	return configs
}

// Export returns all saved configurations for backup or transfer.
func (d *Dispatcher) Export() map[string]Configuration {
	return d.Configurations()
}

// Import merges configurations into the saved set, replacing entries
// with matching names, and persists the result. Imported entries
// still need Register to become routable.
func (d *Dispatcher) Import(configs map[string]Configuration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, config := range configs {
		d.configs[name] = config
	}
	d.persist()
	d.logger.Info("imported provider configurations", zap.Int("count", len(configs)))
}

// DeleteConfiguration removes a saved configuration and its client.
// Deleting the active provider clears the active pointer.
func (d *Dispatcher) DeleteConfiguration(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.configs[name]; !exists {
		return &llm.Error{
			Code:    "not_registered",
			Message: fmt.Sprintf("no configuration for provider: %s", name),
			Type:    llm.ErrTypeNotRegistered,
		}
	}

	delete(d.configs, name)
	if reg, exists := d.clients[name]; exists {
		if err := reg.client.Close(); err != nil {
			d.logger.Warn("failed to close client", zap.String("provider", name), zap.Error(err))
		}
		delete(d.clients, name)
	}
	if d.active == name {
		d.active = ""
	}
	d.persist()
	return nil
}

// SetStorePath points the dispatcher at a different store file and
// reloads configurations from it.
func (d *Dispatcher) SetStorePath(path string) error {
	store := NewStore(path)
	configs, active, err := store.Load()
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.store = store
	d.configs = configs
	d.active = active
	d.logger.Info("switched configuration store",
		zap.String("path", path),
		zap.Int("count", len(configs)))
	return nil
}

// Client returns the live client registered under name.
func (d *Dispatcher) Client(name string) (llm.Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	reg, ok := d.clients[name]
	if !ok {
		return nil, false
	}
	return reg.client, true
}

// Close shuts down every registered client.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for name, reg := range d.clients {
		if err := reg.client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close provider %s: %w", name, err)
		}
	}
	d.clients = make(map[string]registration)
	return firstErr
}
