package dispatcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// storeFile is the on-disk layout of the configuration store.
type storeFile struct {
	Configurations  map[string]Configuration `json:"configurations"`
	CurrentProvider string                   `json:"current_provider,omitempty"`
}

// Store persists provider configurations and the active-provider
// pointer as an indented JSON file.
type Store struct {
	path string
}

// NewStore creates a store backed by path. The file is created on the
// first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted configurations and active provider. A
// missing file is not an error; it yields an empty configuration set.
func (s *Store) Load() (map[string]Configuration, string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]Configuration{}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config store: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("failed to parse config store: %w", err)
	}
	if file.Configurations == nil {
		file.Configurations = map[string]Configuration{}
	}
	return file.Configurations, file.CurrentProvider, nil
}

// Save writes the configurations and active provider, creating the
// parent directory when needed.
func (s *Store) Save(configs map[string]Configuration, active string) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(storeFile{
		Configurations:  configs,
		CurrentProvider: active,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config store: %w", err)
	}
	return nil
}
