package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Backend selects which Store implementation Open wires in.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFiles  Backend = "files"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendSQLite, "":
		return BackendSQLite, nil
	case BackendFiles:
		return BackendFiles, nil
	default:
		return "", fmt.Errorf("invalid backend: %q (expected sqlite|files)", s)
	}
}

// Config is the persisted app configuration. It lives next to (not inside)
// the document data: a single config.json rewritten whole on save.
type Config struct {
	// DocumentsFolder is the files-backend folder. Empty means
	// <config dir>/documents.
	DocumentsFolder string `json:"documentsFolder,omitempty"`
	// Backend selects the storage backend ("sqlite" or "files").
	Backend Backend `json:"backend,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching the real config).
	if v := strings.TrimSpace(os.Getenv("MDCAL_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mdcal"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func SaveConfig(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// DocumentsDir resolves the documents folder, applying the default when
// the preference is unset.
func (c Config) DocumentsDir() (string, error) {
	if strings.TrimSpace(c.DocumentsFolder) != "" {
		return c.DocumentsFolder, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "documents"), nil
}

// SQLitePath is the embedded-database location.
func SQLitePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mdcal.sqlite"), nil
}

// Open wires the backend the config selects. The returned store opens its
// underlying resources lazily; nothing is touched on disk until the first
// operation.
func Open(cfg Config) (Store, error) {
	backend, err := ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendFiles:
		dir, err := cfg.DocumentsDir()
		if err != nil {
			return nil, err
		}
		return OpenFiles(dir), nil
	default:
		path, err := SQLitePath()
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path), nil
	}
}
