package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"photostore/internal/logging"
)

// AppDirName is the per-user directory holding config.json and, unless a
// custom path is configured, the storage root itself.
const AppDirName = ".photostore"

// ConfigFileName is the name of the persisted configuration document.
const ConfigFileName = "config.json"

// MainComputer identifies the machine designated as the canonical storage
// host.
type MainComputer struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	SetAt time.Time `json:"setAt"`
}

// Settings is the persisted configuration document.
type Settings struct {
	BackupDrivePath   string        `json:"backupDrive,omitempty"`
	CustomStoragePath string        `json:"customStoragePath,omitempty"`
	MainComputer      *MainComputer `json:"mainComputer,omitempty"`
}

// Store holds the loaded configuration and knows how to persist changes.
// Writes are best-effort single-document rewrites; no lock protocol is
// applied (unlike the catalog, concurrent settings writes are not a
// supported workflow).
type Store struct {
	path string

	mu       sync.RWMutex
	settings Settings
}

// DefaultDir returns the per-user application directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// Load reads config.json from the given application directory, creating
// the directory if needed. A missing or corrupt document yields an empty
// Settings rather than an error.
func Load(appDir string) (*Store, error) {
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	s := &Store{path: filepath.Join(appDir, ConfigFileName)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the configuration document from disk, replacing the
// in-memory settings. Missing and unparsable documents reset to defaults.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		s.mu.Lock()
		s.settings = Settings{}
		s.mu.Unlock()
		return nil
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		logging.Warn("Config document %s is unparsable, using defaults: %v", s.path, err)
		settings = Settings{}
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Path returns the location of the configuration document.
func (s *Store) Path() string {
	return s.path
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// StorageRoot resolves the effective storage root: the custom storage path
// when configured, otherwise the application directory. The directory is
// created if it does not exist.
func (s *Store) StorageRoot() (string, error) {
	s.mu.RLock()
	custom := s.settings.CustomStoragePath
	s.mu.RUnlock()

	root := custom
	if root == "" {
		root = filepath.Dir(s.path)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return root, nil
}

// SetBackupDrive validates the drive path, prepares a PhotoStore directory
// on it, and persists the setting.
func (s *Store) SetBackupDrive(drivePath string) error {
	if _, err := os.Stat(drivePath); err != nil {
		return fmt.Errorf("backup drive path not accessible: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(drivePath, "PhotoStore"), 0o755); err != nil {
		return fmt.Errorf("failed to prepare backup directory: %w", err)
	}

	return s.update(func(settings *Settings) {
		settings.BackupDrivePath = drivePath
	})
}

// SetCustomStoragePath points the storage root at a new directory,
// creating it if necessary, and persists the setting.
func (s *Store) SetCustomStoragePath(storagePath string) error {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return fmt.Errorf("failed to create storage path: %w", err)
	}

	return s.update(func(settings *Settings) {
		settings.CustomStoragePath = storagePath
	})
}

// SetMainComputer designates this machine as the canonical storage host,
// or clears the designation when isMain is false.
func (s *Store) SetMainComputer(isMain bool) (*MainComputer, error) {
	var mc *MainComputer
	if isMain {
		identity, err := CurrentMachine()
		if err != nil {
			return nil, err
		}
		mc = &MainComputer{
			ID:    identity.ID,
			Name:  identity.Name,
			SetAt: time.Now().UTC(),
		}
	}

	err := s.update(func(settings *Settings) {
		settings.MainComputer = mc
	})
	if err != nil {
		return nil, err
	}
	return mc, nil
}

// IsMainComputer reports whether this machine carries the main-computer
// designation, along with the stored designation when it matches.
func (s *Store) IsMainComputer() (bool, *MainComputer, error) {
	s.mu.RLock()
	mc := s.settings.MainComputer
	s.mu.RUnlock()

	if mc == nil {
		return false, nil, nil
	}

	identity, err := CurrentMachine()
	if err != nil {
		return false, nil, err
	}
	if mc.ID != identity.ID {
		return false, nil, nil
	}
	return true, mc, nil
}

// update applies a mutation to the settings and writes the document back.
func (s *Store) update(mutate func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.settings)

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logging.Debug("Config saved to %s", s.path)
	return nil
}
