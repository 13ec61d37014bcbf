package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingConfig(t *testing.T) {
	dir := t.TempDir()

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	settings := store.Settings()
	if settings.BackupDrivePath != "" || settings.CustomStoragePath != "" || settings.MainComputer != nil {
		t.Errorf("expected empty settings, got %+v", settings)
	}
}

func TestLoadCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error on corrupt config: %v", err)
	}
	if settings := store.Settings(); settings != (Settings{}) {
		t.Errorf("corrupt config should yield defaults, got %+v", settings)
	}
}

func TestStorageRootDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	root, err := store.StorageRoot()
	if err != nil {
		t.Fatalf("StorageRoot() error: %v", err)
	}
	if root != dir {
		t.Errorf("StorageRoot() = %q, want app dir %q", root, dir)
	}
}

func TestSetCustomStoragePath(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	custom := filepath.Join(t.TempDir(), "vault")
	if err := store.SetCustomStoragePath(custom); err != nil {
		t.Fatalf("SetCustomStoragePath() error: %v", err)
	}

	root, err := store.StorageRoot()
	if err != nil {
		t.Fatal(err)
	}
	if root != custom {
		t.Errorf("StorageRoot() = %q, want %q", root, custom)
	}
	if _, err := os.Stat(custom); err != nil {
		t.Errorf("custom storage path was not created: %v", err)
	}

	// Persisted document must round-trip through Reload
	if err := store.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := store.Settings().CustomStoragePath; got != custom {
		t.Errorf("after Reload, CustomStoragePath = %q, want %q", got, custom)
	}
}

func TestSetBackupDrive(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	drive := t.TempDir()
	if err := store.SetBackupDrive(drive); err != nil {
		t.Fatalf("SetBackupDrive() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(drive, "PhotoStore")); err != nil {
		t.Errorf("backup directory was not created: %v", err)
	}
	if got := store.Settings().BackupDrivePath; got != drive {
		t.Errorf("BackupDrivePath = %q, want %q", got, drive)
	}

	if err := store.SetBackupDrive(filepath.Join(drive, "does-not-exist")); err == nil {
		t.Error("SetBackupDrive() with missing path should fail")
	}
}

func TestConfigDocumentShape(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.SetCustomStoragePath(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("config document is not valid JSON: %v", err)
	}
	if _, ok := doc["customStoragePath"]; !ok {
		t.Errorf("document missing customStoragePath key: %s", data)
	}
	if _, ok := doc["mainComputer"]; ok {
		t.Errorf("unset mainComputer should be omitted: %s", data)
	}
}
