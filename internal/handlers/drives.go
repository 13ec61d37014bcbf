package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"photostore/internal/config"
	"photostore/internal/drives"
)

// ListDrives enumerates mounted drives for the backup destination picker.
func (h *Handlers) ListDrives(w http.ResponseWriter, r *http.Request) {
	list, err := drives.List(r.Context())
	if err != nil {
		writeJSONError(w, "Failed to get drives", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []drives.Drive{}
	}
	writeJSON(w, list)
}

// SetBackupDrive designates a drive as the backup destination.
func (h *Handlers) SetBackupDrive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DrivePath string `json:"drivePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DrivePath == "" {
		writeJSONError(w, "Drive path is required", http.StatusBadRequest)
		return
	}

	if err := h.store.SetBackupDrive(body.DrivePath); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"path":    body.DrivePath,
	})
}

// GetComputer returns this machine's identity and main-computer status.
func (h *Handlers) GetComputer(w http.ResponseWriter, _ *http.Request) {
	machine, err := config.CurrentMachine()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	isMain, _, err := h.store.IsMainComputer()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":             machine.ID,
		"name":           machine.Name,
		"isMainComputer": isMain,
	})
}

// SetMainComputer designates or clears this machine as the canonical
// storage host. The designation defaults to true when the body omits it.
func (h *Handlers) SetMainComputer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsMain *bool `json:"isMain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	isMain := true
	if body.IsMain != nil {
		isMain = *body.IsMain
	}

	mc, err := h.store.SetMainComputer(isMain)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"success":        true,
		"isMainComputer": isMain,
	}
	if mc != nil {
		response["id"] = mc.ID
		response["name"] = mc.Name
	}
	writeJSON(w, response)
}

// SetStoragePath moves the storage root to a custom directory.
func (h *Handlers) SetStoragePath(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StoragePath string `json:"storagePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.StoragePath == "" {
		writeJSONError(w, "Storage path is required", http.StatusBadRequest)
		return
	}

	if err := h.store.SetCustomStoragePath(body.StoragePath); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"path":    body.StoragePath,
	})
}

// GetConfiguration returns the full persisted configuration plus the
// current machine's identity.
func (h *Handlers) GetConfiguration(w http.ResponseWriter, _ *http.Request) {
	settings := h.store.Settings()

	machine, err := config.CurrentMachine()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	isMain, _, err := h.store.IsMainComputer()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"backupDrive":       nil,
		"customStoragePath": nil,
		"mainComputer":      settings.MainComputer,
		"currentComputer": map[string]interface{}{
			"id":             machine.ID,
			"name":           machine.Name,
			"isMainComputer": isMain,
		},
	}
	if settings.BackupDrivePath != "" {
		response["backupDrive"] = settings.BackupDrivePath
	}
	if settings.CustomStoragePath != "" {
		response["customStoragePath"] = settings.CustomStoragePath
	}

	writeJSON(w, response)
}
