package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"photostore/internal/catalog"
	"photostore/internal/logging"
	"photostore/internal/mediatypes"

	"github.com/gorilla/mux"
)

// ListPhotos returns every catalog record.
func (h *Handlers) ListPhotos(w http.ResponseWriter, _ *http.Request) {
	records, err := h.catalog.ListAll()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []catalog.MediaRecord{}
	}
	writeJSON(w, records)
}

// GetPhoto returns a single catalog record by id.
func (h *Handlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookupRecord(w, r)
	if !ok {
		return
	}
	writeJSON(w, record)
}

// GetPhotoFile serves the display copy.
func (h *Handlers) GetPhotoFile(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookupRecord(w, r)
	if !ok {
		return
	}
	h.serveStorageFile(w, r, record.StoredFilename)
}

// GetThumbnail serves the thumbnail, which may be the shared placeholder.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookupRecord(w, r)
	if !ok {
		return
	}
	h.serveStorageFile(w, r, record.ThumbnailFilename)
}

// DownloadPhoto serves the untouched original with its upload-time name.
func (h *Handlers) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookupRecord(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(record.OriginalName)))
	h.serveStorageFile(w, r, record.OriginalStoredFilename)
}

// GetMotion serves the motion companion of a Live Photo.
func (h *Handlers) GetMotion(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookupRecord(w, r)
	if !ok {
		return
	}

	if !record.Metadata.IsLivePhoto || record.MotionFilename == "" {
		writeJSONError(w, "Not a Live Photo or no motion data available", http.StatusNotFound)
		return
	}
	h.serveStorageFile(w, r, record.MotionFilename)
}

// DeletePhoto removes one record and its files.
func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.catalog.Delete(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSONError(w, "Photo not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"deleted": record.ID,
	})
}

// DeletePhotos removes a batch of records, reporting per-id outcomes.
func (h *Handlers) DeletePhotos(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		writeJSONError(w, "Photo IDs array is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.catalog.DeleteMany(body.IDs))
}

// CheckDuplicate hashes the posted file and reports whether its content is
// already cataloged. Nothing is stored.
func (h *Handlers) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("photo")
	if err != nil {
		writeJSONError(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	hash, err := hashUpload(file)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, found, err := h.catalog.FindByHash(hash)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"isDuplicate": found})
}

// lookupRecord resolves {id} to a catalog record, writing the error
// response itself when the record cannot be served.
func (h *Handlers) lookupRecord(w http.ResponseWriter, r *http.Request) (catalog.MediaRecord, bool) {
	id := mux.Vars(r)["id"]

	record, err := h.catalog.FindByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSONError(w, "Photo not found", http.StatusNotFound)
		} else {
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return catalog.MediaRecord{}, false
	}
	return record, true
}

// serveStorageFile serves a file from the storage root by bare filename.
func (h *Handlers) serveStorageFile(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" || name != filepath.Base(name) {
		writeJSONError(w, "File not available", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.catalog.Root(), name)
	if _, err := os.Stat(path); err != nil {
		logging.Warn("Cataloged file missing from storage root: %s", name)
		writeJSONError(w, "File not available", http.StatusNotFound)
		return
	}

	if contentType := mediatypes.GetMimeTypeForPath(name); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeFile(w, r, path)
}
