package handlers

import (
	"net/http"
	"time"

	"photostore/internal/catalog"
	"photostore/internal/config"
	"photostore/internal/ingest"

	"github.com/gorilla/mux"
)

type Handlers struct {
	catalog      *catalog.Catalog
	pipeline     *ingest.Pipeline
	store        *config.Store
	uploadTmpDir string
	startTime    time.Time
}

func New(cat *catalog.Catalog, pipeline *ingest.Pipeline, store *config.Store, uploadTmpDir string) *Handlers {
	return &Handlers{
		catalog:      cat,
		pipeline:     pipeline,
		store:        store,
		uploadTmpDir: uploadTmpDir,
		startTime:    time.Now(),
	}
}

// RegisterRoutes wires all API routes onto the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	photos := r.PathPrefix("/api/photos").Subrouter()
	photos.HandleFunc("", h.ListPhotos).Methods(http.MethodGet)
	photos.HandleFunc("", h.DeletePhotos).Methods(http.MethodDelete)
	photos.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	photos.HandleFunc("/check-duplicate", h.CheckDuplicate).Methods(http.MethodPost)
	photos.HandleFunc("/{id}", h.GetPhoto).Methods(http.MethodGet)
	photos.HandleFunc("/{id}", h.DeletePhoto).Methods(http.MethodDelete)
	photos.HandleFunc("/{id}/file", h.GetPhotoFile).Methods(http.MethodGet)
	photos.HandleFunc("/{id}/download", h.DownloadPhoto).Methods(http.MethodGet)
	photos.HandleFunc("/{id}/motion", h.GetMotion).Methods(http.MethodGet)
	photos.HandleFunc("/{id}/thumbnail", h.GetThumbnail).Methods(http.MethodGet)

	drives := r.PathPrefix("/api/drives").Subrouter()
	drives.HandleFunc("", h.ListDrives).Methods(http.MethodGet)
	drives.HandleFunc("/backup", h.SetBackupDrive).Methods(http.MethodPost)
	drives.HandleFunc("/computer", h.GetComputer).Methods(http.MethodGet)
	drives.HandleFunc("/main-computer", h.SetMainComputer).Methods(http.MethodPost)
	drives.HandleFunc("/storage-path", h.SetStoragePath).Methods(http.MethodPost)
	drives.HandleFunc("/config", h.GetConfiguration).Methods(http.MethodGet)
}
