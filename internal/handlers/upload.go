package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"photostore/internal/ingest"
	"photostore/internal/logging"
)

// maxUploadMemory caps the multipart parts held in memory; larger parts
// spill to disk.
const maxUploadMemory = 32 << 20

// uploadError is the per-file error entry in a batch upload response.
type uploadError struct {
	Error        string `json:"error"`
	OriginalName string `json:"originalName"`
}

// Upload ingests a multipart batch. Every posted file gets exactly one
// entry in the response array, in posting order: the stored record, or an
// error object naming the file.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeJSONError(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	// Each batch stages into its own directory, keeping the original base
	// names so motion companions sit next to their images.
	stageDir, err := os.MkdirTemp(h.uploadTmpDir, "batch-")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(stageDir); err != nil {
			logging.Warn("Failed to remove staging directory %s: %v", stageDir, err)
		}
	}()

	// All files stage before any processing so motion companions are in
	// place when their image runs through the pipeline. Results keep the
	// posting order: slot i answers for file i.
	response := make([]interface{}, len(files))
	uploads := make([]ingest.Upload, 0, len(files))
	slots := make([]int, 0, len(files))
	staged := make(map[string]bool)

	for i, header := range files {
		name := filepath.Base(header.Filename)
		if name == "" || name == "." || name == ".." {
			response[i] = uploadError{Error: "invalid filename", OriginalName: header.Filename}
			continue
		}

		// A repeated filename is still a distinct upload; it stages in
		// its own subdirectory so it cannot clobber the first copy.
		dir := stageDir
		if staged[name] {
			sub, err := os.MkdirTemp(stageDir, "part-")
			if err != nil {
				logging.Error("Failed to stage upload %s: %v", name, err)
				response[i] = uploadError{Error: err.Error(), OriginalName: name}
				continue
			}
			dir = sub
		}

		dst := filepath.Join(dir, name)
		if err := saveMultipartFile(header, dst); err != nil {
			logging.Error("Failed to stage upload %s: %v", name, err)
			response[i] = uploadError{Error: err.Error(), OriginalName: name}
			continue
		}
		staged[name] = true
		uploads = append(uploads, ingest.Upload{TempPath: dst, OriginalName: name})
		slots = append(slots, i)
	}

	for j, res := range h.pipeline.ProcessBatch(r.Context(), uploads) {
		var entry interface{}
		switch res.Status {
		case ingest.StatusStored:
			entry = res.Record
		case ingest.StatusRejected:
			entry = uploadError{Error: "Duplicate photo", OriginalName: res.OriginalName}
		default:
			entry = uploadError{Error: res.Err.Error(), OriginalName: res.OriginalName}
		}
		response[slots[j]] = entry
	}

	writeJSON(w, response)
}

func saveMultipartFile(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to stage upload: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return out.Close()
}

func hashUpload(file multipart.File) (string, error) {
	return ingest.HashReader(file)
}
