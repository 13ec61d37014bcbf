package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"photostore/internal/logging"
	"photostore/internal/metrics"
)

// DocumentName is the catalog document filename within the storage root.
const DocumentName = "photos.json"

// ErrNotFound is returned when a record id has no catalog entry.
var ErrNotFound = errors.New("record not found")

// Catalog stores media records in a single JSON document guarded by the
// lock-file protocol. A process-local mutex additionally serializes
// mutations between goroutines so they contend on the in-memory lock
// instead of burning lock-file retries against each other.
type Catalog struct {
	root     string
	docPath  string
	lockPath string
	lock     LockConfig

	mu sync.Mutex
}

// New creates a catalog over the given storage root.
func New(root string) *Catalog {
	return NewWithLockConfig(root, DefaultLockConfig())
}

// NewWithLockConfig creates a catalog with a custom lock retry budget.
// Tests use this to shorten contention timing.
func NewWithLockConfig(root string, lock LockConfig) *Catalog {
	return &Catalog{
		root:     root,
		docPath:  filepath.Join(root, DocumentName),
		lockPath: filepath.Join(root, LockFileName),
		lock:     lock,
	}
}

// Root returns the storage root the catalog lives in.
func (c *Catalog) Root() string {
	return c.root
}

// DocumentPath returns the location of the catalog document.
func (c *Catalog) DocumentPath() string {
	return c.docPath
}

// ListAll reads and parses the catalog document. A missing or corrupt
// document returns an empty slice: the catalog heals itself on the next
// successful mutation instead of propagating parse errors.
func (c *Catalog) ListAll() ([]MediaRecord, error) {
	data, err := os.ReadFile(c.docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []MediaRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var records []MediaRecord
	if err := json.Unmarshal(data, &records); err != nil {
		metrics.CatalogCorruptReads.Inc()
		logging.Warn("Catalog document %s is unparsable, treating as empty: %v", c.docPath, err)
		return []MediaRecord{}, nil
	}

	metrics.CatalogRecords.Set(float64(len(records)))
	return records, nil
}

// FindByID returns the record with the given id, or ErrNotFound.
func (c *Catalog) FindByID(id string) (MediaRecord, error) {
	records, err := c.ListAll()
	if err != nil {
		return MediaRecord{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return MediaRecord{}, ErrNotFound
}

// FindByHash reports whether any record carries the given content hash.
// Hash equality is the sole definition of "duplicate". The scan is linear;
// catalogs are personal-library sized.
func (c *Catalog) FindByHash(hash string) (MediaRecord, bool, error) {
	records, err := c.ListAll()
	if err != nil {
		return MediaRecord{}, false, err
	}
	for _, rec := range records {
		if rec.ContentHash == hash {
			return rec, true, nil
		}
	}
	return MediaRecord{}, false, nil
}

// Append commits a new record under the lock protocol.
func (c *Catalog) Append(record MediaRecord) error {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	release, err := c.acquireLock()
	if err != nil {
		metrics.CatalogMutations.WithLabelValues("append", mutationStatus(err)).Inc()
		return err
	}
	defer release()

	records, err := c.ListAll()
	if err != nil {
		metrics.CatalogMutations.WithLabelValues("append", "error").Inc()
		return err
	}

	records = append(records, record)
	if err := c.writeAll(records); err != nil {
		metrics.CatalogMutations.WithLabelValues("append", "error").Inc()
		return err
	}

	metrics.CatalogMutations.WithLabelValues("append", "success").Inc()
	metrics.CatalogMutationDuration.WithLabelValues("append").Observe(time.Since(start).Seconds())
	metrics.CatalogRecords.Set(float64(len(records)))
	logging.Debug("Catalog append: id=%s hash=%s (%d records)", record.ID, record.ContentHash, len(records))
	return nil
}

// Delete removes the record with the given id under the lock protocol and
// deletes its files from the storage root. The removed record is returned
// so callers can report what was deleted. Missing files are tolerated:
// the catalog entry is authoritative, stray filesystem state is not.
func (c *Catalog) Delete(id string) (MediaRecord, error) {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	release, err := c.acquireLock()
	if err != nil {
		metrics.CatalogMutations.WithLabelValues("delete", mutationStatus(err)).Inc()
		return MediaRecord{}, err
	}
	defer release()

	records, err := c.ListAll()
	if err != nil {
		metrics.CatalogMutations.WithLabelValues("delete", "error").Inc()
		return MediaRecord{}, err
	}

	idx := -1
	for i, rec := range records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		metrics.CatalogMutations.WithLabelValues("delete", "error").Inc()
		return MediaRecord{}, ErrNotFound
	}

	removed := records[idx]
	records = append(records[:idx], records[idx+1:]...)

	if err := c.writeAll(records); err != nil {
		metrics.CatalogMutations.WithLabelValues("delete", "error").Inc()
		return MediaRecord{}, err
	}

	c.removeFiles(&removed)

	metrics.CatalogMutations.WithLabelValues("delete", "success").Inc()
	metrics.CatalogMutationDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	metrics.CatalogRecords.Set(float64(len(records)))
	logging.Info("Deleted record %s (%s)", removed.ID, removed.OriginalName)
	return removed, nil
}

// DeleteOutcome is the per-id result of a batch delete.
type DeleteOutcome struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeleteMany applies Delete per id, sequentially, collecting partial
// failures. One failing id does not abort the others.
func (c *Catalog) DeleteMany(ids []string) []DeleteOutcome {
	outcomes := make([]DeleteOutcome, 0, len(ids))
	for _, id := range ids {
		if _, err := c.Delete(id); err != nil {
			outcomes = append(outcomes, DeleteOutcome{ID: id, Success: false, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, DeleteOutcome{ID: id, Success: true})
	}
	return outcomes
}

// writeAll rewrites the catalog document. The write goes through a
// temporary file and a rename so a crash mid-write cannot leave a
// half-written document behind.
func (c *Catalog) writeAll(records []MediaRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	tmp := c.docPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, c.docPath); err != nil {
		if rerr := os.Remove(tmp); rerr != nil && !os.IsNotExist(rerr) {
			logging.Warn("Failed to remove temp catalog %s: %v", tmp, rerr)
		}
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// removeFiles deletes a record's artifact files from the storage root.
func (c *Catalog) removeFiles(record *MediaRecord) {
	for _, name := range record.Filenames() {
		path := filepath.Join(c.root, name)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				logging.Debug("File already absent during delete: %s", path)
				continue
			}
			logging.Warn("Could not delete file %s: %v", path, err)
		}
	}
}

func mutationStatus(err error) string {
	if errors.Is(err, ErrCatalogBusy) {
		return "busy"
	}
	return "error"
}
