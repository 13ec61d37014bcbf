package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testRecord(id, hash string) MediaRecord {
	return MediaRecord{
		ID:                     id,
		StoredFilename:         id + ".jpg",
		OriginalStoredFilename: "original_" + id + ".jpg",
		OriginalName:           "IMG_" + id + ".jpg",
		ThumbnailFilename:      "thumb_" + id + ".jpg",
		ContentHash:            hash,
		CreatedAt:              time.Now().UTC(),
	}
}

func TestListAllMissingDocument(t *testing.T) {
	c := New(t.TempDir())

	records, err := c.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ListAll() on missing document = %d records, want 0", len(records))
	}
}

func TestListAllCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	if err := os.WriteFile(c.DocumentPath(), []byte("{{{ definitely not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := c.ListAll()
	if err != nil {
		t.Fatalf("ListAll() on corrupt document should not fail, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ListAll() on corrupt document = %d records, want 0", len(records))
	}

	// Self-heal: the next append must produce a fresh valid document
	// containing just the new record.
	rec := testRecord("a1", "hash-a1")
	if err := c.Append(rec); err != nil {
		t.Fatalf("Append() after corruption: %v", err)
	}

	records, err = c.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != "a1" {
		t.Errorf("after self-heal, catalog = %+v, want single record a1", records)
	}
}

func TestAppendAndFind(t *testing.T) {
	c := New(t.TempDir())

	rec := testRecord("r1", "hash-1")
	if err := c.Append(rec); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	got, err := c.FindByID("r1")
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if got.ContentHash != "hash-1" || got.OriginalName != rec.OriginalName {
		t.Errorf("FindByID() = %+v, want %+v", got, rec)
	}

	if _, err := c.FindByID("nope"); err != ErrNotFound {
		t.Errorf("FindByID(missing) error = %v, want ErrNotFound", err)
	}

	if _, found, _ := c.FindByHash("hash-1"); !found {
		t.Error("FindByHash(hash-1) = false, want true")
	}
	if _, found, _ := c.FindByHash("other"); found {
		t.Error("FindByHash(other) = true, want false")
	}
}

func TestAppendReleasesLock(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	if err := c.Append(testRecord("r1", "h1")); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Errorf("lock file still present after Append: %v", err)
	}
}

func TestDeleteRemovesEntryAndFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	rec := testRecord("r1", "h1")
	rec.MotionFilename = "motion_r1.mov"
	for _, name := range rec.Filenames() {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Append(rec); err != nil {
		t.Fatal(err)
	}

	removed, err := c.Delete("r1")
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if removed.ID != "r1" {
		t.Errorf("Delete() returned %+v, want record r1", removed)
	}

	for _, name := range rec.Filenames() {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("file %s still present after delete", name)
		}
	}

	if _, err := c.FindByID("r1"); err != ErrNotFound {
		t.Errorf("FindByID after delete = %v, want ErrNotFound", err)
	}

	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file still present after Delete")
	}
}

func TestDeleteNotFound(t *testing.T) {
	c := New(t.TempDir())

	if _, err := c.Delete("ghost"); err != ErrNotFound {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	// Record whose files were never written
	if err := c.Append(testRecord("r1", "h1")); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Delete("r1"); err != nil {
		t.Errorf("Delete() with missing files should succeed, got %v", err)
	}
}

func TestDeleteManyPartialFailure(t *testing.T) {
	c := New(t.TempDir())

	if err := c.Append(testRecord("r1", "h1")); err != nil {
		t.Fatal(err)
	}
	if err := c.Append(testRecord("r3", "h3")); err != nil {
		t.Fatal(err)
	}

	outcomes := c.DeleteMany([]string{"r1", "r2", "r3"})
	if len(outcomes) != 3 {
		t.Fatalf("DeleteMany() returned %d outcomes, want 3", len(outcomes))
	}

	if !outcomes[0].Success || outcomes[0].ID != "r1" {
		t.Errorf("outcome[0] = %+v, want r1 success", outcomes[0])
	}
	if outcomes[1].Success || outcomes[1].Error == "" {
		t.Errorf("outcome[1] = %+v, want r2 failure with error", outcomes[1])
	}
	if !outcomes[2].Success {
		t.Errorf("outcome[2] = %+v, want r3 success despite r2 failing", outcomes[2])
	}

	records, _ := c.ListAll()
	if len(records) != 0 {
		t.Errorf("catalog has %d records after DeleteMany, want 0", len(records))
	}
}

func TestConcurrentAppends(t *testing.T) {
	c := New(t.TempDir())

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- c.Append(testRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("h%d", i)))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Append error: %v", err)
		}
	}

	records, err := c.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != n {
		t.Errorf("catalog has %d records after %d concurrent appends, want no lost updates", len(records), n)
	}
}

func TestStaleLockExhaustsRetryBudget(t *testing.T) {
	dir := t.TempDir()
	c := NewWithLockConfig(dir, LockConfig{MaxAttempts: 3, RetryDelay: 5 * time.Millisecond})

	// Simulate a crashed holder that left the sentinel behind.
	if err := os.WriteFile(filepath.Join(dir, LockFileName), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	err := c.Append(testRecord("r1", "h1"))
	if err != ErrCatalogBusy {
		t.Fatalf("Append() with held lock = %v, want ErrCatalogBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Append() returned in %v, expected at least 3 backoff intervals", elapsed)
	}

	// No catalog mutation may have happened.
	records, _ := c.ListAll()
	if len(records) != 0 {
		t.Errorf("catalog mutated despite ErrCatalogBusy: %d records", len(records))
	}
}

func TestLockReleasedAfterContention(t *testing.T) {
	dir := t.TempDir()
	c := NewWithLockConfig(dir, LockConfig{MaxAttempts: 5, RetryDelay: 10 * time.Millisecond})

	lockPath := filepath.Join(dir, LockFileName)
	if err := os.WriteFile(lockPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// Release the lock while the append is backing off; the retry loop
	// must pick it up and complete the mutation.
	go func() {
		time.Sleep(15 * time.Millisecond)
		os.Remove(lockPath)
	}()

	if err := c.Append(testRecord("r1", "h1")); err != nil {
		t.Fatalf("Append() should succeed once the lock frees, got %v", err)
	}

	records, _ := c.ListAll()
	if len(records) != 1 {
		t.Errorf("catalog has %d records, want 1", len(records))
	}
}

func TestRecordFilenames(t *testing.T) {
	rec := testRecord("r1", "h1")
	rec.MotionFilename = "motion_r1.mov"

	names := rec.Filenames()
	if len(names) != 4 {
		t.Fatalf("Filenames() = %v, want 4 entries", names)
	}

	// Placeholder thumbnails are shared and must never be deleted.
	rec.ThumbnailFilename = PlaceholderThumbnail
	for _, name := range rec.Filenames() {
		if name == PlaceholderThumbnail {
			t.Error("Filenames() must exclude the placeholder thumbnail")
		}
	}
}
