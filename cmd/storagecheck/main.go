package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"photostore/internal/catalog"
	"photostore/internal/config"
	"photostore/internal/workers"
)

func main() {
	storageFlag := flag.String("storage", "", "storage root to check (default: resolved from config)")
	fixFlag := flag.Bool("fix", false, "recover missing files from the default application directory")
	verboseFlag := flag.Bool("v", false, "list every checked file")
	flag.Parse()

	root, err := resolveRoot(*storageFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Storage root: %s\n", root)

	defaultDir, err := config.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *fixFlag && root != defaultDir {
		if err := recoverDocument(root, defaultDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cat := catalog.New(root)
	records, err := cat.ListAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Catalog: %d records\n\n", len(records))

	missing := verifyRecords(root, records, *verboseFlag)

	if *fixFlag && root != defaultDir && len(missing) > 0 {
		missing = recoverFiles(root, defaultDir, missing)
	}

	if len(missing) == 0 {
		fmt.Println("All cataloged files present.")
	} else {
		fmt.Printf("%d cataloged file(s) missing:\n", len(missing))
		for _, m := range missing {
			fmt.Printf("  %s (record %s)\n", m.name, m.recordID)
		}
		if !*fixFlag {
			fmt.Println("\nRun with -fix to attempt recovery from the default directory.")
		}
	}

	reportStrays(root, records)

	if len(missing) > 0 {
		os.Exit(1)
	}
}

func resolveRoot(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}

	appDir := os.Getenv("PHOTOSTORE_DIR")
	if appDir == "" {
		var err error
		appDir, err = config.DefaultDir()
		if err != nil {
			return "", err
		}
	}

	store, err := config.Load(appDir)
	if err != nil {
		return "", err
	}
	return store.StorageRoot()
}

// recoverDocument copies photos.json from the default application directory
// when the storage root has none. A root without the document usually means
// the storage path was changed before the catalog moved.
func recoverDocument(root, defaultDir string) error {
	docPath := filepath.Join(root, catalog.DocumentName)
	if _, err := os.Stat(docPath); err == nil {
		return nil
	}

	source := filepath.Join(defaultDir, catalog.DocumentName)
	if _, err := os.Stat(source); err != nil {
		fmt.Printf("No %s in storage root or default directory.\n", catalog.DocumentName)
		return nil
	}

	fmt.Printf("Copying %s from %s\n", catalog.DocumentName, defaultDir)
	return copyFile(source, docPath)
}

type missingFile struct {
	recordID string
	name     string
}

// verifyRecords stats every file each record references, in parallel.
func verifyRecords(root string, records []catalog.MediaRecord, verbose bool) []missingFile {
	var (
		mu      sync.Mutex
		missing []missingFile
		wg      sync.WaitGroup
	)

	sem := make(chan struct{}, workers.ForIO(16))
	for i := range records {
		record := &records[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			for _, name := range record.Filenames() {
				_, err := os.Stat(filepath.Join(root, name))
				if verbose {
					status := "ok"
					if err != nil {
						status = "MISSING"
					}
					fmt.Printf("  [%s] %s\n", status, name)
				}
				if err != nil {
					mu.Lock()
					missing = append(missing, missingFile{recordID: record.ID, name: name})
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return missing
}

// recoverFiles copies missing files from the default application directory
// into the storage root. Files absent from both locations stay missing.
func recoverFiles(root, defaultDir string, missing []missingFile) []missingFile {
	var unrecovered []missingFile
	for _, m := range missing {
		source := filepath.Join(defaultDir, m.name)
		if _, err := os.Stat(source); err != nil {
			unrecovered = append(unrecovered, m)
			continue
		}
		if err := copyFile(source, filepath.Join(root, m.name)); err != nil {
			fmt.Fprintf(os.Stderr, "  failed to recover %s: %v\n", m.name, err)
			unrecovered = append(unrecovered, m)
			continue
		}
		fmt.Printf("  recovered %s\n", m.name)
	}
	return unrecovered
}

// reportStrays lists files in the storage root that no record references
// and that are not part of the storage layout itself.
func reportStrays(root string, records []catalog.MediaRecord) {
	referenced := map[string]bool{
		catalog.DocumentName:         true,
		catalog.LockFileName:         true,
		catalog.PlaceholderThumbnail: true,
		config.ConfigFileName:        true,
	}
	for i := range records {
		for _, name := range records[i].Filenames() {
			referenced[name] = true
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read storage root: %v\n", err)
		return
	}

	var strays []string
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		strays = append(strays, entry.Name())
	}

	if len(strays) == 0 {
		fmt.Println("No unreferenced files.")
		return
	}
	fmt.Printf("%d file(s) not referenced by any record:\n", len(strays))
	for _, s := range strays {
		fmt.Printf("  %s\n", s)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
