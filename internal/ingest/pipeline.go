package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"photostore/internal/artifact"
	"photostore/internal/catalog"
	"photostore/internal/logging"
	"photostore/internal/mediatypes"
	"photostore/internal/metadata"
	"photostore/internal/metrics"
	"photostore/internal/probe"

	"github.com/google/uuid"
)

// ErrDuplicate marks an upload whose content hash is already cataloged.
var ErrDuplicate = errors.New("duplicate photo")

// Status is the terminal state of one processed upload.
type Status string

const (
	StatusStored   Status = "stored"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// Upload is one file handed to the pipeline. TempPath must keep the
// original base name so sibling motion files can be found next to it.
type Upload struct {
	TempPath     string
	OriginalName string
}

// Result reports what happened to one Upload. Record is set only for
// StatusStored.
type Result struct {
	Status       Status
	Record       *catalog.MediaRecord
	OriginalName string
	Err          error
}

// Pipeline turns uploads into catalog records plus their artifact files.
type Pipeline struct {
	catalog   *catalog.Catalog
	artifacts *artifact.Generator
	root      string
}

func NewPipeline(cat *catalog.Catalog, gen *artifact.Generator) *Pipeline {
	return &Pipeline{
		catalog:   cat,
		artifacts: gen,
		root:      cat.Root(),
	}
}

// ProcessBatch runs uploads through the pipeline one at a time, in order.
// Every input produces exactly one Result; one file failing never stops the
// rest of the batch. Temp inputs are removed only after the whole batch has
// run: an image may need a video posted earlier in the same batch as its
// motion companion.
func (p *Pipeline) ProcessBatch(ctx context.Context, uploads []Upload) []Result {
	defer func() {
		for _, up := range uploads {
			if err := os.Remove(up.TempPath); err != nil && !os.IsNotExist(err) {
				logging.Warn("Failed to remove temp input %s: %v", up.TempPath, err)
			}
		}
	}()

	results := make([]Result, 0, len(uploads))
	for _, up := range uploads {
		results = append(results, p.Process(ctx, up))
	}
	return results
}

// Process ingests a single upload. The temp input is left in place; the
// caller owns it (ProcessBatch removes batch inputs once all files have
// run). A failure after artifacts were written leaves them orphaned in the
// storage root; the storagecheck tool finds strays.
func (p *Pipeline) Process(ctx context.Context, up Upload) Result {
	start := time.Now()

	mediaType := "image"
	isVideo := mediatypes.IsVideo(up.OriginalName)
	if isVideo {
		mediaType = "video"
	}

	hash, err := HashFile(up.TempPath)
	if err != nil {
		return p.failed(mediaType, up.OriginalName, fmt.Errorf("failed to hash upload: %w", err))
	}

	if existing, found, err := p.catalog.FindByHash(hash); err != nil {
		return p.failed(mediaType, up.OriginalName, err)
	} else if found {
		logging.Info("Rejecting duplicate upload %s (matches %s)", up.OriginalName, existing.ID)
		metrics.UploadsTotal.WithLabelValues(mediaType, "rejected").Inc()
		return Result{Status: StatusRejected, OriginalName: up.OriginalName, Err: ErrDuplicate}
	}

	info, err := os.Stat(up.TempPath)
	if err != nil {
		return p.failed(mediaType, up.OriginalName, err)
	}

	ext := filepath.Ext(up.OriginalName)
	base := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:6])

	// The record id is the stored filename without its extension, so an
	// id maps straight back to the files it names.
	record := catalog.MediaRecord{
		ID:                     base,
		OriginalStoredFilename: "original_" + base + ext,
		OriginalName:           up.OriginalName,
		ContentHash:            hash,
		IsVideo:                isVideo,
		CreatedAt:              time.Now().UTC(),
	}

	if err := copyFile(up.TempPath, filepath.Join(p.root, record.OriginalStoredFilename)); err != nil {
		return p.failed(mediaType, up.OriginalName, err)
	}

	if isVideo {
		err = p.processVideo(ctx, up, base, ext, &record)
	} else {
		err = p.processImage(up, base, &record)
	}
	if err != nil {
		p.removeArtifacts(&record)
		return p.failed(mediaType, up.OriginalName, err)
	}

	if err := p.catalog.Append(record); err != nil {
		// Artifacts stay behind; losing catalog consistency would be
		// worse than leaking files.
		return p.failed(mediaType, up.OriginalName, fmt.Errorf("failed to catalog upload: %w", err))
	}

	metrics.UploadsTotal.WithLabelValues(mediaType, "stored").Inc()
	metrics.UploadDuration.WithLabelValues(mediaType).Observe(time.Since(start).Seconds())
	metrics.UploadBytes.Add(float64(info.Size()))
	logging.Info("Stored %s as %s (%s, %d bytes)", up.OriginalName, record.StoredFilename, mediaType, info.Size())

	return Result{Status: StatusStored, Record: &record, OriginalName: up.OriginalName}
}

// processImage fills in the image side of the record: normalized display
// copy, thumbnail, EXIF metadata and live-photo pairing.
func (p *Pipeline) processImage(up Upload, base string, record *catalog.MediaRecord) error {
	meta, outcome := metadata.ExtractImage(up.TempPath)
	metrics.MetadataExtractions.WithLabelValues("image", string(outcome)).Inc()

	// Display copies are always JPEG; browsers cannot rely on the camera
	// format and Go cannot encode HEIC. The untouched original keeps its
	// extension.
	record.StoredFilename = base + ".jpg"
	record.ThumbnailFilename = "thumb_" + base + ".jpg"

	if err := p.artifacts.Normalize(up.TempPath, filepath.Join(p.root, record.StoredFilename)); err != nil {
		return fmt.Errorf("failed to create display copy: %w", err)
	}
	if err := p.artifacts.Thumbnail(up.TempPath, filepath.Join(p.root, record.ThumbnailFilename)); err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}

	if mediatypes.PairableImage(up.OriginalName) {
		// DetectLivePhoto records the detection metric itself.
		if live, _ := metadata.DetectLivePhoto(up.TempPath); live {
			meta.IsLivePhoto = true

			if companion, ok := metadata.FindMotionCompanion(up.TempPath); ok {
				record.MotionFilename = "motion_" + base + ".mov"
				if err := copyFile(companion, filepath.Join(p.root, record.MotionFilename)); err != nil {
					logging.Warn("Failed to copy motion companion for %s: %v", up.OriginalName, err)
					record.MotionFilename = ""
				}
			}
		}
	}

	record.Metadata = meta
	return nil
}

// processVideo stores the video verbatim and probes it for technical
// metadata. Probe and poster-frame failures degrade the record instead of
// failing the upload.
func (p *Pipeline) processVideo(ctx context.Context, up Upload, base, ext string, record *catalog.MediaRecord) error {
	record.StoredFilename = base + ext
	if err := copyFile(up.TempPath, filepath.Join(p.root, record.StoredFilename)); err != nil {
		return err
	}

	record.Metadata = catalog.Metadata{Type: "video"}
	if meta, err := probe.Probe(ctx, up.TempPath); err != nil {
		logging.Warn("Probe failed for %s, storing degraded record: %v", up.OriginalName, err)
		metrics.MetadataExtractions.WithLabelValues("video", "degraded").Inc()
		record.Metadata.Error = err.Error()
	} else {
		metrics.MetadataExtractions.WithLabelValues("video", "full").Inc()
		record.Metadata.DurationSeconds = meta.DurationSeconds
		record.Metadata.ByteSize = meta.ByteSize
		record.Metadata.Bitrate = meta.Bitrate
		record.Metadata.ContainerFormat = meta.ContainerFormat
		record.Metadata.Codec = meta.Codec
		record.Metadata.Width = meta.Width
		record.Metadata.Height = meta.Height
		record.Metadata.FrameRate = meta.FrameRate
		record.Metadata.HasAudioTrack = meta.HasAudioTrack
	}

	thumbName := "thumb_" + base + ".jpg"
	if err := p.artifacts.PosterFrame(ctx, up.TempPath, filepath.Join(p.root, thumbName)); err != nil {
		logging.Warn("Poster frame failed for %s, using placeholder: %v", up.OriginalName, err)
		metrics.ArtifactGenerations.WithLabelValues("poster", "placeholder").Inc()
		record.ThumbnailFilename = catalog.PlaceholderThumbnail
	} else {
		record.ThumbnailFilename = thumbName
	}
	return nil
}

func (p *Pipeline) failed(mediaType, originalName string, err error) Result {
	logging.Error("Upload %s failed: %v", originalName, err)
	metrics.UploadsTotal.WithLabelValues(mediaType, "failed").Inc()
	return Result{Status: StatusFailed, OriginalName: originalName, Err: err}
}

// removeArtifacts best-effort deletes files written before a fatal
// processing error. The record was never appended, so nothing references
// them.
func (p *Pipeline) removeArtifacts(record *catalog.MediaRecord) {
	for _, name := range record.Filenames() {
		if err := os.Remove(filepath.Join(p.root, name)); err != nil && !os.IsNotExist(err) {
			logging.Warn("Failed to clean up %s: %v", name, err)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}
