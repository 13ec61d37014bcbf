package artifact

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"photostore/internal/catalog"
	"photostore/internal/logging"
	"photostore/internal/metrics"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// ThumbnailSize is the edge length of the square thumbnails served in
	// gallery views.
	ThumbnailSize = 300

	normalizedJpegQuality = 95
	thumbnailJpegQuality  = 80
)

// Generator produces display copies, thumbnails and poster frames under a
// single storage root.
type Generator struct {
	root string
}

func NewGenerator(root string) *Generator {
	return &Generator{root: root}
}

// Normalize writes a bake-in-orientation JPEG display copy of the image at
// src to dst. Browsers get a format they can always render, whatever the
// camera produced.
func (g *Generator) Normalize(src, dst string) error {
	start := time.Now()
	err := g.normalize(src, dst)
	metrics.ArtifactDuration.WithLabelValues("normalize").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ArtifactGenerations.WithLabelValues("normalize", "error").Inc()
		return err
	}
	metrics.ArtifactGenerations.WithLabelValues("normalize", "success").Inc()
	return nil
}

func (g *Generator) normalize(src, dst string) error {
	if IsVipsAvailable() {
		if err := normalizeWithVips(src, dst); err == nil {
			return nil
		} else {
			logging.Debug("vips normalize failed for %s: %v, trying pure-Go fallback", filepath.Base(src), err)
		}
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}
	if err := imaging.Save(img, dst, imaging.JPEGQuality(normalizedJpegQuality)); err != nil {
		return fmt.Errorf("failed to save display copy: %w", err)
	}
	return nil
}

func normalizeWithVips(src, dst string) error {
	ref, err := vips.LoadImageFromFile(src, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return fmt.Errorf("vips auto-rotate failed: %w", err)
	}

	imgBytes, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        normalizedJpegQuality,
		StripMetadata:  false,
		OptimizeCoding: true,
	})
	if err != nil {
		return fmt.Errorf("vips export failed: %w", err)
	}
	return os.WriteFile(dst, imgBytes, 0644)
}

// Thumbnail writes a center-cropped square JPEG thumbnail of the image at
// src to dst.
func (g *Generator) Thumbnail(src, dst string) error {
	start := time.Now()
	err := g.thumbnail(src, dst)
	metrics.ArtifactDuration.WithLabelValues("thumbnail").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ArtifactGenerations.WithLabelValues("thumbnail", "error").Inc()
		return err
	}
	metrics.ArtifactGenerations.WithLabelValues("thumbnail", "success").Inc()
	return nil
}

func (g *Generator) thumbnail(src, dst string) error {
	if IsVipsAvailable() {
		if err := thumbnailWithVips(src, dst); err == nil {
			return nil
		} else {
			logging.Debug("vips thumbnail failed for %s: %v, trying pure-Go fallback", filepath.Base(src), err)
		}
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}
	return saveThumbnail(img, dst)
}

func thumbnailWithVips(src, dst string) error {
	ref, err := vips.LoadImageFromFile(src, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	// Decode-time shrinking plus attention-free center cropping.
	if err := ref.Thumbnail(ThumbnailSize, ThumbnailSize, vips.InterestingCentre); err != nil {
		return fmt.Errorf("vips thumbnail failed: %w", err)
	}

	imgBytes, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        thumbnailJpegQuality,
		StripMetadata:  true,
		OptimizeCoding: true,
	})
	if err != nil {
		return fmt.Errorf("vips export failed: %w", err)
	}
	return os.WriteFile(dst, imgBytes, 0644)
}

func saveThumbnail(img image.Image, dst string) error {
	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(thumbnailJpegQuality)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return nil
}

// PosterFrame extracts a representative frame from the video at src and
// writes it as a square JPEG thumbnail to dst. It seeks one second in to
// skip black lead-in frames, retrying from the start for clips shorter
// than that.
func (g *Generator) PosterFrame(ctx context.Context, src, dst string) error {
	start := time.Now()
	err := g.posterFrame(ctx, src, dst)
	metrics.ArtifactDuration.WithLabelValues("poster").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ArtifactGenerations.WithLabelValues("poster", "error").Inc()
		return err
	}
	metrics.ArtifactGenerations.WithLabelValues("poster", "success").Inc()
	return nil
}

func (g *Generator) posterFrame(ctx context.Context, src, dst string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}

	frame, err := extractFrame(ctx, src, true)
	if err != nil {
		logging.Debug("FFmpeg first attempt failed for %s: %v", src, err)
		frame, err = extractFrame(ctx, src, false)
		if err != nil {
			return err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return saveThumbnail(img, dst)
}

func extractFrame(ctx context.Context, src string, seek bool) ([]byte, error) {
	args := []string{"-i", src}
	if seek {
		args = append(args, "-ss", "00:00:01")
	}
	args = append(args,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	metrics.FFmpegDuration.WithLabelValues("ffmpeg").Observe(time.Since(start).Seconds())

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", src)
	}
	return stdout.Bytes(), nil
}

// EnsurePlaceholder writes the shared placeholder thumbnail into root if it
// does not exist yet. Videos whose poster frame extraction fails point
// their thumbnail at this file.
func EnsurePlaceholder(root string) error {
	path := filepath.Join(root, catalog.PlaceholderThumbnail)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, ThumbnailSize, ThumbnailSize))
	gray := color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF}
	for y := 0; y < ThumbnailSize; y++ {
		for x := 0; x < ThumbnailSize; x++ {
			img.Set(x, y, gray)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode placeholder: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write placeholder: %w", err)
	}
	logging.Info("Created placeholder video thumbnail: %s", path)
	return nil
}
