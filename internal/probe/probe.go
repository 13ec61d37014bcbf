package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"photostore/internal/logging"
	"photostore/internal/metrics"
)

// VideoMetadata is the technical metadata read from a video container.
type VideoMetadata struct {
	DurationSeconds float64
	ByteSize        int64
	Bitrate         int64
	ContainerFormat string
	Codec           string
	Width           int
	Height          int
	FrameRate       float64
	HasAudioTrack   bool
}

// ffprobeOutput is the shape of `ffprobe -output_format json` as of 2024.
// Numeric values in the format section arrive as strings.
type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name,omitempty"`
		Width      int    `json:"width,omitempty"`
		Height     int    `json:"height,omitempty"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// Available reports whether ffprobe can be found in PATH.
func Available() error {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return nil
}

// Probe extracts technical metadata from the video at path.
func Probe(ctx context.Context, path string) (*VideoMetadata, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-output_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w - %s", err, stderr.String())
	}
	metrics.FFmpegDuration.WithLabelValues("ffprobe").Observe(time.Since(start).Seconds())

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}

	meta := &VideoMetadata{
		ContainerFormat: out.Format.FormatName,
		DurationSeconds: parseFloat(out.Format.Duration),
		ByteSize:        parseInt(out.Format.Size),
		Bitrate:         parseInt(out.Format.BitRate),
	}

	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			// First video stream wins; motion-photo containers may carry
			// a one-frame preview stream after it.
			if meta.Codec == "" {
				meta.Codec = stream.CodecName
				meta.Width = stream.Width
				meta.Height = stream.Height
				meta.FrameRate = parseFrameRate(stream.RFrameRate)
			}
		case "audio":
			meta.HasAudioTrack = true
		}
	}

	if meta.Codec == "" {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	logging.Debug("Probed %s: %s %dx%d %.2fs", path, meta.Codec, meta.Width, meta.Height, meta.DurationSeconds)
	return meta, nil
}

// parseFrameRate converts ffprobe's fractional rate ("30000/1001") to a
// float.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return parseFloat(rate)
	}

	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
