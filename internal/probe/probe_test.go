package probe

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		name string
		rate string
		want float64
	}{
		{"NTSC fraction", "30000/1001", 29.97},
		{"whole fraction", "30/1", 30},
		{"plain number", "25", 25},
		{"zero denominator", "30/0", 0},
		{"empty", "", 0},
		{"garbage", "abc/def", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFrameRate(tt.rate)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("parseFrameRate(%q) = %v, want %v", tt.rate, got, tt.want)
			}
		})
	}
}

func TestDecodeFfprobeOutput(t *testing.T) {
	// Trimmed real ffprobe output from an iPhone clip.
	raw := `{
		"streams": [
			{
				"codec_type": "video",
				"codec_name": "hevc",
				"width": 1920,
				"height": 1080,
				"r_frame_rate": "30000/1001"
			},
			{
				"codec_type": "audio",
				"codec_name": "aac",
				"r_frame_rate": "0/0"
			}
		],
		"format": {
			"format_name": "mov,mp4,m4a,3gp,3g2,mj2",
			"duration": "12.345000",
			"size": "10485760",
			"bit_rate": "6794000"
		}
	}`

	var out ffprobeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(out.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(out.Streams))
	}
	if out.Streams[0].CodecName != "hevc" || out.Streams[0].Width != 1920 {
		t.Errorf("unexpected video stream: %+v", out.Streams[0])
	}
	if parseFloat(out.Format.Duration) != 12.345 {
		t.Errorf("duration = %v, want 12.345", parseFloat(out.Format.Duration))
	}
	if parseInt(out.Format.Size) != 10485760 {
		t.Errorf("size = %v, want 10485760", parseInt(out.Format.Size))
	}
	if parseInt(out.Format.BitRate) != 6794000 {
		t.Errorf("bit_rate = %v, want 6794000", parseInt(out.Format.BitRate))
	}
}

func TestProbeMissingFile(t *testing.T) {
	if err := Available(); err != nil {
		t.Skip("ffprobe not installed")
	}

	_, err := Probe(t.Context(), "/nonexistent/clip.mp4")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
