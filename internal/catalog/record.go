package catalog

import "time"

// GPSCoordinates holds a position in signed decimal degrees.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Metadata is the per-record metadata payload. Image and video records
// populate different subsets of the fields; the document keeps them in one
// object so older catalogs remain readable.
type Metadata struct {
	// Type is "video" for video records, empty for images.
	Type string `json:"type,omitempty"`

	// Image fields
	DateTaken   *time.Time             `json:"dateTaken,omitempty"`
	CameraMake  string                 `json:"make,omitempty"`
	CameraModel string                 `json:"model,omitempty"`
	GPS         *GPSCoordinates        `json:"gps,omitempty"`
	IsLivePhoto bool                   `json:"isLivePhoto,omitempty"`
	Orientation int                    `json:"orientation,omitempty"`
	Raw         map[string]interface{} `json:"originalMetadata,omitempty"`

	// Video fields
	DurationSeconds float64 `json:"duration,omitempty"`
	ByteSize        int64   `json:"size,omitempty"`
	Bitrate         int64   `json:"bitrate,omitempty"`
	ContainerFormat string  `json:"format,omitempty"`
	Codec           string  `json:"codec,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	FrameRate       float64 `json:"fps,omitempty"`
	HasAudioTrack   bool    `json:"hasAudio,omitempty"`

	// Error marks a video whose probe failed; the record still exists and
	// serves with a placeholder thumbnail.
	Error string `json:"error,omitempty"`
}

// MediaRecord is one stored photo or video.
//
// Every referenced filename corresponds to a file in the storage root for
// the lifetime of the record. Records are immutable after creation; the
// only mutation is removal.
type MediaRecord struct {
	ID                     string    `json:"id"`
	StoredFilename         string    `json:"filename"`
	OriginalStoredFilename string    `json:"originalFilename"`
	OriginalName           string    `json:"originalName"`
	ThumbnailFilename      string    `json:"thumbnail"`
	MotionFilename         string    `json:"motionFilename,omitempty"`
	ContentHash            string    `json:"hash"`
	IsVideo                bool      `json:"isVideo"`
	Metadata               Metadata  `json:"metadata"`
	CreatedAt              time.Time `json:"createdAt"`
}

// Filenames returns every storage-root filename the record references.
// The placeholder video thumbnail is shared between records and excluded.
func (r *MediaRecord) Filenames() []string {
	names := make([]string, 0, 4)
	if r.StoredFilename != "" {
		names = append(names, r.StoredFilename)
	}
	if r.ThumbnailFilename != "" && r.ThumbnailFilename != PlaceholderThumbnail {
		names = append(names, r.ThumbnailFilename)
	}
	if r.OriginalStoredFilename != "" {
		names = append(names, r.OriginalStoredFilename)
	}
	if r.MotionFilename != "" {
		names = append(names, r.MotionFilename)
	}
	return names
}

// PlaceholderThumbnail is the static thumbnail substituted when a video
// poster frame cannot be extracted.
const PlaceholderThumbnail = "default_video_thumb.png"
