// Package artifact produces the derived files stored alongside every
// original upload: the normalized display copy, the 300x300 thumbnail,
// and video poster frames.
//
// Image work prefers libvips for its decode-time shrinking and HEIC
// support, falling back to pure-Go decoding when vips is unavailable.
// Video frames are extracted by shelling out to ffmpeg.
package artifact
