// Package mediatypes classifies uploaded files by extension and maps them
// to MIME types for serving.
package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType is the coarse classification an upload gets from its extension.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeOther FileType = "other"
)

type format struct {
	kind FileType
	mime string
}

// formats is the single source of truth for supported extensions.
// Camera raw formats are stored and downloadable; thumbnails for them
// are best-effort.
var formats = map[string]format{
	".jpg":  {FileTypeImage, "image/jpeg"},
	".jpeg": {FileTypeImage, "image/jpeg"},
	".png":  {FileTypeImage, "image/png"},
	".gif":  {FileTypeImage, "image/gif"},
	".bmp":  {FileTypeImage, "image/bmp"},
	".webp": {FileTypeImage, "image/webp"},
	".tiff": {FileTypeImage, "image/tiff"},
	".tif":  {FileTypeImage, "image/tiff"},
	".heic": {FileTypeImage, "image/heic"},
	".heif": {FileTypeImage, "image/heif"},
	".cr2":  {FileTypeImage, "image/x-canon-cr2"},
	".nef":  {FileTypeImage, "image/x-nikon-nef"},
	".arw":  {FileTypeImage, "image/x-sony-arw"},
	".dng":  {FileTypeImage, "image/x-adobe-dng"},

	".mp4":  {FileTypeVideo, "video/mp4"},
	".mov":  {FileTypeVideo, "video/quicktime"},
	".m4v":  {FileTypeVideo, "video/x-m4v"},
	".avi":  {FileTypeVideo, "video/x-msvideo"},
	".wmv":  {FileTypeVideo, "video/x-ms-wmv"},
	".flv":  {FileTypeVideo, "video/x-flv"},
	".webm": {FileTypeVideo, "video/webm"},
	".mkv":  {FileTypeVideo, "video/x-matroska"},
	".3gp":  {FileTypeVideo, "video/3gpp"},
}

// GetFileType classifies an extension (leading dot, case-insensitive).
// Unrecognized extensions are FileTypeOther.
func GetFileType(ext string) FileType {
	if f, ok := formats[strings.ToLower(ext)]; ok {
		return f.kind
	}
	return FileTypeOther
}

// GetFileTypeForPath classifies a file path or name.
func GetFileTypeForPath(path string) FileType {
	return GetFileType(filepath.Ext(path))
}

// IsVideo reports whether the path carries a recognized video extension.
func IsVideo(path string) bool {
	return GetFileTypeForPath(path) == FileTypeVideo
}

// GetMimeType returns the MIME type for an extension, or
// application/octet-stream for anything unrecognized.
func GetMimeType(ext string) string {
	if f, ok := formats[strings.ToLower(ext)]; ok {
		return f.mime
	}
	return "application/octet-stream"
}

// GetMimeTypeForPath returns the MIME type for a file path or name.
func GetMimeTypeForPath(path string) string {
	return GetMimeType(filepath.Ext(path))
}

// IsMediaFile reports whether the extension is a supported media format.
func IsMediaFile(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}

// PairableImage reports whether an image with this name can carry a
// Live Photo motion companion. Only JPEG and HEIC stills are checked.
func PairableImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".heic":
		return true
	}
	return false
}
