package mediatypes

import "testing"

func TestGetFileType(t *testing.T) {
	tests := []struct {
		ext  string
		want FileType
	}{
		{".jpg", FileTypeImage},
		{".JPG", FileTypeImage},
		{".jpeg", FileTypeImage},
		{".heic", FileTypeImage},
		{".png", FileTypeImage},
		{".dng", FileTypeImage},
		{".mp4", FileTypeVideo},
		{".MOV", FileTypeVideo},
		{".mkv", FileTypeVideo},
		{".3gp", FileTypeVideo},
		{".txt", FileTypeOther},
		{".exe", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetFileType(tt.ext); got != tt.want {
				t.Errorf("GetFileType(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestGetFileTypeForPath(t *testing.T) {
	if got := GetFileTypeForPath("/tmp/uploads/IMG_0001.HEIC"); got != FileTypeImage {
		t.Errorf("GetFileTypeForPath(HEIC) = %v, want image", got)
	}
	if !IsVideo("clip.webm") {
		t.Error("IsVideo(clip.webm) = false, want true")
	}
	if IsVideo("photo.jpg") {
		t.Error("IsVideo(photo.jpg) = true, want false")
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".jpg", "image/jpeg"},
		{".mov", "video/quicktime"},
		{".MOV", "video/quicktime"},
		{".nef", "image/x-nikon-nef"},
		{".xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.ext); got != tt.want {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestPairableImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"IMG_0001.jpg", true},
		{"IMG_0001.JPEG", true},
		{"IMG_0001.heic", true},
		{"IMG_0001.png", false},
		{"IMG_0001.mov", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairableImage(tt.name); got != tt.want {
				t.Errorf("PairableImage(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
