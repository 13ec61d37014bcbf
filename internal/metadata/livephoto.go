package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"photostore/internal/logging"
	"photostore/internal/metrics"

	"github.com/trimmer-io/go-xmp/xmp"
)

// Live Photo detection signals, in check order. Only these two signals
// may mark a photo live; anything else would risk false positives.
const (
	SignalMotionTag  = "motion_tag"
	SignalSiblingMov = "sibling_mov"
)

// motionTagSuffixes are the XMP properties known to indicate an embedded
// or companion motion clip. Google wrote MicroVideo before Android 11 and
// MotionPhoto after; Apple live photos surface a content identifier.
var motionTagSuffixes = []string{
	"MicroVideo",
	"MotionPhoto",
	"MotionPhotoVideo",
	"LivePhotoID",
	"ContentIdentifier",
}

// DetectLivePhoto reports whether the image at path is a Live Photo and
// which signal matched. First match wins; detection fails open (false
// negatives are acceptable, the photo is still stored as a plain image).
func DetectLivePhoto(path string) (bool, string) {
	if hasMotionTag(path) {
		metrics.LivePhotosDetected.WithLabelValues(SignalMotionTag).Inc()
		return true, SignalMotionTag
	}

	if _, ok := FindMotionCompanion(path); ok {
		metrics.LivePhotosDetected.WithLabelValues(SignalSiblingMov).Inc()
		return true, SignalSiblingMov
	}

	return false, ""
}

// hasMotionTag scans the file's XMP packets for known motion indicators.
func hasMotionTag(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	packets, err := xmp.ScanPackets(file)
	if err != nil {
		// Most images carry no XMP packet at all; that is not an error
		// worth surfacing.
		logging.Debug("No XMP packets in %s: %v", path, err)
		return false
	}

	for _, packet := range packets {
		var doc xmp.Document
		if err := xmp.Unmarshal(packet, &doc); err != nil {
			logging.Debug("Unparsable XMP packet in %s: %v", path, err)
			continue
		}

		paths, err := doc.ListPaths()
		if err != nil {
			continue
		}
		for _, p := range paths {
			for _, suffix := range motionTagSuffixes {
				if strings.HasSuffix(string(p.Path), suffix) && p.Value != "" && p.Value != "0" && p.Value != "false" {
					logging.Debug("Motion tag %s=%s in %s", p.Path, p.Value, path)
					return true
				}
			}
		}
	}

	return false
}

// FindMotionCompanion looks for a same-basename .mov next to the given
// image file. Both lowercase and uppercase extensions are checked
// explicitly; case-sensitive filesystems see iOS uploads both ways.
func FindMotionCompanion(imagePath string) (string, bool) {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))

	for _, ext := range []string{".mov", ".MOV"} {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
