package metadata

import (
	"fmt"
	"os"

	"photostore/internal/catalog"
	"photostore/internal/logging"

	"github.com/cozy/goexif2/exif"
	"github.com/cozy/goexif2/mknote"
	"github.com/cozy/goexif2/tiff"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Outcome tags how much metadata an extraction produced.
type Outcome string

const (
	// OutcomeFull means the core fields (capture time, camera) were found.
	OutcomeFull Outcome = "full"
	// OutcomePartial means some but not all core fields were found.
	OutcomePartial Outcome = "partial"
	// OutcomeEmpty means no metadata was found or the parser failed; the
	// upload proceeds with an empty metadata object either way.
	OutcomeEmpty Outcome = "empty"
)

type exifWalker func(exif.FieldName, *tiff.Tag) error

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return w(name, tag)
}

// ExtractImage parses embedded metadata from the image at path. Parse
// failures never propagate: the returned Outcome reports what happened
// and the metadata object is simply empty.
//
// GPS coordinates are normalized to signed decimal degrees at this point;
// any display-time DMS formatting is a presentation concern.
func ExtractImage(path string) (catalog.Metadata, Outcome) {
	meta := catalog.Metadata{Orientation: 1}

	file, err := os.Open(path)
	if err != nil {
		logging.Warn("Could not open %s for metadata extraction: %v", path, err)
		return meta, OutcomeEmpty
	}
	defer file.Close()

	ex, err := exif.Decode(file)
	if err != nil && exif.IsCriticalError(err) {
		logging.Debug("EXIF decode failed for %s: %v", path, err)
		return meta, OutcomeEmpty
	}

	if ts, err := ex.DateTime(); err == nil {
		utc := ts.UTC()
		meta.DateTaken = &utc
	}

	if cameraMake, err := stringField(ex, exif.Make); err == nil {
		meta.CameraMake = cameraMake
	}
	if model, err := stringField(ex, exif.Model); err == nil {
		meta.CameraModel = model
	}

	if lat, lon, err := ex.LatLong(); err == nil {
		meta.GPS = &catalog.GPSCoordinates{Latitude: lat, Longitude: lon}
	}

	if tag, err := ex.Get(exif.Orientation); err == nil {
		if orientation, err := tag.Int(0); err == nil && orientation > 0 {
			meta.Orientation = orientation
		}
	}

	meta.Raw = rawTagMap(ex)

	return meta, classify(&meta)
}

func stringField(ex *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := ex.Get(name)
	if err != nil {
		return "", err
	}
	return tag.StringVal()
}

// rawTagMap walks every EXIF field into a plain map, preserved on the
// record for display. Values are converted by TIFF format; anything
// binary or unknown is skipped.
func rawTagMap(ex *exif.Exif) map[string]interface{} {
	raw := make(map[string]interface{})

	err := ex.Walk(exifWalker(func(name exif.FieldName, tag *tiff.Tag) error {
		key := string(name)
		switch tag.Format() {
		case tiff.StringVal:
			if v, err := tag.StringVal(); err == nil {
				raw[key] = v
			}
		case tiff.IntVal:
			if v, err := tag.Int(0); err == nil {
				raw[key] = v
			}
		case tiff.FloatVal:
			if v, err := tag.Float(0); err == nil {
				raw[key] = v
			}
		case tiff.RatVal:
			if v, err := tag.Rat(0); err == nil {
				f, _ := v.Float64()
				raw[key] = f
			}
		}
		return nil
	}))
	if err != nil {
		logging.Debug("EXIF walk stopped early: %v", err)
	}

	if len(raw) == 0 {
		return nil
	}
	return raw
}

func classify(meta *catalog.Metadata) Outcome {
	core := 0
	if meta.DateTaken != nil {
		core++
	}
	if meta.CameraMake != "" || meta.CameraModel != "" {
		core++
	}

	switch {
	case core == 2:
		return OutcomeFull
	case core > 0 || meta.GPS != nil || len(meta.Raw) > 0:
		return OutcomePartial
	default:
		return OutcomeEmpty
	}
}

// FormatCoordinates renders GPS coordinates for logs.
func FormatCoordinates(gps *catalog.GPSCoordinates) string {
	if gps == nil {
		return "none"
	}
	return fmt.Sprintf("%.6f,%.6f", gps.Latitude, gps.Longitude)
}
