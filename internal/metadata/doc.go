// Package metadata extracts structured metadata from uploaded images and
// detects Live Photo motion companions.
//
// Extraction is best-effort by contract: a photo with unreadable EXIF is
// still stored. Results carry a tagged Outcome so callers can distinguish
// "no EXIF present" from "parser failed".
package metadata
