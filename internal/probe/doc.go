// Package probe shells out to ffprobe for technical video metadata.
//
// Probe failure is a soft failure by contract: callers receive a result
// marked degraded and substitute placeholder artifacts instead of failing
// the upload.
package probe
