// Package catalog is the authoritative store for media records.
//
// Records are persisted as a single JSON document (photos.json) in the
// storage root. Every read-modify-write cycle runs under an advisory lock
// file (.photos.lock) so that independent process instances sharing the
// storage root cannot interleave mutations. The lock is scoped to one
// machine's filesystem; it does not arbitrate between machines.
//
// The catalog is self-healing: a missing or corrupt document reads as
// empty, and the next successful mutation rewrites a valid document.
package catalog
