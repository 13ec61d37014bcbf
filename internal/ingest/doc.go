// Package ingest runs uploaded files through the storage pipeline: content
// hashing, duplicate rejection, artifact generation, metadata extraction and
// the final catalog append. One Result per input, failures isolated per file.
package ingest
