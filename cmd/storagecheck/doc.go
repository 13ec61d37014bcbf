// Command storagecheck verifies the storage root against the catalog:
// every file a record references must exist in the root. With -fix it
// recovers missing files and a missing photos.json from the default
// application directory, which is where they end up stranded when the
// storage path was changed while the server was down.
//
// Files in the root that no record references are reported but never
// touched.
//
// Usage:
//
//	storagecheck [-storage DIR] [-fix] [-v]
//
// The storage root is resolved from the configuration document unless
// overridden with -storage. The worker count for file verification can
// be set with the VERIFY_WORKERS environment variable.
package main
