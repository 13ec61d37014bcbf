// Package config manages the persisted user configuration: the storage
// root override, the backup drive path, and the "main computer"
// designation. The configuration lives in a single config.json document in
// a fixed per-user directory, separate from the storage root.
//
// The Store is loaded once at startup and passed explicitly to the
// components that need it; call Reload to pick up external edits.
package config
