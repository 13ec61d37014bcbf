// Package metrics defines the Prometheus metrics exported by photostore
// and the standalone listener that serves them.
package metrics
