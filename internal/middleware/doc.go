// Package middleware provides the HTTP middleware chain: W3C request
// logging, Prometheus metrics and gzip compression for JSON responses.
package middleware
