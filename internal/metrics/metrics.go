package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photostore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photostore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photostore_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Ingestion pipeline metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photostore_uploads_total",
			Help: "Total number of processed uploads by outcome",
		},
		[]string{"type", "outcome"}, // type: image|video, outcome: stored|rejected|failed
	)

	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photostore_upload_duration_seconds",
			Help:    "End-to-end processing duration of one uploaded file",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"type"},
	)

	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photostore_upload_bytes_total",
			Help: "Total raw bytes accepted into the storage root",
		},
	)

	MetadataExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photostore_metadata_extractions_total",
			Help: "Metadata extraction attempts by outcome",
		},
		[]string{"type", "outcome"}, // outcome: full|partial|empty|degraded
	)

	LivePhotosDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photostore_live_photos_detected_total",
			Help: "Live Photo detections by signal",
		},
		[]string{"signal"}, // motion_tag|sibling_mov
	)
)

// Artifact generation metrics
var (
	ArtifactGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photostore_artifact_generations_total",
			Help: "Artifact generation attempts by kind and status",
		},
		[]string{"kind", "status"}, // kind: normalize|thumbnail|poster, status: success|error|placeholder
	)

	ArtifactDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photostore_artifact_duration_seconds",
			Help:    "Artifact generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	FFmpegDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photostore_ffmpeg_duration_seconds",
			Help:    "Duration of ffmpeg/ffprobe invocations",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"}, // ffmpeg|ffprobe
	)
)

// Catalog metrics
var (
	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photostore_catalog_records",
			Help: "Number of records in the catalog at last read",
		},
	)

	CatalogMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photostore_catalog_mutations_total",
			Help: "Catalog mutations by operation and status",
		},
		[]string{"operation", "status"}, // operation: append|delete, status: success|error|busy
	)

	CatalogMutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photostore_catalog_mutation_duration_seconds",
			Help:    "Duration of locked catalog mutations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	CatalogLockRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photostore_catalog_lock_retries_total",
			Help: "Lock acquisition attempts that found the lock held",
		},
	)

	CatalogLockFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photostore_catalog_lock_failures_total",
			Help: "Lock acquisitions abandoned after the retry budget",
		},
	)

	CatalogCorruptReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photostore_catalog_corrupt_reads_total",
			Help: "Catalog reads that found an unparsable document and self-healed",
		},
	)
)
