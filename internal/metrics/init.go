package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Ingestion pipeline ---
	for _, t := range []string{"image", "video"} {
		for _, outcome := range []string{"stored", "rejected", "failed"} {
			UploadsTotal.WithLabelValues(t, outcome)
		}
		UploadDuration.WithLabelValues(t)
		for _, outcome := range []string{"full", "partial", "empty", "degraded"} {
			MetadataExtractions.WithLabelValues(t, outcome)
		}
	}

	for _, signal := range []string{"motion_tag", "sibling_mov"} {
		LivePhotosDetected.WithLabelValues(signal)
	}

	// --- Artifact generation ---
	for _, kind := range []string{"normalize", "thumbnail", "poster"} {
		for _, status := range []string{"success", "error", "placeholder"} {
			ArtifactGenerations.WithLabelValues(kind, status)
		}
		ArtifactDuration.WithLabelValues(kind)
	}

	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		FFmpegDuration.WithLabelValues(tool)
	}

	// --- Catalog ---
	for _, op := range []string{"append", "delete"} {
		for _, status := range []string{"success", "error", "busy"} {
			CatalogMutations.WithLabelValues(op, status)
		}
		CatalogMutationDuration.WithLabelValues(op)
	}
}
