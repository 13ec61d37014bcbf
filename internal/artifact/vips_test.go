package artifact

import "testing"

func TestVipsLifecycle(t *testing.T) {
	if err := InitVips(); err != nil {
		t.Skipf("libvips unavailable: %v", err)
	}
	defer ShutdownVips()

	if !IsVipsAvailable() {
		t.Error("vips not reported available after startup")
	}

	// Starting twice is a no-op, not a second startup.
	if err := InitVips(); err != nil {
		t.Errorf("second InitVips failed: %v", err)
	}

	ShutdownVips()
	if IsVipsAvailable() {
		t.Error("vips still reported available after shutdown")
	}

	// Shutdown after shutdown must not panic.
	ShutdownVips()
}
