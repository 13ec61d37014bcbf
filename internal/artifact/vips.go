package artifact

import (
	"fmt"
	"sync"

	"photostore/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsMu      sync.Mutex
	vipsRunning bool
)

// InitVips starts libvips with its log output routed into the
// application logger. Call once at startup; generators fall back to
// pure-Go image processing when this fails or is skipped.
func InitVips() (err error) {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsRunning {
		return nil
	}

	// vips.Startup panics rather than returning errors, for example on
	// a libvips older than it supports. Convert that into an error so
	// the caller can fall back to the pure-Go path.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("libvips startup failed: %v", r)
		}
	}()

	// Logging must be wired before Startup so early vips messages land
	// in our logger instead of stderr.
	vips.LoggingSettings(forwardVipsLog, vipsThreshold())

	// Small cache on purpose: uploads arrive in bursts and each image
	// is processed exactly once, so a large operation cache buys
	// nothing.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsRunning = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
	return nil
}

// vipsThreshold maps the application log level to the lowest vips level
// worth receiving.
func vipsThreshold() vips.LogLevel {
	switch logging.GetLevel() {
	case logging.LevelDebug:
		return vips.LogLevelInfo
	case logging.LevelWarn:
		return vips.LogLevelError
	case logging.LevelError:
		return vips.LogLevelCritical
	default:
		return vips.LogLevelWarning
	}
}

func forwardVipsLog(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("vips %s: %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("vips %s: %s", domain, msg)
	default:
		logging.Debug("vips %s: %s", domain, msg)
	}
}

// ShutdownVips releases libvips resources. Safe to call more than once.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if !vipsRunning {
		return
	}
	vips.Shutdown()
	vipsRunning = false
	logging.Info("libvips shut down")
}

// IsVipsAvailable reports whether libvips is initialized.
func IsVipsAvailable() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsRunning
}
