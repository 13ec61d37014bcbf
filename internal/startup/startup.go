package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"photostore/internal/config"
	"photostore/internal/logging"

	"github.com/gorilla/mux"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo is the build metadata exposed on the version endpoint.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo describes one method on one registered route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds the process-level configuration read from the environment.
// Persisted user settings (storage path, backup drive) live in
// internal/config instead.
type Config struct {
	AppDir          string
	UploadTmpDir    string
	Port            string
	MetricsPort     string
	LogHealthChecks bool
	MetricsEnabled  bool
}

// LoadConfig reads the environment, logs the effective configuration
// section by section, and prepares the application and staging
// directories. A directory that cannot be created or written to is a
// startup failure.
func LoadConfig() (*Config, error) {
	printBanner()

	section("CONFIGURATION")
	cfg := &Config{
		AppDir:          getEnv("PHOTOSTORE_DIR", defaultAppDir()),
		UploadTmpDir:    getEnv("UPLOAD_TMP_DIR", filepath.Join(os.TempDir(), "photostore-uploads")),
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
	}

	logging.Info("  PHOTOSTORE_DIR:      %s", cfg.AppDir)
	logging.Info("  UPLOAD_TMP_DIR:      %s", cfg.UploadTmpDir)
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_PORT:        %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	section("DIRECTORY SETUP")

	abs, err := filepath.Abs(cfg.AppDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve application directory path: %w", err)
	}
	cfg.AppDir = abs

	if err := prepareDirectory(cfg.AppDir); err != nil {
		return nil, fmt.Errorf("application directory %s: %w", cfg.AppDir, err)
	}
	logging.Info("  [OK] Application directory ready: %s", cfg.AppDir)

	if err := prepareDirectory(cfg.UploadTmpDir); err != nil {
		return nil, fmt.Errorf("upload staging directory %s: %w", cfg.UploadTmpDir, err)
	}
	logging.Info("  [OK] Upload staging directory ready: %s", cfg.UploadTmpDir)

	return cfg, nil
}

func defaultAppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return config.AppDirName
	}
	return filepath.Join(home, config.AppDirName)
}

// LogStorageInit reports the resolved storage root and catalog size.
func LogStorageInit(root string, recordCount int) {
	logging.Info("")
	section("STORAGE INITIALIZATION")
	logging.Info("  Storage root: %s", root)
	logging.Info("  [OK] Catalog loaded (%d records)", recordCount)
}

// LogPipelineInit reports which media tooling the pipeline found. All of
// it is optional: processing degrades rather than failing when a tool is
// absent.
func LogPipelineInit(vipsAvailable bool) {
	logging.Info("")
	section("PIPELINE INITIALIZATION")

	if vipsAvailable {
		logging.Info("  [OK] libvips is available")
	} else {
		logging.Warn("  libvips unavailable, falling back to pure-Go image processing")
	}

	if version, err := toolVersion("ffmpeg"); err != nil {
		logging.Warn("  ffmpeg: %v", err)
		logging.Warn("  Video poster frames will use the placeholder thumbnail")
	} else {
		logging.Info("  [OK] ffmpeg is available (%s)", version)
	}

	if version, err := toolVersion("ffprobe"); err != nil {
		logging.Warn("  ffprobe: %v", err)
		logging.Warn("  Video uploads will store degraded metadata")
	} else {
		logging.Info("  [OK] ffprobe is available (%s)", version)
	}
}

// GetRoutes walks the router and returns one RouteInfo per method per
// route. Routes without an explicit method list appear once with
// method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	walkErr := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   path,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, walkErr
}

// LogHTTPRoutes reports the HTTP setup; at debug level it also dumps the
// route table grouped by API area.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		dumpRouteTable(router)
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

func dumpRouteTable(router *mux.Router) {
	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("failed to walk routes: %v", err)
		return
	}

	byGroup := make(map[string][]RouteInfo)
	for _, route := range routes {
		group := getRouteGroup(route.Path)
		byGroup[group] = append(byGroup[group], route)
	}

	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	sort.Strings(names)

	logging.Debug("  Registered routes (%d total):", len(routes))
	logging.Debug("")
	for _, name := range names {
		label := name
		if label == "" {
			label = "root"
		}
		logging.Debug("  [%s]", label)
		for _, route := range byGroup[name] {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
		logging.Debug("")
	}
}

// getRouteGroup reduces a route path to its grouping key: "api/<area>"
// for API routes, the first segment otherwise.
func getRouteGroup(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}
	if segments[0] == "api" && len(segments) > 1 {
		return "api/" + segments[1]
	}
	return segments[0]
}

// ServerConfig carries the values reported in the startup summary.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted prints the startup summary with the reachable
// endpoints.
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s/api", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

func LogShutdownInitiated(signal string) {
	logging.Info("")
	section(fmt.Sprintf("SHUTDOWN INITIATED (received %s)", signal))
}

func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

func section(title string) {
	logging.Info("------------------------------------------------------------")
	logging.Info(title)
	logging.Info("------------------------------------------------------------")
}

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __       _____ __
   / __ \/ /_  ____  / /_____ / ___// /_____  ________
  / /_/ / __ \/ __ \/ __/ __ \\__ \/ __/ __ \/ ___/ _ \
 / ____/ / / / /_/ / /_/ /_/ /__/ / /_/ /_/ / /  /  __/
/_/   /_/ /_/\____/\__/\____/____/\__/\____/_/   \___/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")

	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs:            %d (GOMAXPROCS %d)", runtime.NumCPU(), runtime.GOMAXPROCS(0))
	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if host, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", host)
		}
	}
	logging.Info("")
}

// prepareDirectory creates the directory if needed and proves write
// access with a throwaway file. The catalog and upload staging both
// need writable directories before the server accepts traffic.
func prepareDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	probe, err := os.CreateTemp(path, ".startup-probe-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove startup probe file %s: %v", name, err)
	}
	return nil
}

// toolVersion checks that an external tool is on PATH and responds to
// -version, returning the first line of its version banner.
func toolVersion(name string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("not found in PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("version check failed: %w", err)
	}

	firstLine, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(firstLine), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("invalid boolean for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return parsed
}
