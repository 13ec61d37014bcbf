// Package drives enumerates mounted drives for the backup destination
// picker. It shells out to the platform's disk tooling; there is no stable
// cross-platform API for volume listings.
package drives

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"photostore/internal/logging"
)

// Drive is one mounted volume a user can pick as a backup destination.
type Drive struct {
	Name       string `json:"name"`
	VolumeName string `json:"volumeName"`
	Size       int64  `json:"size"`
	FreeSpace  int64  `json:"freeSpace"`
}

// List enumerates mounted drives. Windows uses wmic; everything else
// falls back to POSIX df.
func List(ctx context.Context) ([]Drive, error) {
	if runtime.GOOS == "windows" {
		return listWindows(ctx)
	}
	return listPOSIX(ctx)
}

func listWindows(ctx context.Context) ([]Drive, error) {
	out, err := runCommand(ctx, "wmic", "logicaldisk", "get", "name,size,freespace,volumename", "/format:csv")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate drives: %w", err)
	}
	return parseWmicCSV(out), nil
}

// parseWmicCSV reads wmic's CSV output. The header row names the columns;
// order is not guaranteed across Windows versions.
func parseWmicCSV(out string) []Drive {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return nil
	}

	headers := strings.Split(strings.TrimSpace(lines[0]), ",")
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.TrimSpace(h)] = i
	}

	var drives []Drive
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		values := strings.Split(line, ",")
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(values) {
				return ""
			}
			return strings.TrimSpace(values[i])
		}

		name := field("Name")
		if name == "" {
			continue
		}
		drives = append(drives, Drive{
			Name:       name,
			VolumeName: field("VolumeName"),
			Size:       parseBytes(field("Size"), 1),
			FreeSpace:  parseBytes(field("FreeSpace"), 1),
		})
	}
	return drives
}

func listPOSIX(ctx context.Context) ([]Drive, error) {
	out, err := runCommand(ctx, "df", "-kP")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate drives: %w", err)
	}
	return parseDF(out), nil
}

// parseDF reads `df -kP` output: filesystem, 1K-blocks, used, available,
// capacity, mount point. Pseudo filesystems are skipped.
func parseDF(out string) []Drive {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return nil
	}

	var drives []Drive
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		device := fields[0]
		if !strings.HasPrefix(device, "/dev/") {
			continue
		}

		drives = append(drives, Drive{
			Name:       fields[5],
			VolumeName: device,
			Size:       parseBytes(fields[1], 1024),
			FreeSpace:  parseBytes(fields[3], 1024),
		})
	}
	return drives
}

func parseBytes(s string, unit int64) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v * unit
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Debug("%s failed: %v, stderr: %s", name, err, stderr.String())
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}
