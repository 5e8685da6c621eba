// Package platform provides platform-specific path detection for the Apache
// configuration directories, control command and service unit.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// PathConfig contains the paths for a web server driver.
type PathConfig struct {
	Available string
	Enabled   string
}

// PlatformPaths contains the detected Apache layout.
type PlatformPaths struct {
	Apache PathConfig

	// Ctl is the control command used for configtest and graceful restarts.
	Ctl string

	// Unit is the systemd unit reloaded after changes; empty without systemd.
	Unit string
}

// SharedDir reports whether available and enabled are one directory, as in
// RHEL's conf.d and Homebrew's vhosts layouts. Files there are always active.
func (c PathConfig) SharedDir() bool {
	return c.Available == c.Enabled
}

// DetectPaths returns platform-specific default paths for Apache.
// It checks for common installation locations based on the OS and architecture.
func DetectPaths() (*PlatformPaths, error) {
	switch runtime.GOOS {
	case "darwin":
		return detectDarwinPaths(pathExists)
	case "linux":
		return detectLinuxPaths(pathExists)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectDarwinPaths detects paths for macOS (Homebrew installations).
func detectDarwinPaths(exists func(string) bool) (*PlatformPaths, error) {
	// Check for Apple Silicon Homebrew path first
	for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
		if exists(prefix + "/etc/httpd") {
			dir := prefix + "/etc/httpd/extra/vhosts"
			return &PlatformPaths{
				Apache: PathConfig{Available: dir, Enabled: dir},
				Ctl:    "apachectl",
			}, nil
		}
	}

	return nil, fmt.Errorf("homebrew httpd installation not found (checked /opt/homebrew and /usr/local)")
}

// detectLinuxPaths detects paths for Linux distributions.
func detectLinuxPaths(exists func(string) bool) (*PlatformPaths, error) {
	// Try Debian/Ubuntu paths first (most common)
	if exists("/etc/apache2") {
		return &PlatformPaths{
			Apache: PathConfig{
				Available: "/etc/apache2/sites-available",
				Enabled:   "/etc/apache2/sites-enabled",
			},
			Ctl:  "apache2ctl",
			Unit: "apache2.service",
		}, nil
	}

	// Try RHEL/CentOS paths
	if exists("/etc/httpd") {
		return &PlatformPaths{
			Apache: PathConfig{
				Available: "/etc/httpd/conf.d",
				Enabled:   "/etc/httpd/conf.d",
			},
			Ctl:  "apachectl",
			Unit: "httpd.service",
		}, nil
	}

	return nil, fmt.Errorf("apache configuration paths not found (checked /etc/apache2, /etc/httpd)")
}

// GetPathsForDriver returns the paths for a specific driver from PlatformPaths.
func (p *PlatformPaths) GetPathsForDriver(driverName string) (PathConfig, error) {
	switch driverName {
	case "apache":
		return p.Apache, nil
	default:
		return PathConfig{}, fmt.Errorf("unknown driver: %s (available: apache)", driverName)
	}
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
