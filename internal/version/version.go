// Package version reports the css-audit build version.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"     // Version string (e.g., "v0.3.0")
	GitCommit = "unknown" // Git commit hash
	GitTag    = "unknown" // Git tag
	BuildTime = "unknown" // Build timestamp
	GitDirty  = ""        // "dirty" if working directory has uncommitted changes
)

// GetVersion returns the version string for the application
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	// Installed with go install: the module version is in the build info
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	if GitTag != "unknown" && GitCommit != "unknown" {
		version := GitTag
		if short := shortCommit(); !strings.HasSuffix(GitTag, short) {
			version = fmt.Sprintf("%s-%s", GitTag, short)
		}
		if GitDirty == "dirty" {
			version += "-dirty"
		}
		return version
	}

	return "dev"
}

// GetFullVersion returns the version with commit and build time when known,
// as printed by css-audit --version
func GetFullVersion() string {
	var details []string
	if GitCommit != "unknown" && GitCommit != "" {
		details = append(details, "commit "+shortCommit())
	}
	if BuildTime != "unknown" && BuildTime != "" {
		details = append(details, "built "+BuildTime)
	}
	if len(details) == 0 {
		return GetVersion()
	}
	return fmt.Sprintf("%s (%s)", GetVersion(), strings.Join(details, ", "))
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}
