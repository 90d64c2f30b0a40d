// Package version exposes build metadata, populated at build time through
// -ldflags or recovered from the embedded module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set at build time using -ldflags.
var (
	// Version is the semantic version of the application.
	Version = "dev"

	// GitCommit is the git commit hash when the binary was built.
	GitCommit = "unknown"
)

// Get returns the application version, falling back to module build info.
func Get() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				return fmt.Sprintf("dev-%s", setting.Value[:7])
			}
		}
	}
	return "dev"
}

// Detailed returns a multi-field version string for the version command.
func Detailed() string {
	return fmt.Sprintf("tandem %s (commit %s, %s, %s/%s)",
		Get(), GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
