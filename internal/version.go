package internal

import (
	"fmt"
	"runtime"
)

// Version contains version and Git commit information.
//
// Commit is set at build time, e.g. -ldflags "-X github.com/icinga/icinga-tagfilter/internal.Version.Commit=$(git rev-parse HEAD)".
var Version = struct {
	Version string
	Commit  string
}{
	Version: "0.1.0",
}

// PrintVersion writes the version and build information of the named project to stdout.
func PrintVersion(project string) {
	fmt.Printf("%s version: %s\n\n", project, Version.Version)

	fmt.Println("Build information:")
	fmt.Printf("  Go version: %s (%s, %s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if Version.Commit != "" {
		fmt.Println("  Git commit:", Version.Commit)
	}
}

// SysConfDir is the path to the system configuration directory, it may be overridden at build time.
var SysConfDir = "/etc"
