package build

import (
	"runtime/debug"
	"strings"
)

// Set via -ldflags at release time.
var Version = "dev"
var Date = ""

// SentryEnvironment is "development" for local builds.
var SentryEnvironment = "development"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	if Version != "dev" && !strings.Contains(Version, "-") {
		SentryEnvironment = "production"
	}
}
