package helpers

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether both stdout and stderr are interactive and we
// are not running under CI.
func IsTerminal() bool {
	return !IsCI() && isTerminal(os.Stdout) && isTerminal(os.Stderr)
}

// IsTerminalWriter reports whether w is an interactive terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && !IsCI() && isTerminal(f)
}

func IsCI() bool {
	return os.Getenv("CI") != "" || // GitHub Actions, Travis CI, CircleCI, Cirrus CI, GitLab CI, AppVeyor, CodeShip, dsari
		os.Getenv("BUILD_NUMBER") != "" || // Jenkins, TeamCity
		os.Getenv("RUN_ID") != "" // TaskCluster, dsari
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
