package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mgutz/ansi"
	"github.com/sirupsen/logrus"

	"github.com/compatguard/cli/internal/build"
	"github.com/compatguard/cli/internal/update"
	"github.com/compatguard/cli/pkg/cmd/root"
	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/helpers"
	"github.com/compatguard/cli/pkg/traces"
)

func main() {
	code := runMain(os.Args[1:], os.Stderr)
	os.Exit(code)
}

func runMain(args []string, stderr io.Writer) int {
	if dsn := os.Getenv("COMPATGUARD_SENTRY_DSN"); dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: build.SentryEnvironment,
			Release:     build.Version,
		})
		if err != nil {
			logrus.Warnf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := traces.Init(ctx, build.Version)
	if err != nil {
		logrus.Warnf("tracing disabled: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	updateMessageChan := make(chan *update.Release, 1)
	go func() {
		rel, _ := checkForUpdate(ctx, build.Version)
		updateMessageChan <- rel
	}()

	rootCmd := root.NewCmdRoot(build.Version, build.Date)
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	err = rootCmd.ExecuteContext(ctx)
	if err == nil {
		printUpdate(stderr, <-updateMessageChan, build.Version)
		return 0
	}

	var exitErr *helpers.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	sentry.CaptureException(err)
	prefix := "Error:"
	if helpers.IsTerminalWriter(stderr) {
		prefix = ansi.Color(prefix, "red+b")
	}
	fmt.Fprintf(stderr, "%s %v\n", prefix, err)
	return 1
}

func checkForUpdate(ctx context.Context, currentVersion string) (*update.Release, error) {
	if !shouldCheckForUpdate() {
		return nil, nil
	}

	stateFilePath, err := config.StateFile()
	if err != nil {
		return nil, err
	}

	return update.CheckForUpdate(ctx, update.LatestReleaseURL, stateFilePath, currentVersion)
}

func shouldCheckForUpdate() bool {
	if os.Getenv("COMPATGUARD_NO_UPDATE_NOTIFIER") != "" {
		return false
	}
	return helpers.IsTerminal()
}

func printUpdate(w io.Writer, rel *update.Release, current string) {
	if rel == nil {
		return
	}
	fmt.Fprintf(w, "\n\n%s%s%s %s → %s\n",
		ansi.Color("A new release of compatguard is available, released on ", "yellow"),
		ansi.Color(rel.PublishedAt.Format("2006-01-02"), "yellow"),
		ansi.Color(":", "yellow"),
		ansi.Color(current, "cyan"),
		ansi.Color(rel.Version, "cyan"))
	fmt.Fprintf(w, "%s\n\n", ansi.Color(rel.URL, "yellow"))
}
