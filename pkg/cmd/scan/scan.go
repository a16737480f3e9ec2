package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/helpers"
	"github.com/compatguard/cli/pkg/scanner"
	"github.com/compatguard/cli/pkg/traces"
)

type scanOptions struct {
	path   string
	format string
	watch  bool
	stdout io.Writer
	stderr io.Writer
}

func NewCmdScan() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a project for web features outside the Baseline target",
		Long: `Scan lints every CSS, JavaScript, TypeScript and HTML file under path and
reports features that are not Baseline for the target year, along with a
compliance score per category.

Exits with status 1 when any finding is at or above --fail-on.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return config.BindFlags(cmd.Flags(), map[string]string{
				"target":        config.KeyTargetYear,
				"target-status": config.KeyTargetStatus,
				"fail-on":       config.KeyFailOn,
				"exclude":       config.KeyExclude,
				"concurrency":   config.KeyConcurrency,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runOpts := opts
			runOpts.path = "."
			if len(args) > 0 {
				runOpts.path = args[0]
			}
			runOpts.stdout = cmd.OutOrStdout()
			runOpts.stderr = cmd.ErrOrStderr()

			ctx, end := traces.TraceCommand(cmd.Context(), "scan", attribute.String("path", runOpts.path))
			err := runScan(ctx, runOpts)
			end(err)
			return err
		},
	}

	flags := cmd.Flags()
	flags.Int("target", 2024, "Baseline year to check against")
	flags.String("target-status", "high", "Baseline tier to accept: high (widely available) or low (newly available)")
	flags.String("fail-on", "error", "Lowest severity that fails the scan: error or warning")
	flags.StringSlice("exclude", nil, "Glob patterns to skip, relative to path (repeatable)")
	flags.Int("concurrency", scanner.DefaultConcurrency, "Number of files linted in parallel")
	flags.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flags.BoolVar(&opts.watch, "watch", false, "Rescan when files change")

	return cmd
}

func runScan(ctx context.Context, opts scanOptions) error {
	out := opts.stdout
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q: want text or json", opts.format)
	}

	ruleCtx, err := config.RuleContext()
	if err != nil {
		return err
	}
	l, err := helpers.NewLinter(ruleCtx)
	if err != nil {
		return err
	}

	failOn := config.GetFailOn()
	s := scanner.New(l, failOn)
	scanOpts := scanner.Options{
		Exclude:     config.GetExclude(),
		Concurrency: config.GetConcurrency(),
	}
	color := helpers.IsTerminalWriter(out)

	emit := func(res *scanner.Result) error {
		if opts.format == "json" {
			return helpers.PrintJSON(out, res)
		}
		helpers.PrintScan(out, res, color)
		return nil
	}

	if opts.watch {
		fmt.Fprintf(errOut, "Watching %s for changes (Ctrl+C to stop)\n", opts.path)
		err := s.Watch(ctx, opts.path, scanOpts, func(res *scanner.Result, err error) {
			if err != nil {
				fmt.Fprintf(errOut, "scan failed: %v\n", err)
				return
			}
			if err := emit(res); err != nil {
				fmt.Fprintf(errOut, "%v\n", err)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	var spin *spinner.Spinner
	if opts.format == "text" && helpers.IsTerminalWriter(errOut) {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(errOut))
		spin.Suffix = " Scanning " + opts.path
		spin.Start()
	}
	res, err := s.Scan(ctx, opts.path, scanOpts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if err := emit(res); err != nil {
		return err
	}
	if res.Critical(failOn) {
		return &helpers.ExitError{Code: 1}
	}
	return nil
}
