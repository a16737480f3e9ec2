package lint

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/compatguard/cli/pkg/compliance"
	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/helpers"
	"github.com/compatguard/cli/pkg/linter"
	"github.com/compatguard/cli/pkg/rules"
	"github.com/compatguard/cli/pkg/traces"
)

type lintOptions struct {
	file     string
	fileType string
	features []string
	format   string
	stdin    io.Reader
	stdout   io.Writer
}

func NewCmdLint() *cobra.Command {
	var opts lintOptions

	cmd := &cobra.Command{
		Use:   "lint [file|-]",
		Short: "Lint a single file or stdin",
		Example: `  compatguard lint src/styles.css
  cat app.js | compatguard lint - --type js
  compatguard lint --type generic --feature dialog --feature popover`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return config.BindFlags(cmd.Flags(), map[string]string{
				"target":        config.KeyTargetYear,
				"target-status": config.KeyTargetStatus,
				"fail-on":       config.KeyFailOn,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runOpts := opts
			if len(args) > 0 {
				runOpts.file = args[0]
			}
			runOpts.stdin = cmd.InOrStdin()
			runOpts.stdout = cmd.OutOrStdout()

			ctx, end := traces.TraceCommand(cmd.Context(), "lint", attribute.String("file", runOpts.file))
			err := runLint(ctx, runOpts)
			end(err)
			return err
		},
	}

	flags := cmd.Flags()
	flags.Int("target", 2024, "Baseline year to check against")
	flags.String("target-status", "high", "Baseline tier to accept: high or low")
	flags.String("fail-on", "error", "Lowest severity that fails: error or warning")
	flags.StringVar(&opts.fileType, "type", "", "File type (css, js, ts, html, generic); detected from the file extension by default")
	flags.StringArrayVar(&opts.features, "feature", nil, "Feature identifier to check in addition to detected usage (repeatable)")
	flags.StringVar(&opts.format, "format", "text", "Output format: text or json")

	return cmd
}

func runLint(ctx context.Context, opts lintOptions) error {
	out := opts.stdout
	if out == nil {
		out = os.Stdout
	}

	code, name, err := readInput(opts)
	if err != nil {
		return err
	}

	fileType := opts.fileType
	if fileType == "" {
		ft, _ := linter.FileTypeFromPath(opts.file)
		fileType = string(ft)
	}

	ruleCtx, err := config.RuleContext()
	if err != nil {
		return err
	}
	l, err := helpers.NewLinter(ruleCtx)
	if err != nil {
		return err
	}
	if err := l.Initialize(ctx); err != nil {
		return err
	}

	res, err := l.Lint(code, fileType, rules.Input{File: name, Features: opts.features})
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		if err := helpers.PrintJSON(out, res); err != nil {
			return err
		}
	case "text":
		helpers.PrintDiagnostics(out, res.Diagnostics, helpers.IsTerminalWriter(out))
		report := compliance.NewReport(res.Diagnostics, nil, config.GetFailOn())
		fmt.Fprintln(out, compliance.SummarizeReport(report))
	default:
		return fmt.Errorf("unknown format %q: want text or json", opts.format)
	}

	if compliance.HasCriticalIssues(res.Diagnostics, config.GetFailOn()) {
		return &helpers.ExitError{Code: 1}
	}
	return nil
}

func readInput(opts lintOptions) (code, name string, err error) {
	switch opts.file {
	case "":
		if len(opts.features) > 0 {
			return "", "", nil
		}
		return "", "", fmt.Errorf("nothing to lint: pass a file, - for stdin, or --feature")
	case "-":
		if opts.stdin == nil {
			opts.stdin = os.Stdin
		}
		data, err := io.ReadAll(opts.stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return "", "", err
	}
	return string(data), opts.file, nil
}
