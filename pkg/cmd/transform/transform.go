package transform

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/helpers"
	"github.com/compatguard/cli/pkg/plugin"
)

type transformOptions struct {
	file   string
	id     string
	stdout io.Writer
	stderr io.Writer
}

func NewCmdTransform() *cobra.Command {
	var opts transformOptions

	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Run the build hook over a module and print the result",
		Long: `Transform runs the same hook a bundler plugin uses. Modules with findings are
printed with a warning banner prepended; clean or unsupported modules are
printed unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runOpts := opts
			runOpts.file = args[0]
			runOpts.stdout = cmd.OutOrStdout()
			runOpts.stderr = cmd.ErrOrStderr()
			return runTransform(cmd.Context(), runOpts)
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "Module id reported to the hook; defaults to the file path")

	return cmd
}

func runTransform(ctx context.Context, opts transformOptions) error {
	out := opts.stdout
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.stderr
	if errOut == nil {
		errOut = os.Stderr
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}
	id := opts.id
	if id == "" {
		id = opts.file
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

	res, err := plugin.New(l).Transform(string(data), id)
	if err != nil {
		return err
	}
	if res == nil {
		_, err := out.Write(data)
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(errOut, "warning: %s:%d:%d %s\n", id, w.Loc.Line, w.Loc.Column, w.Text)
	}
	_, err = io.WriteString(out, res.Code)
	return err
}
