package root

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	featuresCmd "github.com/compatguard/cli/pkg/cmd/features"
	lintCmd "github.com/compatguard/cli/pkg/cmd/lint"
	scanCmd "github.com/compatguard/cli/pkg/cmd/scan"
	transformCmd "github.com/compatguard/cli/pkg/cmd/transform"
	versionCmd "github.com/compatguard/cli/pkg/cmd/version"
	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/debuglog"
)

func NewCmdRoot(version, buildDate string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:           "compatguard <command> [flags]",
		Short:         "Check web projects against Baseline browser compatibility",
		SilenceUsage:  true,
		SilenceErrors: true,

		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Usage()
		},

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(cmd.Root().PersistentFlags(), map[string]string{
				"log-level":     config.KeyLogLevel,
				"source":        config.KeySource,
				"features-file": config.KeyFeaturesFile,
			}); err != nil {
				return err
			}
			if err := debuglog.Configure(os.Stderr, config.GetLogLevel()); err != nil {
				logrus.Warnf("invalid log level %q, using warn", config.GetLogLevel())
			}
			return nil
		},
	}

	// Initialize config
	if err := config.NewConfig(); err != nil {
		logrus.Warn(err)
	}

	formattedVersion := versionCmd.Format(version, buildDate)
	cmd.SetVersionTemplate(formattedVersion)
	cmd.Version = formattedVersion
	cmd.Flags().Bool("version", false, "Print the version and exit")

	flags := cmd.PersistentFlags()
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("source", "builtin", "Feature data source: builtin, file or webstatus")
	flags.String("features-file", "", "YAML or web-features JSON catalog used with --source file")

	// Child commands
	cmd.AddCommand(scanCmd.NewCmdScan())
	cmd.AddCommand(lintCmd.NewCmdLint())
	cmd.AddCommand(featuresCmd.NewCmdFeatures())
	cmd.AddCommand(transformCmd.NewCmdTransform())
	cmd.AddCommand(versionCmd.NewCmdVersion(version, buildDate))

	return cmd
}
