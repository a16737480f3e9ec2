package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

func NewCmdVersion(version, buildDate string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the compatguard version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), Format(version, buildDate))
		},
	}
	return cmd
}

func Format(version, buildDate string) string {
	version = strings.TrimPrefix(version, "v")
	url := changelogURL(version)
	if buildDate != "" {
		version = fmt.Sprintf("%s (%s)", version, buildDate)
	}
	return fmt.Sprintf("compatguard version %s\n%s\n", version, url)
}

var releasePattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[\w.]+)?$`)

func changelogURL(version string) string {
	path := "https://github.com/compatguard/cli"
	if !releasePattern.MatchString(version) || strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s/releases/latest", path)
	}
	return fmt.Sprintf("%s/releases/tag/v%s", path, strings.TrimPrefix(version, "v"))
}
