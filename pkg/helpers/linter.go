package helpers

import (
	"fmt"
	"strings"

	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/linter"
	"github.com/compatguard/cli/pkg/webstatus"
)

// FeatureSource returns the registry source selected by the "source" config
// key.
func FeatureSource() (features.Source, error) {
	switch src := strings.ToLower(config.GetSource()); src {
	case "", "builtin":
		return features.Builtin(), nil
	case "file":
		path := config.GetFeaturesFile()
		if path == "" {
			return nil, fmt.Errorf("source %q requires --features-file", src)
		}
		return features.FileSource{Path: path}, nil
	case "webstatus":
		client := webstatus.NewClient(
			webstatus.WithBaseURL(config.GetWebstatusBaseURL()),
			webstatus.WithRateLimit(config.GetWebstatusRPS(), 5),
		)
		return webstatus.NewSource(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown feature source %q: want builtin, file or webstatus", src)
	}
}

// NewLinter builds a linter from the current configuration. ruleCtx
// overrides the configured rule context.
func NewLinter(ruleCtx diagnostics.RuleContext) (*linter.Linter, error) {
	src, err := FeatureSource()
	if err != nil {
		return nil, err
	}
	return linter.New(
		linter.WithRuleContext(ruleCtx),
		linter.WithSource(src),
		linter.WithLoadTimeout(config.GetLoadTimeout()),
	), nil
}

// ExitError carries a process exit code without an error message. It is
// returned when a command completed but found critical issues.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
