package resolver

import "github.com/compatguard/cli/pkg/features"

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

func Risk(status features.Status) RiskLevel {
	switch status {
	case features.NotBaseline, features.Limited:
		return RiskCritical
	case features.Newly:
		return RiskHigh
	case features.Widely:
		return RiskLow
	}
	return RiskMedium
}

// Advice is a one-line recommendation for a feature with the given status.
func Advice(status features.Status, name string) string {
	switch status {
	case features.Widely:
		return name + " is widely available - safe to use"
	case features.Newly:
		return name + " is newly available - consider polyfills for older browsers"
	case features.Limited:
		return name + " has limited support - use with caution and provide fallbacks"
	case features.NotBaseline:
		return name + " is not Baseline - avoid or provide comprehensive polyfills"
	}
	return name + " could not be classified - " + spellingHint
}
