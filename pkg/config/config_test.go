package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatguard/cli/pkg/diagnostics"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, load(filepath.Join(t.TempDir(), "missing.yaml")))

	ctx, err := RuleContext()
	require.NoError(t, err)
	assert.Equal(t, diagnostics.DefaultContext(), ctx)
	assert.Equal(t, diagnostics.SeverityError, GetFailOn())
	assert.Equal(t, "builtin", GetSource())
	assert.Equal(t, 30*time.Second, GetLoadTimeout())
	assert.Equal(t, 8, GetConcurrency())
	assert.Empty(t, GetExclude())
}

func TestLoadFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "compatguard.yaml")
	data := []byte(`target_year: 2023
target_status: low
framework: react
enable_quick_fixes: false
fail_on: warning
exclude:
  - "**/*.min.js"
webstatus:
  rps: 2
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	require.NoError(t, load(path))

	ctx, err := RuleContext()
	require.NoError(t, err)
	assert.Equal(t, diagnostics.RuleContext{
		Framework:        "react",
		TargetYear:       2023,
		TargetStatus:     diagnostics.TargetLow,
		EnableQuickFixes: false,
	}, ctx)
	assert.Equal(t, diagnostics.SeverityWarning, GetFailOn())
	assert.Equal(t, []string{"**/*.min.js"}, GetExclude())
	assert.Equal(t, 2.0, GetWebstatusRPS())
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("COMPATGUARD_TARGET_YEAR", "2022")
	t.Setenv("COMPATGUARD_WEBSTATUS_BASE_URL", "http://localhost:9999")

	require.NoError(t, load(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Equal(t, 2022, GetTargetYear())
	assert.Equal(t, "http://localhost:9999", GetWebstatusBaseURL())
}

func TestInvalidTargetStatus(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	require.NoError(t, load(filepath.Join(t.TempDir(), "missing.yaml")))

	viper.Set(KeyTargetStatus, "medium")
	_, err := RuleContext()
	assert.Error(t, err)
}

func TestInvalidFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "compatguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_year: [\n"), 0o600))
	assert.Error(t, load(path))
}
