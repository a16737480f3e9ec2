package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/compatguard/cli/pkg/diagnostics"
)

const (
	KeyTargetYear       = "target_year"
	KeyTargetStatus     = "target_status"
	KeyFramework        = "framework"
	KeyEnableQuickFixes = "enable_quick_fixes"
	KeyFailOn           = "fail_on"
	KeySource           = "source"
	KeyFeaturesFile     = "features_file"
	KeyLoadTimeout      = "load_timeout"
	KeyConcurrency      = "concurrency"
	KeyExclude          = "exclude"
	KeyLogLevel         = "log_level"
	KeyWebstatusBaseURL = "webstatus.base_url"
	KeyWebstatusRPS     = "webstatus.rps"
)

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault(KeyTargetYear, 2024)
	viper.SetDefault(KeyTargetStatus, string(diagnostics.TargetHigh))
	viper.SetDefault(KeyFramework, "generic")
	viper.SetDefault(KeyEnableQuickFixes, true)
	viper.SetDefault(KeyFailOn, string(diagnostics.SeverityError))
	viper.SetDefault(KeySource, "builtin")
	viper.SetDefault(KeyLoadTimeout, 30*time.Second)
	viper.SetDefault(KeyConcurrency, 8)
	viper.SetDefault(KeyExclude, []string{})
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyWebstatusBaseURL, "https://api.webstatus.dev/v1")
	viper.SetDefault(KeyWebstatusRPS, 5.0)
}

func NewConfig() error {
	configPath, err := xdg.ConfigFile("compatguard/compatguard.yaml")
	if err != nil {
		return err
	}
	return load(configPath)
}

// load reads configPath into the global viper instance. A missing file is
// not an error.
func load(configPath string) error {
	SetDefaults()

	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix("COMPATGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to read config file: %v", err)
	}
	return nil
}

func GetTargetYear() int {
	return viper.GetInt(KeyTargetYear)
}

func GetSource() string {
	return viper.GetString(KeySource)
}

func GetFeaturesFile() string {
	return viper.GetString(KeyFeaturesFile)
}

func GetLoadTimeout() time.Duration {
	return viper.GetDuration(KeyLoadTimeout)
}

func GetConcurrency() int {
	if n := viper.GetInt(KeyConcurrency); n > 0 {
		return n
	}
	return 1
}

func GetExclude() []string {
	return viper.GetStringSlice(KeyExclude)
}

func GetLogLevel() string {
	return viper.GetString(KeyLogLevel)
}

func GetWebstatusBaseURL() string {
	return viper.GetString(KeyWebstatusBaseURL)
}

func GetWebstatusRPS() float64 {
	return viper.GetFloat64(KeyWebstatusRPS)
}

func GetFailOn() diagnostics.Severity {
	return diagnostics.ParseSeverity(strings.ToLower(viper.GetString(KeyFailOn)))
}

// RuleContext builds the engine context from the current configuration.
func RuleContext() (diagnostics.RuleContext, error) {
	ctx := diagnostics.DefaultContext()
	ctx.TargetYear = GetTargetYear()
	ctx.EnableQuickFixes = viper.GetBool(KeyEnableQuickFixes)
	if fw := viper.GetString(KeyFramework); fw != "" {
		ctx.Framework = fw
	}

	switch ts := diagnostics.TargetStatus(strings.ToLower(viper.GetString(KeyTargetStatus))); ts {
	case diagnostics.TargetHigh, diagnostics.TargetLow:
		ctx.TargetStatus = ts
	default:
		return ctx, fmt.Errorf("invalid %s %q: want high or low", KeyTargetStatus, ts)
	}
	return ctx, nil
}

// BindFlags binds flag names to config keys so that flags set on the command
// line override the config file and environment. Call it from the running
// command only; viper keeps one binding per key.
func BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func StateFile() (string, error) {
	return xdg.ConfigFile("compatguard/state.yaml")
}
