package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/sentrysmoke/internal/client"
	"github.com/roach88/sentrysmoke/internal/harness"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. SENTRY_SMOKE_CYCLES or SENTRY_SMOKE_FLUSH_TIMEOUT.
const EnvPrefix = "SENTRY_SMOKE"

// Config keys. They double as flag names and config-file keys.
const (
	keyCycles       = "cycles"
	keyEnvironment  = "environment"
	keyStrict       = "strict"
	keyDSN          = "dsn"
	keyDebug        = "debug"
	keyFlushTimeout = "flush-timeout"
	keyPlan         = "plan"
	keyVerbose      = "verbose"
)

// Config holds the resolved settings for a smoke run.
type Config struct {
	Cycles       int
	Environment  string
	Strict       bool
	DSN          string
	Debug        bool
	FlushTimeout time.Duration
	Plan         string
	Verbose      bool
}

// addConfigFlags registers every Config key on flags with its default.
func addConfigFlags(flags *pflag.FlagSet) {
	flags.Int(keyCycles, harness.DefaultCycles, "number of init/shutdown cycles")
	flags.String(keyEnvironment, harness.DefaultEnvironment, "environment tag set on every cycle")
	flags.Bool(keyStrict, false, "stop at the first failed cycle and exit non-zero")
	flags.String(keyDSN, "", "sentry DSN (empty disables transport)")
	flags.Bool(keyDebug, false, "enable sentry-go debug logging")
	flags.Duration(keyFlushTimeout, client.DefaultFlushTimeout, "flush timeout per shutdown")
	flags.String(keyPlan, "", "path to a YAML run plan with trace assertions")
}

// LoadConfig resolves settings with precedence: flags set on the command line,
// then SENTRY_SMOKE_* environment variables, then configFile (when non-empty),
// then flag defaults.
func LoadConfig(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Cycles:       v.GetInt(keyCycles),
		Environment:  v.GetString(keyEnvironment),
		Strict:       v.GetBool(keyStrict),
		DSN:          v.GetString(keyDSN),
		Debug:        v.GetBool(keyDebug),
		FlushTimeout: v.GetDuration(keyFlushTimeout),
		Plan:         v.GetString(keyPlan),
		Verbose:      v.GetBool(keyVerbose),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings describe a runnable smoke test.
func (c *Config) Validate() error {
	if c.Cycles < 1 {
		return fmt.Errorf("cycles must be >= 1, got %d", c.Cycles)
	}
	if c.Environment == "" {
		return fmt.Errorf("environment must not be empty")
	}
	if c.FlushTimeout < 0 {
		return fmt.Errorf("flush-timeout must be >= 0, got %s", c.FlushTimeout)
	}
	return nil
}
