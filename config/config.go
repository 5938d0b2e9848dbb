package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug           = "debug"
	ConfigNatsURL         = "nats-url"
	ConfigSubjectPrefix   = "subject-prefix"
	ConfigDBPath          = "db-path"
	ConfigDatabaseURL     = "database-url"
	ConfigLockShards      = "lock-shards"
	ConfigCodeAttempts    = "code-attempts"
	ConfigRecordCacheSize = "record-cache-size"
	ConfigSharedStore     = "shared-store"
	ConfigQueueGroup      = "queue-group"
	ConfigListenAddr      = "listen-addr"
	ConfigRemote          = "remote"
	ConfigRequestTimeout  = "request-timeout"
	ConfigConfigFile      = "config"
)

// Config is the settings for the daemon and the shell. Values come from, in
// order of precedence: command-line flags, XWORD_* environment variables, an
// optional YAML config file, and the defaults below.
type Config struct {
	viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigNatsURL, "nats://127.0.0.1:4222")
	v.SetDefault(ConfigSubjectPrefix, "xword")
	v.SetDefault(ConfigDBPath, "./xword.db")
	v.SetDefault(ConfigDatabaseURL, "")
	v.SetDefault(ConfigLockShards, 64)
	v.SetDefault(ConfigCodeAttempts, 8)
	v.SetDefault(ConfigRecordCacheSize, 1024)
	v.SetDefault(ConfigSharedStore, false)
	v.SetDefault(ConfigQueueGroup, "xwordd")
	v.SetDefault(ConfigListenAddr, "")
	v.SetDefault(ConfigRemote, false)
	v.SetDefault(ConfigRequestTimeout, "5s")
}

// DefaultConfig returns a config with only the defaults set. Tests use it.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	setDefaults(&c.Viper)
	return c
}

// Load reads the flags in args, the environment and the config file, if
// one is named with --config or found as ./xword.yaml.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	setDefaults(&c.Viper)

	fs := pflag.NewFlagSet("xword", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigNatsURL, "", "the NATS server to relay games over")
	fs.String(ConfigSubjectPrefix, "", "the prefix for every NATS subject")
	fs.String(ConfigDBPath, "", "the SQLite database games are saved to")
	fs.String(ConfigDatabaseURL, "", "a Postgres URL to save games to instead of SQLite")
	fs.Int(ConfigLockShards, 0, "the number of per-game lock shards")
	fs.Int(ConfigCodeAttempts, 0, "how many join codes to try before giving up")
	fs.Int(ConfigRecordCacheSize, 0, "how many game records to keep in memory")
	fs.Bool(ConfigSharedStore, false, "other daemons save to the same database; never cache game records")
	fs.String(ConfigQueueGroup, "", "the NATS queue group relays share requests in")
	fs.String(ConfigListenAddr, "", "serve browser websockets on this address, e.g. :8080")
	fs.Bool(ConfigRemote, false, "shell: play on a relay over NATS instead of locally")
	fs.Duration(ConfigRequestTimeout, 0, "shell: how long to wait for a relay to answer")
	fs.String(ConfigConfigFile, "", "a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("xword")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cf := c.GetString(ConfigConfigFile); cf != "" {
		c.SetConfigFile(cf)
	} else {
		c.SetConfigName("xword")
		c.SetConfigType("yaml")
		c.AddConfigPath(".")
	}
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return c.validate()
}

// Args returns the arguments left over after the flags.
func (c *Config) Args() []string {
	return c.args
}

func (c *Config) validate() error {
	if c.GetInt(ConfigLockShards) < 1 {
		return fmt.Errorf("%s must be at least 1", ConfigLockShards)
	}
	if c.GetInt(ConfigCodeAttempts) < 1 {
		return fmt.Errorf("%s must be at least 1", ConfigCodeAttempts)
	}
	if c.GetInt(ConfigRecordCacheSize) < 0 {
		return fmt.Errorf("%s must not be negative", ConfigRecordCacheSize)
	}
	if c.GetDuration(ConfigRequestTimeout) <= 0 {
		return fmt.Errorf("%s must be positive", ConfigRequestTimeout)
	}
	if c.GetString(ConfigSubjectPrefix) == "" {
		return fmt.Errorf("%s must not be empty", ConfigSubjectPrefix)
	}
	return nil
}

// AdjustRelativePaths makes a relative database path relative to the given
// directory, normally the executable's.
func (c *Config) AdjustRelativePaths(basedir string) {
	p := c.GetString(ConfigDBPath)
	if p == "" || filepath.IsAbs(p) {
		return
	}
	c.Set(ConfigDBPath, filepath.Join(basedir, p))
}

// SanitizedSettings returns the settings for logging, with any credentials
// in the NATS and database URLs masked.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	for _, key := range []string{ConfigNatsURL, ConfigDatabaseURL} {
		if u, ok := settings[key].(string); ok {
			settings[key] = maskCredentials(u)
		}
	}
	return settings
}

func maskCredentials(u string) string {
	at := strings.LastIndex(u, "@")
	if at == -1 {
		return u
	}
	if scheme := strings.Index(u, "://"); scheme != -1 && scheme < at {
		return u[:scheme+3] + "*****" + u[at:]
	}
	return u
}
