// Package config holds the zecwallet-dump command line settings.
package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// VerbosityKey selects how much of the wallet is printed: basic, verbose or debug
	VerbosityKey = "VERBOSITY"
	// ShowSecretsKey enables printing seed phrases and clear spending keys
	ShowSecretsKey = "SHOW_SECRETS"
	// LogLevelKey overrides the log level derived from the debug flag. For
	// reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NoColorKey disables coloured output
	NoColorKey = "NO_COLOR"

	envPrefix = "ZWDUMP"
)

// Verbosity is the level of detail of the dump output.
type Verbosity string

const (
	Basic   Verbosity = "basic"
	Verbose Verbosity = "verbose"
	Debug   Verbosity = "debug"
)

var vip = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault(VerbosityKey, string(Basic))
	v.SetDefault(ShowSecretsKey, false)
	v.SetDefault(LogLevelKey, "")
	v.SetDefault(NoColorKey, false)
	return v
}

// InitConfig loads the environment and, when configFile is not empty, the
// given file.
func InitConfig(configFile string) error {
	vip = newViper()
	if configFile != "" {
		vip.SetConfigFile(configFile)
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("error while reading config file: %w", err)
		}
	}
	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}
	return nil
}

// Set overrides key, as done for command line flags.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetVerbosity returns the configured dump verbosity.
func GetVerbosity() Verbosity {
	return Verbosity(strings.ToLower(GetString(VerbosityKey)))
}

// GetLogLevel returns the configured log level. ok is false when unset.
func GetLogLevel() (level log.Level, ok bool) {
	s := GetString(LogLevelKey)
	if s == "" {
		return 0, false
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return 0, false
	}
	return level, true
}

func validate() error {
	switch GetVerbosity() {
	case Basic, Verbose, Debug:
	default:
		return fmt.Errorf("unknown verbosity %q", GetString(VerbosityKey))
	}
	if s := GetString(LogLevelKey); s != "" {
		if _, err := log.ParseLevel(s); err != nil {
			return err
		}
	}
	return nil
}
