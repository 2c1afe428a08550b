package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agenticauto/autobuilder/internal/urls"
)

// EnvPrefix is prepended to every environment override, e.g. AUTOBUILDER_API_URL
const EnvPrefix = "AUTOBUILDER"

// DefaultAPIURL is the hosted backend
const DefaultAPIURL = urls.HostedBackend

// Setting keys
const (
	KeyAPIURL    = "api_url"
	KeyTimeout   = "timeout"
	KeyOutputDir = "output_dir"
	KeyLogLevel  = "log_level"
	KeyLogFile   = "log_file"
	KeyWatch     = "watch"
)

// flagKeys maps command-line flag names onto setting keys
var flagKeys = map[string]string{
	"api-url":    KeyAPIURL,
	"timeout":    KeyTimeout,
	"output-dir": KeyOutputDir,
	"log-level":  KeyLogLevel,
	"log-file":   KeyLogFile,
	"watch":      KeyWatch,
}

// Settings is the resolved runtime configuration.
type Settings struct {
	APIURL    string
	Timeout   time.Duration // 0 means no client timeout
	OutputDir string
	LogLevel  string
	LogFile   string
	Watch     bool // subscribe to the hosted automation event feed

	// ConfigFile is the file that was read, empty when none was found
	ConfigFile string
}

// Load resolves settings from flags, environment, the config file and
// defaults. cfgFile overrides the default config location. flags may be nil.
// A missing config file is not an error; an unreadable one is.
func Load(cfgFile string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(configFile, ".yaml"))
		v.SetConfigType("yaml")
		if dir, err := GetConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	s := &Settings{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		s.ConfigFile = v.ConfigFileUsed()
	}

	s.APIURL = strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/")
	if s.APIURL == "" {
		s.APIURL = DefaultAPIURL
	}
	s.Timeout = v.GetDuration(KeyTimeout)
	if s.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	s.OutputDir = v.GetString(KeyOutputDir)
	s.LogLevel = v.GetString(KeyLogLevel)
	s.LogFile = v.GetString(KeyLogFile)
	s.Watch = v.GetBool(KeyWatch)

	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyWatch, true)
}
