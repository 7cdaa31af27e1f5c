package app

import (
	"os"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/code-vault/pkg/metrics"
)

// LoadConfig reads the config file at path, if it exists, layered under
// environment variables and over the defaults.
func LoadConfig(path string) (*BaseConfig, error) {
	v := viper.New()
	bindEnvs(v)

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we check ourselves.
	if len(path) > 0 {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)

			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(err, "failed to load config")
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to check if config exists")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.AppName) == 0 {
		return nil, errors.New("must specify an application name")
	}

	return &config, nil
}

// NewMetricsProvider connects to New Relic. It returns nil when no license
// key is configured.
func NewMetricsProvider(config *BaseConfig) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	nr, err := newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to new relic")
	}
	return nr, nil
}

// ConfigureLogger sets up the standard logrus logger: JSON to stdout, at the
// configured level, forwarded to New Relic when metricsProvider is set.
func ConfigureLogger(config *BaseConfig, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}
