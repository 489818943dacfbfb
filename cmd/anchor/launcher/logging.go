package launcher

import (
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// verbosityLevels maps the numeric --log.verbosity scale onto logrus levels.
var verbosityLevels = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// applyLoggerFlags configures the global logger from the logging config:
// level, output format, and the optional Sentry error-reporting hook.
func applyLoggerFlags(cfg LoggingConfig) {
	level := logrus.InfoLevel
	if cfg.Verbosity >= 0 && cfg.Verbosity < len(verbosityLevels) {
		level = verbosityLevels[cfg.Verbosity]
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		})
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			log.WithError(err).Warn("sentry hook disabled")
			return
		}
		logrus.AddHook(hook)
		log.Info("sentry error reporting enabled")
	}
}
