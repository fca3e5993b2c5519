// Package logger configures the process-wide structured logger.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	log  *logrus.Logger
)

// Init builds the shared logger. Safe to call multiple times; only the
// first call takes effect.
func Init(level string, development bool) *logrus.Logger {
	once.Do(func() {
		log = logrus.New()
		log.SetOutput(os.Stdout)

		if development {
			log.SetFormatter(&logrus.TextFormatter{
				FullTimestamp: true,
			})
		} else {
			log.SetFormatter(&logrus.JSONFormatter{})
		}

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		log.SetLevel(lvl)
	})
	return log
}

// Get returns the shared logger, initializing it with defaults if Init was
// never called.
func Get() *logrus.Logger {
	if log == nil {
		return Init("info", false)
	}
	return log
}

// WithRace scopes a log entry to a race identifier.
func WithRace(l *logrus.Logger, raceID string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"component": "keiba-core",
		"race_id":   raceID,
	})
}

// WithHorse scopes a log entry to a horse identifier within a race.
func WithHorse(l *logrus.Logger, raceID, horseID string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"component": "keiba-core",
		"race_id":   raceID,
		"horse_id":  horseID,
	})
}

// WithBacktestWindow scopes a log entry to a backtest run's date window.
func WithBacktestWindow(l *logrus.Logger, from, to string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"component": "backtest",
		"from":      from,
		"to":        to,
	})
}
