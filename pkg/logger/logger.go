package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before InitLogger runs so tests and early startup never hit a nil logger.
var Log = logrus.New()

func InitLogger(env, level string) {
	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// JSON in production, readable text everywhere else
	if env == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Packages that log through the logrus std logger get the same setup.
	logrus.SetOutput(Log.Out)
	logrus.SetFormatter(Log.Formatter)
	logrus.SetLevel(lvl)
}
