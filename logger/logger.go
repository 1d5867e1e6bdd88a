package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init configures the shared structured logger. Development gets debug
// level, everything else info.
func Init(env string) {
	Log = logrus.New()

	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	if env == "development" {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

func init() {
	// Sensible default so packages can log before main wires config.
	Init("development")
}
