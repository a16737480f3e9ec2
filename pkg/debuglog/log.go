package debuglog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Debug is set when COMPATGUARD_DEBUG is present in the environment.
var Debug bool

func init() {
	Debug = os.Getenv("COMPATGUARD_DEBUG") != ""
}

// Configure sets up the package-level logrus logger. An unparsable level
// falls back to warn. Debug forces the debug level.
func Configure(w io.Writer, level string) error {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !Debug,
		FullTimestamp:    true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.WarnLevel)
		return err
	}
	if Debug {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)
	return nil
}

func Log(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}
