package logger

import (
	"os"

	"github.com/op/go-logging"
)

// Init configures the process-wide logger writing to stderr and returns it.
// Unknown level names fall back to INFO.
func Init(level string) *logging.Logger {
	log := logging.MustGetLogger("sharedeck")
	format := logging.MustStringFormatter("%{time:2006-01-02 15:04:05} [%{level}] %{message}")
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format)
	leveled := logging.AddModuleLevel(backend)

	logLevel, err := logging.LogLevel(level)
	if err != nil {
		logLevel = logging.INFO
	}
	leveled.SetLevel(logLevel, "")
	logging.SetBackend(leveled)
	return log
}
