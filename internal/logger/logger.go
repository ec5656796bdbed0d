// Package logger configures the leveled loggers of the gordinal
// command.
package logger

import (
	"os"

	"github.com/op/go-logging"
)

const defaultLogFormat = "%{color}%{time:15:04:05.000} %{module} %{level:.4s}%{color:reset}: %{message}"

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend,
		logging.MustStringFormatter(defaultLogFormat))
	logging.SetBackend(formatted)
}

// NewLogger returns the logger of module, enabled from level upward.
// An unknown level falls back to INFO.
func NewLogger(level string, module string) *logging.Logger {
	log := logging.MustGetLogger(module)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
		logging.SetLevel(lvl, module)
		log.Warningf("unknown log level %q, using %v", level, lvl)
		return log
	}

	logging.SetLevel(lvl, module)
	return log
}
