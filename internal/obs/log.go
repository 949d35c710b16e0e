package obs

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	loggerOnce sync.Once
	logger     zerolog.Logger
)

// Logger returns the shared structured logger. The first caller fixes
// the configuration; LOG_LEVEL picks the threshold (default info).
func Logger() zerolog.Logger {
	loggerOnce.Do(func() {
		level := zerolog.InfoLevel
		if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
			if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
				level = parsed
			}
		}
		logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	})
	return logger
}

// Named returns the shared logger tagged with a service name.
func Named(service string) zerolog.Logger {
	return Logger().With().Str("service", service).Logger()
}
