package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// Resty adapts a zerolog logger to the logger interface of the resty client.
type Resty struct {
	logger zerolog.Logger
}

func NewResty(logger zerolog.Logger) *Resty {
	return &Resty{logger: logger.With().Str("component", "http").Logger()}
}

func (r *Resty) Errorf(format string, v ...any) {
	r.logger.Error().Msg(trim(format, v...))
}

func (r *Resty) Warnf(format string, v ...any) {
	r.logger.Warn().Msg(trim(format, v...))
}

func (r *Resty) Debugf(format string, v ...any) {
	r.logger.Debug().Msg(trim(format, v...))
}

func trim(format string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
