// Package logging sets up the zerolog loggers of the service.
package logging

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// logger fields
const (
	PACKAGE = "pkg"
	METHOD  = "method"
	PATH    = "path"
	STATUS  = "status"
	LATENCY = "latency"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New returns a logger writing JSON lines to out. Unknown or empty levels fall back to info.
func New(level string, out io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Middleware logs one line per HTTP request.
func Middleware(logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str(PACKAGE, "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Str(METHOD, c.Request.Method).
			Str(PATH, c.Request.URL.Path).
			Int(STATUS, status).
			Dur(LATENCY, time.Since(start)).
			Msg("request")
	}
}
