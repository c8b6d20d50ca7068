package logger

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// AccessLog writes one line per request to out.
func AccessLog(out io.Writer) func(http.Handler) http.Handler {
	l := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: timeLayout}).With().Timestamp().Logger()

	withLogger := hlog.NewHandler(l)
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})

	return func(next http.Handler) http.Handler {
		return withLogger(access(next))
	}
}
