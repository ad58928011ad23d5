package api

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/AlexZinkM/safe-backend/docs"
	"github.com/AlexZinkM/safe-backend/internal/handler"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// recoveryLogger adapts zerolog to gorilla's recovery handler.
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}

// SetupRouter sets up router with handlers and middleware
func SetupRouter(safeHandler *handler.SafeHandler, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.WrapHandler)

	// Safe endpoints
	safeHandler.Register(mux)

	var h http.Handler = mux
	h = handlers.CompressHandler(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.RequestIDHandler("reqId", "Request-Id")(h)
	h = hlog.NewHandler(logger)(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(true),
	)(h)
	return h
}
