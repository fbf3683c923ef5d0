package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(logger *slog.Logger, handlers *Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/ping", handlers.Ping)

	router.Route("/api", func(r chi.Router) {
		r.Get("/game", handlers.GetGame)
		r.Get("/overview", handlers.GetOverview)

		r.Put("/players", handlers.ReplacePlayers)
		r.Put("/players/{index}", handlers.RenamePlayer)

		r.Post("/rounds", handlers.RecordRound)
		r.Delete("/rounds", handlers.Reset)
		r.Put("/rounds/{index}", handlers.EditRound)
		r.Get("/rounds/{index}/winners", handlers.RoundWinners)

		r.Post("/import", handlers.Import)
		r.Get("/export", handlers.Export)

		r.Get("/views/totals", handlers.GetTotals)
		r.Get("/views/series", handlers.GetSeries)
	})

	return router
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
