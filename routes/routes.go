package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/ttleague/docs"
	"github.com/Dosada05/ttleague/handlers"
	"github.com/Dosada05/ttleague/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecretKey   string
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Handlers struct {
	Health     *handlers.HealthHandler
	Player     *handlers.PlayerHandler
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	Ranking    *handlers.RankingHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminOnly := middleware.RequireAdmin(opts.JWTSecretKey, opts.Logger)

	router.Get("/health", h.Health.CheckHandler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Websocket connections are long lived and must not be cut by the request timeout.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListHandler)
			r.Post("/", h.Player.CreateHandler)
			r.Get("/{playerID}", h.Player.GetByIDHandler)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)

				r.Post("/players", h.Tournament.EnrollPlayerHandler)
				r.Delete("/players/{playerID}", h.Tournament.UnenrollPlayerHandler)

				r.Get("/bracket", h.Bracket.GetHandler)
				r.Post("/bracket", h.Bracket.BuildHandler)
				r.Delete("/bracket", h.Bracket.ResetHandler)

				r.Get("/archive", h.Bracket.GetArchiveHandler)
				r.With(adminOnly).Post("/archive", h.Bracket.CreateArchiveHandler)
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.Match.GetByIDHandler)
			r.Post("/result", h.Match.ReportResultHandler)
		})

		r.Route("/ranking", func(r chi.Router) {
			r.Get("/", h.Ranking.TableHandler)
			r.Get("/players/{playerID}", h.Ranking.PlayerRankHandler)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Put("/players/{playerID}", h.Ranking.SetPointsHandler)
				r.Delete("/categories/{category}", h.Ranking.ResetCategoryHandler)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"kind":"not_found","message":"the requested resource could not be found"}}` + "\n"))
	})
}
