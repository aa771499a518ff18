package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/dayloop-io/dayloop/internal/auth"
	"github.com/dayloop-io/dayloop/internal/config"
	"github.com/dayloop-io/dayloop/internal/goals"
	"github.com/dayloop-io/dayloop/internal/storage"
	"github.com/dayloop-io/dayloop/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Uploader is where completed export archives go. *storage.S3Client
// satisfies it; nil disables the export endpoints.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (*storage.UploadResult, error)
}

type Api struct {
	Config *config.Config
	Router *chi.Mux

	store    *store.Store
	auth     *auth.Service
	tokens   *auth.TokenManager
	goals    *goals.Service
	uploader Uploader
	exports  *ExportStore
}

// NewApi wires the HTTP surface. uploader may be nil, in which case the
// export endpoints answer 503.
func NewApi(cfg *config.Config, st *store.Store, authSvc *auth.Service, goalSvc *goals.Service, uploader Uploader) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, errors.New("Must have at least a port to start API")
	}

	api := &Api{
		Config:   cfg,
		Router:   chi.NewRouter(),
		store:    st,
		auth:     authSvc,
		tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTDuration),
		goals:    goalSvc,
		uploader: uploader,
		exports:  NewExportStore(),
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/heartbeat", api.Heartbeat)

	// Public routes. Logout is public on purpose: it must clear the
	// client cookie even when no live session backs it.
	r.Post("/auth/register", api.RegisterHandler)
	r.Post("/auth/login", api.LoginHandler)
	r.Post("/auth/logout", api.LogoutHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(api.AuthMiddleware)

		r.Get("/auth/me", api.MeHandler)
		r.Get("/auth/session", api.SessionHandler)
		r.Post("/auth/token", api.IssueTokenHandler)

		r.Route("/goals", func(r chi.Router) {
			r.Post("/", api.CreateGoalHandler)
			r.Get("/", api.ListGoalsHandler)
			r.Get("/today", api.ListTodayGoalsHandler)
			r.Patch("/{goalKey}", api.UpdateGoalHandler)
			r.Delete("/{goalKey}", api.DeleteGoalHandler)
		})

		r.Route("/keywords", func(r chi.Router) {
			r.Get("/", api.ListKeywordMappingsHandler)
			r.Post("/", api.CreateKeywordMappingHandler)
			r.Delete("/{mappingKey}", api.DeleteKeywordMappingHandler)
		})

		r.Route("/export", func(r chi.Router) {
			r.Post("/", api.StartExportHandler)
			r.Get("/{jobID}", api.ExportStatusHandler)
		})
	})
}

// Serve starts the HTTP server and the hourly expired-session sweep.
func (api *Api) Serve() error {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			if err := api.store.DeleteExpiredSessions(context.Background(), time.Now()); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
			<-ticker.C
		}
	}()

	addr := fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort)
	log.Printf("Starting API server on %s", addr)
	return http.ListenAndServe(addr, api.Router)
}

func (api *Api) Heartbeat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
