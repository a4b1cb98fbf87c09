package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/haruplan/haruplan/internal/api/metrics"
	"github.com/haruplan/haruplan/internal/api/recovery"
	"github.com/haruplan/haruplan/internal/auth"
	"github.com/haruplan/haruplan/internal/config"
	"github.com/haruplan/haruplan/internal/nlp"
	"github.com/haruplan/haruplan/internal/notify"
	"github.com/haruplan/haruplan/internal/services"
	"github.com/haruplan/haruplan/internal/store"
)

// NewRouter wires services and handlers onto a mux router.
func NewRouter(cfg *config.Config, st store.Store, log zerolog.Logger) (*mux.Router, error) {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware)
	}

	// Domain services
	notifier := notify.New(cfg.WebhookURL, log)
	userService := services.NewUserService(st, cfg.TimeZone)
	eventService := services.NewEventService(st, notifier)
	taskService := services.NewTaskService(st, notifier)

	tagger, err := nlp.NewTagger(cfg.Language)
	if err != nil {
		return nil, err
	}
	interp := nlp.NewInterpreter(tagger, nlp.InterpreterConfig{
		MaxInputLen: cfg.MaxInputLen,
		WeekStart:   cfg.WeekStartDay(),
	})
	assistantService := services.NewAssistantService(interp, eventService, taskService)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// Handlers
	healthHandler := NewHealthHandler(st)
	authHandler := NewAuthHandler(userService, issuer)
	eventHandler := NewEventHandler(eventService)
	taskHandler := NewTaskHandler(taskService)
	assistantHandler := NewAssistantHandler(assistantService, cfg.Location())
	feedHandler := NewFeedHandler(eventService)

	// Health endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/db", healthHandler.CheckStorageHealth).Methods("GET")

	// Auth endpoints
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/users/me", RequireAuth(issuer, authHandler.Me)).Methods("GET")

	// Event endpoints
	router.HandleFunc("/api/events", RequireAuth(issuer, eventHandler.CreateEvent)).Methods("POST")
	router.HandleFunc("/api/events", RequireAuth(issuer, eventHandler.ListEvents)).Methods("GET")
	router.HandleFunc("/api/events/feed.ics", RequireAuth(issuer, feedHandler.Feed)).Methods("GET")
	router.HandleFunc("/api/events/{eventId:[0-9]+}", RequireAuth(issuer, eventHandler.GetEvent)).Methods("GET")
	router.HandleFunc("/api/events/{eventId:[0-9]+}", RequireAuth(issuer, eventHandler.UpdateEvent)).Methods("PUT")
	router.HandleFunc("/api/events/{eventId:[0-9]+}", RequireAuth(issuer, eventHandler.DeleteEvent)).Methods("DELETE")

	// Task endpoints
	router.HandleFunc("/api/tasks", RequireAuth(issuer, taskHandler.CreateTask)).Methods("POST")
	router.HandleFunc("/api/tasks", RequireAuth(issuer, taskHandler.ListTasks)).Methods("GET")
	router.HandleFunc("/api/tasks/{taskId:[0-9]+}", RequireAuth(issuer, taskHandler.GetTask)).Methods("GET")
	router.HandleFunc("/api/tasks/{taskId:[0-9]+}", RequireAuth(issuer, taskHandler.UpdateTask)).Methods("PUT")
	router.HandleFunc("/api/tasks/{taskId:[0-9]+}/status", RequireAuth(issuer, taskHandler.SetTaskStatus)).Methods("PATCH")
	router.HandleFunc("/api/tasks/{taskId:[0-9]+}", RequireAuth(issuer, taskHandler.DeleteTask)).Methods("DELETE")

	// Assistant endpoint
	router.HandleFunc("/api/assistant/command", RequireAuth(issuer, assistantHandler.Command)).Methods("POST")

	// Metrics endpoint
	if cfg.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	return router, nil
}
