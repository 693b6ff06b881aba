package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/pkg/repository"
)

// SetupRoutes builds the router. A nil notifier disables notifications.
func SetupRoutes(cfg *config.Config, version, buildTime string, store repository.Store, advisor *ai.Advisor, notifier jobs.Notifier) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	if advisor == nil {
		advisor = ai.NewAdvisor(nil, logger)
	}

	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(store, cfg.JWTSecret, cfg.TokenDuration)
	usersHandler := NewUsersHandler(store)
	projectsHandler := NewProjectsHandler(store, notifier)
	mentorsHandler := NewMentorsHandler(store, advisor, notifier)
	aiHandler := NewAIHandler(store, advisor)
	activitiesHandler := NewActivitiesHandler(store)

	// preflight requests for any path; CORSMiddleware answers them
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	apiR := r.PathPrefix("/api").Subrouter()

	apiR.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	apiR.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	apiR.HandleFunc("/users/{id:[0-9]+}", usersHandler.Get).Methods("GET")
	apiR.HandleFunc("/users/{id:[0-9]+}/mentorships", usersHandler.Mentorships).Methods("GET")

	apiR.HandleFunc("/ai/generate-ideas", aiHandler.GenerateIdeas).Methods("POST")
	apiR.HandleFunc("/ai/ideas", aiHandler.ListIdeas).Methods("GET")

	apiR.HandleFunc("/mentors", mentorsHandler.List).Methods("GET")
	apiR.HandleFunc("/mentors/match", mentorsHandler.Match).Methods("POST")
	apiR.HandleFunc("/mentors/connect", mentorsHandler.Connect).Methods("POST")

	apiR.HandleFunc("/projects", projectsHandler.List).Methods("GET")
	apiR.HandleFunc("/projects", projectsHandler.Create).Methods("POST")
	apiR.HandleFunc("/projects/match-skills", projectsHandler.MatchSkills).Methods("POST")
	apiR.HandleFunc("/projects/{id:[0-9]+}", projectsHandler.Get).Methods("GET")
	apiR.HandleFunc("/projects/{id:[0-9]+}", projectsHandler.Update).Methods("PATCH")
	apiR.HandleFunc("/projects/{id:[0-9]+}/star", projectsHandler.Star).Methods("POST")
	apiR.HandleFunc("/projects/{id:[0-9]+}/star", projectsHandler.Unstar).Methods("DELETE")
	apiR.HandleFunc("/projects/{id:[0-9]+}/join", projectsHandler.Join).Methods("POST")
	apiR.HandleFunc("/projects/{id:[0-9]+}/join", projectsHandler.Leave).Methods("DELETE")
	apiR.HandleFunc("/projects/{id:[0-9]+}/members", projectsHandler.Members).Methods("GET")

	apiR.HandleFunc("/activities", activitiesHandler.ListActivities).Methods("GET")

	// Protected routes
	authed := apiR.NewRoute().Subrouter()
	authed.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))
	authed.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	authed.HandleFunc("/users/me", usersHandler.Me).Methods("GET")

	return r
}
