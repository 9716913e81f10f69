package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// corsMiddleware allows the SPA frontend to call the API from its own origin
func (h *Handlers) corsMiddleware() func(http.Handler) http.Handler {
	origins := h.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(h.corsMiddleware())

	r.Get("/healthz", h.handleHealth)

	// WebSocket upgrades must not sit behind the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/status", h.handleGetStatus)
		r.Get("/ballot", h.handleGetBallot)
		r.Get("/winners", h.handleGetWinners)
		r.Get("/leaderboard", h.handleGlobalLeaderboard)
		r.Get("/compare/{userA}/{userB}", h.handleCompare)
		r.Get("/invites/{code}", h.handleGetInvite)

		r.Post("/users", h.handleCreateUser)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", h.handleGetUser)
			r.Put("/", h.handleRenameUser)
			r.Get("/groups", h.handleListUserGroups)
			r.Get("/picks", h.handleGetPicks)
			r.Put("/picks/{categoryID}", h.handleSubmitPick)
			r.Post("/picks/import", h.handleImportPicks)
			r.Delete("/groups/{groupID}/picks", h.handleClearGroupPicks)
			r.Get("/results", h.handlePersonalResults)
		})

		r.Post("/groups", h.handleCreateGroup)
		r.Post("/groups/join", h.handleJoinGroup)
		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Get("/", h.handleGetGroup)
			r.Delete("/", h.handleDeleteGroup)
			r.Post("/leave", h.handleLeaveGroup)
			r.Get("/members", h.handleListMembers)
			r.Get("/leaderboard", h.handleGroupLeaderboard)
			r.Get("/qr", h.handleGroupQR)
		})

		// Admin session
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)
		r.Get("/admin/session", h.handleSession)

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)

			// Ballot
			r.Get("/admin/categories", h.handleAdminListCategories)
			r.Post("/admin/categories", h.handleCreateCategory)
			r.Put("/admin/categories/{id}", h.handleUpdateCategory)
			r.Delete("/admin/categories/{id}", h.handleDeleteCategory)
			r.Post("/admin/categories/{id}/nominees", h.handleAddNominee)
			r.Put("/admin/categories/{id}/nominees/{nomineeID}", h.handleUpdateNominee)
			r.Delete("/admin/categories/{id}/nominees/{nomineeID}", h.handleDeleteNominee)

			// Official results
			r.Put("/admin/categories/{id}/winner", h.handleDeclareWinner)
			r.Delete("/admin/categories/{id}/winner", h.handleClearWinner)
			r.Post("/admin/sync-feed", h.handleSyncFeed)

			// Scores
			r.Post("/admin/recompute", h.handleRecompute)
			r.Get("/admin/recompute", h.handleRecomputeStatus)
			r.Get("/admin/scores", h.handleStoredScores)

			// Voting control
			r.Post("/admin/voting-control", h.handleSetVotingStatus)
			r.Post("/admin/voting-timer", h.handleSetVotingTimer)

			// Settings and data
			r.Get("/admin/settings", h.handleGetSettings)
			r.Put("/admin/settings", h.handleUpdateSettings)
			r.Get("/admin/stats", h.handleGetStats)
			r.Get("/admin/users", h.handleListUsers)
			r.Post("/admin/seed-mock-data", h.handleSeedMockData)
			r.Post("/admin/reset-database", h.handleResetDatabase)
		})
	})

	return r
}
