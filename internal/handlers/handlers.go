package handlers

import (
	"github.com/abrezinsky/awardpicks/internal/auth"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/services"
	"github.com/abrezinsky/awardpicks/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Category    services.CategoryServicer
	Users       services.UserServicer
	Groups      services.GroupServicer
	Predictions services.PredictionServicer
	Scoring     services.ScoringServicer
	Settings    services.SettingsServicer
	Auth        *auth.Auth
	Hub         *websocket.Hub
	Log         logger.Logger
	CORSOrigins []string
}

// Services bundles the service layer for New
type Services struct {
	Category    services.CategoryServicer
	Users       services.UserServicer
	Groups      services.GroupServicer
	Predictions services.PredictionServicer
	Scoring     services.ScoringServicer
	Settings    services.SettingsServicer
}

// New creates a new Handlers instance with all dependencies
func New(svc Services, adminAuth *auth.Auth, hub *websocket.Hub, log logger.Logger, corsOrigins []string) *Handlers {
	return &Handlers{
		Category:    svc.Category,
		Users:       svc.Users,
		Groups:      svc.Groups,
		Predictions: svc.Predictions,
		Scoring:     svc.Scoring,
		Settings:    svc.Settings,
		Auth:        adminAuth,
		Hub:         hub,
		Log:         log,
		CORSOrigins: corsOrigins,
	}
}
