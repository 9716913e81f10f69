package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"

	"github.com/abrezinsky/awardpicks/internal/auth"
	"github.com/abrezinsky/awardpicks/internal/config"
	"github.com/abrezinsky/awardpicks/internal/handlers"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/repository"
	"github.com/abrezinsky/awardpicks/internal/services"
	"github.com/abrezinsky/awardpicks/internal/websocket"
	"github.com/abrezinsky/awardpicks/pkg/ballotfeed"
)

const settingBaseURL = "base_url"

// App holds all application dependencies
type App struct {
	log             logger.Logger
	cfg             config.Config
	handlers        *handlers.Handlers
	repo            *repository.Repository
	groups          *services.GroupService
	scoring         *services.ScoringService
	scheduler       gocron.Scheduler
	cancelCountdown context.CancelFunc
	closeOnce       sync.Once
}

// New opens the database and wires services, the websocket hub and the
// HTTP handlers. The periodic recompute starts when cfg.RecomputeInterval > 0.
func New(log logger.Logger, cfg config.Config, feedClient ballotfeed.Client, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	settingsService := services.NewSettingsService(log, repo, cfg.FlagshipCategoryID)
	categoryService := services.NewCategoryService(log, repo, feedClient)
	groupService := services.NewGroupService(log, repo, cfg.BaseURL)
	scoringService := services.NewScoringService(log, repo, settingsService, cfg.Scoring(), services.ScoringOptions{
		BatchSize: cfg.RecomputeBatchSize,
		Workers:   cfg.RecomputeWorkers,
	})

	hub := websocket.New(log, settingsService, cfg.CORSOrigins...)
	hub.Start()
	settingsService.SetBroadcaster(hub)
	categoryService.SetBroadcaster(hub)
	categoryService.SetFlagshipSource(settingsService)
	scoringService.SetBroadcaster(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartVotingCountdown(ctx)

	a := &App{
		log:             log,
		cfg:             cfg,
		repo:            repo,
		groups:          groupService,
		scoring:         scoringService,
		cancelCountdown: cancel,
	}

	if cfg.RecomputeInterval > 0 {
		sched, err := scoringService.StartScheduler(cfg.RecomputeInterval)
		if err != nil {
			cancel()
			repo.Close()
			return nil, fmt.Errorf("failed to start recompute scheduler: %w", err)
		}
		a.scheduler = sched
	}

	a.handlers = handlers.New(handlers.Services{
		Category:    categoryService,
		Users:       services.NewUserService(log, repo),
		Groups:      groupService,
		Predictions: services.NewPredictionService(log, repo, settingsService),
		Scoring:     scoringService,
		Settings:    settingsService,
	}, adminAuth, hub, log, cfg.CORSOrigins)

	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Recompute runs a full score recompute outside the HTTP API
func (a *App) Recompute(ctx context.Context) (*services.RecomputeSummary, error) {
	return a.scoring.Recompute(ctx, false)
}

// Close stops background work and closes the database. Safe to call twice.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.cancelCountdown != nil {
			a.cancelCountdown()
		}
		if a.scheduler != nil {
			if err := a.scheduler.Shutdown(); err != nil {
				a.log.Warn("Recompute scheduler shutdown failed", "error", err)
			}
		}
		if a.repo != nil {
			a.repo.Close()
		}
	})
}

// Run serves HTTP on addr until ctx is cancelled
func (a *App) Run(ctx context.Context, addr string) error {
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		ip := getPreferredIP(realNetworkProvider{})
		baseURL = a.setDefaultBaseURL(fmt.Sprintf("http://%s%s", ip, addr))
	}
	a.groups.SetBaseURL(baseURL)

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "url", baseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.log.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// setDefaultBaseURL stores baseURL unless a usable value is already saved,
// and returns the value in effect. A saved localhost URL is replaced since
// invite links and QR codes must work from other devices.
func (a *App) setDefaultBaseURL(baseURL string) string {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, settingBaseURL)
	if existing != "" && !strings.Contains(existing, "localhost") {
		return existing
	}

	if err := a.repo.SetSetting(ctx, settingBaseURL, baseURL); err != nil {
		a.log.Warn("Failed to set default base_url", "error", err)
	} else {
		a.log.Info("Default base URL set", "url", baseURL)
	}
	return baseURL
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the IPv4 address other devices on the LAN should
// use. Private ranges win over public ones; localhost is the last resort.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
