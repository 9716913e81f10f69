package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/abrezinsky/awardpicks/internal/app"
	"github.com/abrezinsky/awardpicks/internal/auth"
	"github.com/abrezinsky/awardpicks/internal/browser"
	"github.com/abrezinsky/awardpicks/internal/config"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/pkg/ballotfeed"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var version = "dev"

var logo = []string{
	`     _                         _ ____  _      _          `,
	`    / \__      ____ _ _ __ __| |  _ \(_) ___| | _____   `,
	`   / _ \ \ /\ / / _' | '__/ _' | |_) | |/ __| |/ / __|  `,
	`  / ___ \ V  V / (_| | | | (_| |  __/| | (__|   <\__ \  `,
	` /_/   \_\_/\_/ \__,_|_|  \__,_|_|   |_|\___|_|\_\___/  `,
}

// showBanner prints the logo boxed. With animate set, lines are revealed
// one at a time like an envelope being opened.
func showBanner(animate bool) {
	width := 60
	border := strings.Repeat("═", width)

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, yellow, width, line, cyan, reset)
		if animate {
			time.Sleep(90 * time.Millisecond)
		}
	}
	tagline := "And the winner is..."
	fmt.Printf("  %s║%s%-*s%s║%s\n", cyan, bold, width, "  "+tagline, cyan, reset)
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

const usage = `AwardPicks - Awards Night Prediction Game

Usage:
  awardpicks [options]

Options:
  -port int             HTTP server port (default 8081, env PORT)
  -db string            SQLite database path (default "awardpicks.db", env DB_PATH)
  -adminpw string       Admin password, generated if empty (env ADMIN_PASSWORD)
  -loglevel string      debug, info, warn, error (default "info", env LOG_LEVEL)
  -logformat string     text or json (default "text", env LOG_FORMAT)
  -baseurl string       Public base URL for invite links (env BASE_URL)
  -cors string          Allowed origins, comma-separated (default "*", env CORS_ORIGINS)
  -flagship string      Flagship category id (default "goty", env FLAGSHIP_CATEGORY_ID)
  -points-flagship str  first,second,third,consolation (default "5,4,3,1")
  -points-ordinary str  first,second,third,consolation (default "3,2,1,0")
  -batch int            Scores written per recompute batch (default 400)
  -workers int          Concurrent loads during recompute (default 8)
  -recompute-every dur  Periodic recompute interval, 0 disables (env RECOMPUTE_INTERVAL)
  -feed string          Ballot feed URL (env BALLOT_FEED_URL)
  -noanimate            Skip the banner animation
  -nokeyboard           Disable keyboard shortcuts
  -version              Show version and exit

A .env file in the working directory is loaded before flags are parsed.

Keyboard Shortcuts (when enabled):
  o  Open event status in browser
  h  Toggle HTTP request logging
  l  Cycle log level
  p  Print admin password
  r  Recompute all scores
  q  Quit server
  ?  Show keyboard help
`

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("awardpicks %s\n", version)
		os.Exit(0)
	}

	showBanner(!cfg.NoAnimate)

	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	feedClient := ballotfeed.NewHTTPClient(cfg.BallotFeedURL, appLog)

	a, err := app.New(appLog, cfg, feedClient, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	appLog.Info("Admin password", "password", password)

	if !cfg.NoKeyboard && term.IsTerminal(int(os.Stdin.Fd())) {
		restore, err := startKeyboard(keyActions{
			statusURL: fmt.Sprintf("http://localhost:%d/api/status", cfg.Port),
			password:  password,
			log:       appLog,
			open:      browser.Open,
			recompute: a.Recompute,
			quit:      stop,
		})
		if err != nil {
			appLog.Warn("Keyboard shortcuts unavailable", "error", err)
		} else {
			defer restore()
			printKeyboardHelp()
		}
	} else {
		fmt.Printf("%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	if err := a.Run(ctx, addr); err != nil {
		appLog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
