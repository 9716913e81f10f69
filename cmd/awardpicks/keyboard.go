package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/services"
)

// keyActions are the operator shortcuts available while the server runs
type keyActions struct {
	statusURL string
	password  string
	log       *logger.SlogLogger
	open      func(url string) error
	recompute func(ctx context.Context) (*services.RecomputeSummary, error)
	quit      func()
}

// handle runs the action bound to key. It returns false once the server
// should stop reading input.
func (k keyActions) handle(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		fmt.Printf("%sOpening event status in browser...%s\n", cyan, reset)
		if err := k.open(k.statusURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if k.log.IsHTTPLoggingEnabled() {
			k.log.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			k.log.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(k.log)
	case "p":
		fmt.Printf("%sAdmin password: %s%s%s\n", green, yellow, k.password, reset)
	case "r":
		go k.runRecompute()
	case "?":
		printKeyboardHelp()
	case "q", "\x03":
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		k.quit()
		return false
	}
	return true
}

func (k keyActions) runRecompute() {
	fmt.Printf("%sRecomputing scores...%s\n", cyan, reset)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	summary, err := k.recompute(ctx)
	if err != nil {
		fmt.Printf("%sRecompute failed: %v%s\n", red, err, reset)
		return
	}
	fmt.Printf("%sScored %d entries across %d scopes in %s%s\n", green, summary.Scored, summary.Scopes, summary.Duration, reset)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) string {
	var next string
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	default:
		next = "debug"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
	return next
}

func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %so%s      - Open event status in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug, info, warn, error)\n", cyan, reset)
	fmt.Printf("    %sp%s      - Print admin password\n", cyan, reset)
	fmt.Printf("    %sr%s      - Recompute all scores\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

// readKeys feeds single bytes from read to k until a quit key or read error
func readKeys(read func([]byte) (int, error), k keyActions) {
	buf := make([]byte, 1)
	for {
		n, err := read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if !k.handle(buf[0]) {
			return
		}
	}
}
