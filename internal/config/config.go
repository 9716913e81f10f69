package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/awardpicks/internal/scoring"
)

// Config holds runtime settings parsed from flags with environment fallback
type Config struct {
	Port               int
	DBPath             string
	AdminPassword      string
	LogLevel           string
	LogFormat          string
	BaseURL            string
	CORSOrigins        []string
	FlagshipCategoryID string
	FlagshipPoints     scoring.PointTable
	OrdinaryPoints     scoring.PointTable
	RecomputeBatchSize int
	RecomputeWorkers   int
	RecomputeInterval  time.Duration
	BallotFeedURL      string
	NoAnimate          bool
	NoKeyboard         bool
	ShowVersion        bool
}

// MaxBatchSize caps how many scores are written in one transaction
const MaxBatchSize = 500

// Load parses args (without the program name). A .env file in the working
// directory is read first if present; flags win over the environment.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var flagshipPoints, ordinaryPoints, cors string

	fs := flag.NewFlagSet("awardpicks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.Port, "port", envInt("PORT", 8081), "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", envString("DB_PATH", "awardpicks.db"), "SQLite database path")
	fs.StringVar(&cfg.AdminPassword, "adminpw", envString("ADMIN_PASSWORD", ""), "Admin password (auto-generated if not set)")
	fs.StringVar(&cfg.LogLevel, "loglevel", envString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "logformat", envString("LOG_FORMAT", "text"), "Log format (text, json)")
	fs.StringVar(&cfg.BaseURL, "baseurl", envString("BASE_URL", ""), "Public base URL used in invite links")
	fs.StringVar(&cors, "cors", envString("CORS_ORIGINS", "*"), "Comma-separated allowed CORS origins")
	fs.StringVar(&cfg.FlagshipCategoryID, "flagship", envString("FLAGSHIP_CATEGORY_ID", "goty"), "Flagship category id")
	fs.StringVar(&flagshipPoints, "points-flagship", envString("POINTS_FLAGSHIP", "5,4,3,1"), "Flagship points: first,second,third,consolation")
	fs.StringVar(&ordinaryPoints, "points-ordinary", envString("POINTS_ORDINARY", "3,2,1,0"), "Ordinary points: first,second,third,consolation")
	fs.IntVar(&cfg.RecomputeBatchSize, "batch", envInt("RECOMPUTE_BATCH_SIZE", 400), "Scores written per recompute batch")
	fs.IntVar(&cfg.RecomputeWorkers, "workers", envInt("RECOMPUTE_WORKERS", 8), "Concurrent prediction loads during recompute")
	fs.DurationVar(&cfg.RecomputeInterval, "recompute-every", envDuration("RECOMPUTE_INTERVAL", 0), "Periodic recompute interval (0 disables)")
	fs.StringVar(&cfg.BallotFeedURL, "feed", envString("BALLOT_FEED_URL", ""), "Ballot feed URL")
	fs.BoolVar(&cfg.NoAnimate, "noanimate", false, "Skip the startup banner animation")
	fs.BoolVar(&cfg.NoKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.FlagshipPoints, err = ParsePointTable(flagshipPoints); err != nil {
		return Config{}, fmt.Errorf("flagship points: %w", err)
	}
	if cfg.OrdinaryPoints, err = ParsePointTable(ordinaryPoints); err != nil {
		return Config{}, fmt.Errorf("ordinary points: %w", err)
	}
	cfg.CORSOrigins = splitList(cors)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that flag parsing cannot
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("database path required")
	}
	if c.RecomputeBatchSize < 1 || c.RecomputeBatchSize > MaxBatchSize {
		return fmt.Errorf("recompute batch size must be between 1 and %d", MaxBatchSize)
	}
	if c.RecomputeWorkers < 1 {
		return errors.New("recompute workers must be at least 1")
	}
	if c.RecomputeInterval < 0 {
		return errors.New("recompute interval cannot be negative")
	}
	return c.Scoring().Validate()
}

// Scoring returns the engine configuration described by c
func (c Config) Scoring() scoring.Config {
	return scoring.Config{
		FlagshipCategoryID: c.FlagshipCategoryID,
		Flagship:           c.FlagshipPoints,
		Ordinary:           c.OrdinaryPoints,
	}
}

// ParsePointTable parses "first,second,third[,consolation]"
func ParsePointTable(s string) (scoring.PointTable, error) {
	parts := splitList(s)
	if len(parts) != 3 && len(parts) != 4 {
		return scoring.PointTable{}, fmt.Errorf("expected 3 or 4 values, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return scoring.PointTable{}, fmt.Errorf("invalid value %q", p)
		}
		if n < 0 {
			return scoring.PointTable{}, fmt.Errorf("negative value %d", n)
		}
		vals[i] = n
	}
	return scoring.PointTable{First: vals[0], Second: vals[1], Third: vals[2], Consolation: vals[3]}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
