package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Return policies decide who may close a loan.
const (
	ReturnPolicyAny   = "any"
	ReturnPolicyOwner = "owner"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress          string
	DatabaseURI         string
	SessionSecret       string
	SessionTTL          time.Duration
	AdminUsername       string
	AdminPassword       string
	LoanPeriod          time.Duration
	ReturnPolicy        string
	LendingMaxAttempts  int
	OverdueScanInterval time.Duration
	OverdueBatchSize    int
	ShutdownTimeout     time.Duration
	CORSOrigins         []string
	LogLevel            string
}

const (
	defaultRunAddress          = ":8080"
	defaultSessionSecret       = "change-me-in-production"
	defaultSessionTTL          = 24 * time.Hour
	defaultAdminUsername       = "admin"
	defaultAdminPassword       = "admin123"
	defaultLoanPeriod          = 14 * 24 * time.Hour
	defaultReturnPolicy        = ReturnPolicyAny
	defaultLendingMaxAttempts  = 5
	defaultOverdueScanInterval = time.Hour
	defaultOverdueBatchSize    = 50
	defaultShutdownTimeout     = 10 * time.Second
	defaultCORSOrigins         = "*"
	defaultLogLevel            = "info"
)

// Load parses configuration from an optional .env file, flags and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		SessionSecret:       getString(lookup, "SESSION_SECRET", defaultSessionSecret),
		SessionTTL:          getDuration(lookup, "SESSION_TTL", defaultSessionTTL),
		AdminUsername:       getString(lookup, "ADMIN_USERNAME", defaultAdminUsername),
		AdminPassword:       getString(lookup, "ADMIN_PASSWORD", defaultAdminPassword),
		LoanPeriod:          getDuration(lookup, "LOAN_PERIOD", defaultLoanPeriod),
		ReturnPolicy:        getString(lookup, "RETURN_POLICY", defaultReturnPolicy),
		LendingMaxAttempts:  getInt(lookup, "LENDING_MAX_ATTEMPTS", defaultLendingMaxAttempts),
		OverdueScanInterval: getDuration(lookup, "OVERDUE_SCAN_INTERVAL", defaultOverdueScanInterval),
		OverdueBatchSize:    getInt(lookup, "OVERDUE_BATCH_SIZE", defaultOverdueBatchSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("library", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		sessionTTLStr      = cfg.SessionTTL.String()
		loanPeriodStr      = cfg.LoanPeriod.String()
		overdueIntervalStr = cfg.OverdueScanInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		corsOriginsStr     = getString(lookup, "CORS_ORIGINS", defaultCORSOrigins)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Secret for signing session tokens")
	fs.StringVar(&sessionTTLStr, "session-ttl", sessionTTLStr, "Session lifetime")
	fs.StringVar(&cfg.AdminUsername, "admin-username", cfg.AdminUsername, "Administrator login")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Administrator password")
	fs.StringVar(&loanPeriodStr, "loan-period", loanPeriodStr, "Time until a borrowed copy is due")
	fs.StringVar(&cfg.ReturnPolicy, "return-policy", cfg.ReturnPolicy, "Who may return a loan: any or owner")
	fs.IntVar(&cfg.LendingMaxAttempts, "lending-attempts", cfg.LendingMaxAttempts, "Attempts for lending transactions aborted by concurrent updates")
	fs.StringVar(&overdueIntervalStr, "overdue-interval", overdueIntervalStr, "Interval between overdue loan scans")
	fs.IntVar(&cfg.OverdueBatchSize, "overdue-batch", cfg.OverdueBatchSize, "Maximum loans per overdue scan")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&corsOriginsStr, "cors-origins", corsOriginsStr, "Comma separated list of allowed CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SessionTTL, err = time.ParseDuration(sessionTTLStr); err != nil {
		return nil, fmt.Errorf("invalid session ttl: %w", err)
	}

	if cfg.LoanPeriod, err = time.ParseDuration(loanPeriodStr); err != nil {
		return nil, fmt.Errorf("invalid loan period: %w", err)
	}

	if cfg.OverdueScanInterval, err = time.ParseDuration(overdueIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid overdue interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	secretFlagSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "session-secret" {
			secretFlagSet = true
		}
	})

	if secretFile, ok := lookup("SESSION_SECRET_FILE"); ok && secretFile != "" && !secretFlagSet {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read session secret file: %w", err)
		}
		cfg.SessionSecret = strings.TrimSpace(string(content))
	}

	cfg.CORSOrigins = splitList(corsOriginsStr)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{defaultCORSOrigins}
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}

	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = defaultLoanPeriod
	}

	if cfg.LendingMaxAttempts <= 0 {
		cfg.LendingMaxAttempts = defaultLendingMaxAttempts
	}

	if cfg.OverdueScanInterval <= 0 {
		cfg.OverdueScanInterval = defaultOverdueScanInterval
	}

	if cfg.OverdueBatchSize <= 0 {
		cfg.OverdueBatchSize = defaultOverdueBatchSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.ReturnPolicy = strings.ToLower(strings.TrimSpace(cfg.ReturnPolicy))
	if cfg.ReturnPolicy != ReturnPolicyAny && cfg.ReturnPolicy != ReturnPolicyOwner {
		return nil, fmt.Errorf("invalid return policy %q", cfg.ReturnPolicy)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if strings.TrimSpace(cfg.AdminUsername) == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("administrator credentials must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
