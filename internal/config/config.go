package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/clawshield.db"

	// Policy rule source. Empty path means the built-in rule set.
	PolicyPath  string
	PolicyWatch bool

	// Pipeline stage budgets.
	ResolveTimeout time.Duration
	ExecuteTimeout time.Duration

	// Dashboard baseline (launch-era synthetic history). Set both to 0
	// to report pure live counts.
	BaselineTotal  int
	BaselineBlocks int

	// Stubbed monitoring values.
	SystemHealth string
	ActiveAgents int
}

func FromEnv() Config {
	addr := getenvDefault("CLAWSHIELD_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("CLAWSHIELD_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("CLAWSHIELD_DB_PATH", "./data/clawshield.db")

	policyPath := strings.TrimSpace(os.Getenv("CLAWSHIELD_POLICY_PATH"))
	policyWatch := strings.EqualFold(os.Getenv("CLAWSHIELD_POLICY_WATCH"), "true") ||
		os.Getenv("CLAWSHIELD_POLICY_WATCH") == "1"

	resolveTimeout := time.Duration(getenvInt("CLAWSHIELD_RESOLVE_TIMEOUT_MS", 5000)) * time.Millisecond
	executeTimeout := time.Duration(getenvInt("CLAWSHIELD_EXECUTE_TIMEOUT_MS", 10000)) * time.Millisecond

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		PolicyPath:  policyPath,
		PolicyWatch: policyWatch,

		ResolveTimeout: resolveTimeout,
		ExecuteTimeout: executeTimeout,

		BaselineTotal:  getenvInt("CLAWSHIELD_BASELINE_TOTAL", 1284),
		BaselineBlocks: getenvInt("CLAWSHIELD_BASELINE_BLOCKS", 42),

		SystemHealth: getenvDefault("CLAWSHIELD_SYSTEM_HEALTH", "99.9%"),
		ActiveAgents: getenvInt("CLAWSHIELD_ACTIVE_AGENTS", 12),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
