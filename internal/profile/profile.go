package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the analytics core.
type Profile struct {
	// Mode is one of demo, dev, prod.
	Mode string
	// Data is the data directory for file-backed drivers.
	Data string
	// Driver is the database driver: sqlite, postgres.
	Driver string
	// DSN is the driver-specific data source name.
	DSN string
	// Version is the current service version.
	Version string

	// MetricQueueSize bounds the async load-metric persistence queue.
	MetricQueueSize int
	// LoadBudgetMs is the soft latency budget for load assessment, logged when exceeded.
	LoadBudgetMs int
	// OverloadThrottleSeconds is the minimum gap between overload events per session.
	OverloadThrottleSeconds int
}

// IsDev reports whether the profile runs in a non-production mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// FromEnv loads configuration overrides from environment variables.
func (p *Profile) FromEnv() {
	if p.Driver == "" {
		p.Driver = getEnvOrDefault("CADENCE_DRIVER", "sqlite")
	}
	if p.DSN == "" {
		p.DSN = getEnvOrDefault("CADENCE_DSN", "")
	}
	if p.Data == "" {
		p.Data = getEnvOrDefault("CADENCE_DATA", "")
	}
	p.MetricQueueSize = getEnvOrDefaultInt("CADENCE_METRIC_QUEUE_SIZE", 256)
	p.LoadBudgetMs = getEnvOrDefaultInt("CADENCE_LOAD_BUDGET_MS", 100)
	p.OverloadThrottleSeconds = getEnvOrDefaultInt("CADENCE_OVERLOAD_THROTTLE_SECONDS", 30)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and fills driver-dependent defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q (expected sqlite or postgres)", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("cadence_%s.db", p.Mode))
	}

	if p.MetricQueueSize <= 0 {
		p.MetricQueueSize = 256
	}
	if p.LoadBudgetMs <= 0 {
		p.LoadBudgetMs = 100
	}
	if p.OverloadThrottleSeconds <= 0 {
		p.OverloadThrottleSeconds = 30
	}
	return nil
}
