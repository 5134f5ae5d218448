package profile

import (
	"os"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	clearEnvVars()

	p := &Profile{}
	p.FromEnv()

	if p.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", p.Driver)
	}
	if p.MetricQueueSize != 256 {
		t.Errorf("expected default metric queue size 256, got %d", p.MetricQueueSize)
	}
	if p.LoadBudgetMs != 100 {
		t.Errorf("expected default load budget 100, got %d", p.LoadBudgetMs)
	}
	if p.OverloadThrottleSeconds != 30 {
		t.Errorf("expected default overload throttle 30, got %d", p.OverloadThrottleSeconds)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnvVars()
	os.Setenv("CADENCE_DRIVER", "postgres")
	os.Setenv("CADENCE_DSN", "postgres://localhost/cadence")
	os.Setenv("CADENCE_METRIC_QUEUE_SIZE", "64")
	defer clearEnvVars()

	p := &Profile{}
	p.FromEnv()

	if p.Driver != "postgres" {
		t.Errorf("expected driver postgres, got %q", p.Driver)
	}
	if p.DSN != "postgres://localhost/cadence" {
		t.Errorf("unexpected dsn %q", p.DSN)
	}
	if p.MetricQueueSize != 64 {
		t.Errorf("expected metric queue size 64, got %d", p.MetricQueueSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "unsupported driver",
			profile: Profile{Driver: "mysql"},
			wantErr: true,
		},
		{
			name:    "postgres without dsn",
			profile: Profile{Driver: "postgres"},
			wantErr: true,
		},
		{
			name:    "postgres with dsn",
			profile: Profile{Driver: "postgres", DSN: "postgres://localhost/cadence"},
			wantErr: false,
		},
		{
			name:    "sqlite defaults dsn from data dir",
			profile: Profile{Driver: "sqlite", Data: os.TempDir()},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.profile.DSN == "" {
				t.Error("expected DSN to be populated after Validate")
			}
		})
	}
}

func TestValidateNormalizesMode(t *testing.T) {
	p := &Profile{Mode: "staging", Driver: "postgres", DSN: "postgres://localhost/cadence"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.Mode != "demo" {
		t.Errorf("expected unknown mode to normalize to demo, got %q", p.Mode)
	}
}

func clearEnvVars() {
	for _, key := range []string{
		"CADENCE_DRIVER",
		"CADENCE_DSN",
		"CADENCE_DATA",
		"CADENCE_METRIC_QUEUE_SIZE",
		"CADENCE_LOAD_BUDGET_MS",
		"CADENCE_OVERLOAD_THROTTLE_SECONDS",
	} {
		os.Unsetenv(key)
	}
}
