package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/decker502/randforce/pkg/embedded"
	"github.com/decker502/randforce/pkg/types"
)

func TestLoadRandomForceConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *RandomForceConfig)
	}{
		{
			name: "valid config",
			yamlContent: `
initialDelay:
  min: 0
  max: 1
  continuous: false
period:
  min: 0.1
  max: 1.0
force:
  min: -10
  max: 10
mode: impulse
`,
			validate: func(t *testing.T, cfg *RandomForceConfig) {
				if cfg.Period.Min != 0.1 || cfg.Period.Max != 1.0 {
					t.Errorf("expected period [0.1, 1.0), got [%f, %f)", cfg.Period.Min, cfg.Period.Max)
				}
				if cfg.Force.Min != -10 || cfg.Force.Max != 10 {
					t.Errorf("expected force [-10, 10), got [%f, %f)", cfg.Force.Min, cfg.Force.Max)
				}
				if cfg.InitialDelay.Continuous {
					t.Error("expected integer delay sampling")
				}
				if cfg.ForceMode() != types.ForceModeImpulse {
					t.Errorf("expected Impulse, got %v", cfg.ForceMode())
				}
			},
		},
		{
			name: "partial config keeps defaults",
			yamlContent: `
initialDelay:
  continuous: true
mode: velocityChange
`,
			validate: func(t *testing.T, cfg *RandomForceConfig) {
				if !cfg.InitialDelay.Continuous {
					t.Error("expected continuous delay sampling")
				}
				if cfg.InitialDelay.Max != 1 {
					t.Errorf("expected default delay max 1, got %f", cfg.InitialDelay.Max)
				}
				if cfg.Period.Min != 0.1 {
					t.Errorf("expected default period min 0.1, got %f", cfg.Period.Min)
				}
				if cfg.ForceMode() != types.ForceModeVelocityChange {
					t.Errorf("expected VelocityChange, got %v", cfg.ForceMode())
				}
			},
		},
		{
			name: "zero period rejected",
			yamlContent: `
period:
  min: 0
  max: 1
`,
			wantErr:     true,
			errContains: "period min must be > 0",
		},
		{
			name: "inverted force range",
			yamlContent: `
force:
  min: 10
  max: -10
`,
			wantErr:     true,
			errContains: "force range invalid",
		},
		{
			name: "fractional integer delay",
			yamlContent: `
initialDelay:
  min: 0
  max: 0.5
`,
			wantErr:     true,
			errContains: "must be integers",
		},
		{
			name:        "unknown mode",
			yamlContent: "mode: explosion\n",
			wantErr:     true,
			errContains: "unknown force mode",
		},
		{
			name:        "malformed yaml",
			yamlContent: "period: [oops\n",
			wantErr:     true,
			errContains: "failed to parse",
		},
		{
			name:        "NaN period rejected",
			yamlContent: "period: {min: .nan, max: 1}\n",
			wantErr:     true,
			errContains: "period must be finite",
		},
		{
			name:        "NaN force rejected",
			yamlContent: "force: {min: .nan, max: 10}\n",
			wantErr:     true,
			errContains: "force must be finite",
		},
		{
			name:        "infinite force rejected",
			yamlContent: "force: {min: -10, max: .inf}\n",
			wantErr:     true,
			errContains: "force must be finite",
		},
		{
			name:        "NaN continuous delay rejected",
			yamlContent: "initialDelay: {min: .nan, max: 1, continuous: true}\n",
			wantErr:     true,
			errContains: "initialDelay must be finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "random_force.yaml")
			if err := os.WriteFile(path, []byte(tt.yamlContent), 0644); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}

			cfg, err := LoadRandomForceConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestDefaultRandomForceConfigIsValid(t *testing.T) {
	cfg := DefaultRandomForceConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.InitialDelay.Min != 0 || cfg.InitialDelay.Max != 1 || cfg.InitialDelay.Continuous {
		t.Errorf("default delay should be integer [0, 1), got %+v", cfg.InitialDelay)
	}
}

func TestLoadRandomForceConfigFallsBackToEmbedded(t *testing.T) {
	embedded.Init(fstest.MapFS{
		"data/random_force.yaml": {Data: []byte("force:\n  min: -2\n  max: 2\n")},
	})
	defer embedded.Init(nil)

	// 切到空目录，确保磁盘上不存在该文件
	t.Chdir(t.TempDir())

	cfg, err := LoadRandomForceConfig(RandomForceConfigPath)
	if err != nil {
		t.Fatalf("LoadRandomForceConfig() error: %v", err)
	}
	if cfg.Force.Min != -2 || cfg.Force.Max != 2 {
		t.Errorf("expected embedded force range [-2, 2), got [%f, %f)", cfg.Force.Min, cfg.Force.Max)
	}
}

func TestLoadRandomForceConfigMissing(t *testing.T) {
	embedded.Init(nil)
	_, err := LoadRandomForceConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
