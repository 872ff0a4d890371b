package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/types"
	"github.com/gdamore/tcell/v2"
)

func newTestPreview(t *testing.T) (*preview, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	sandbox := config.DefaultSandboxConfig()
	sandbox.Bodies = 5
	return newPreview(screen, sandbox, config.DefaultRandomForceConfig(), 3), screen
}

func TestCellForCorners(t *testing.T) {
	bounds := config.BoxBounds{
		Min: types.Vector3{X: -10, Y: 0},
		Max: types.Vector3{X: 10, Y: 10},
	}

	tests := []struct {
		name  string
		p     types.Vector3
		wantX int
		wantY int
	}{
		{"bottom left", types.Vector3{X: -10, Y: 0}, 1, 22},
		{"top right", types.Vector3{X: 10, Y: 10}, 78, 3},
		{"outside is clamped", types.Vector3{X: 50, Y: -5}, 78, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := cellFor(bounds, tt.p, 80, 24)
			if !ok || x != tt.wantX || y != tt.wantY {
				t.Errorf("cellFor(%v) = (%d, %d, %v), want (%d, %d, true)", tt.p, x, y, ok, tt.wantX, tt.wantY)
			}
		})
	}

	if _, _, ok := cellFor(bounds, types.Zero3, 2, 4); ok {
		t.Error("tiny terminal should not map any cell")
	}
}

func TestHandleKey(t *testing.T) {
	p, _ := newTestPreview(t)

	if !p.handleKey(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)) {
		t.Fatal("'n' should not quit")
	}
	if got := len(p.world.Bodies()); got != 6 {
		t.Errorf("bodies after spawn = %d, want 6", got)
	}

	p.handleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	p.world.Step(1.0 / 60)
	if got := p.world.Stats().ActiveEmitters; got != 0 {
		t.Errorf("ActiveEmitters after toggle = %d, want 0", got)
	}

	p.handleKey(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if !p.enabled || len(p.world.Bodies()) != 5 {
		t.Errorf("reset: enabled=%v bodies=%d", p.enabled, len(p.world.Bodies()))
	}

	if p.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("'q' should quit")
	}
	if p.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc should quit")
	}
}

func TestDrawPlacesBodies(t *testing.T) {
	p, screen := newTestPreview(t)
	p.world.Step(1.0 / 60)
	p.draw()

	width, height := screen.Size()
	glyphs := 0
	for y := headerRows + 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r == 'o' || r == '*' || r == '.' {
				glyphs++
			}
		}
	}
	// 多个刚体可能落在同一个格子
	if glyphs == 0 || glyphs > 5 {
		t.Errorf("found %d body glyphs, want 1..5", glyphs)
	}

	r, _, _, _ := screen.GetContent(0, headerRows)
	if r != tcell.RuneULCorner {
		t.Errorf("corner = %q, want %q", r, tcell.RuneULCorner)
	}
}

func TestLoadConfigsDefaultsOnlyForMissingDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	emitterCfg, sandboxCfg, err := loadConfigs(config.RandomForceConfigPath, config.SandboxConfigPath)
	if err != nil {
		t.Fatalf("loadConfigs with missing default files: %v", err)
	}
	if emitterCfg != config.DefaultRandomForceConfig() || sandboxCfg != config.DefaultSandboxConfig() {
		t.Error("missing default files should yield built-in defaults")
	}

	if _, _, err := loadConfigs("missing.yaml", config.SandboxConfigPath); err == nil {
		t.Error("explicit missing config should be an error")
	}

	bad := filepath.Join(t.TempDir(), "sandbox.yaml")
	if err := os.WriteFile(bad, []byte("restitution: .nan\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := loadConfigs(config.RandomForceConfigPath, bad); err == nil {
		t.Error("invalid sandbox config should be an error")
	}
}
