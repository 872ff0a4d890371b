// tui_preview 在终端中显示沙盒世界（XY 侧视图）
//
// 按键: Space 启用/停用发射器, n 生成刚体, b 生成无刚体的发射器, r 重置, q/Esc 退出
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/game"
	"github.com/decker502/randforce/pkg/utils"
	"github.com/gdamore/tcell/v2"
)

var (
	configPath  = flag.String("config", config.RandomForceConfigPath, "随机力配置文件（默认路径不存在时使用内置默认值）")
	sandboxPath = flag.String("sandbox", config.SandboxConfigPath, "世界配置文件（默认路径不存在时使用内置默认值）")
	seed        = flag.Uint64("seed", 0, "随机种子（0 表示使用时间种子）")
	bodies      = flag.Int("bodies", 0, "初始刚体数量（0 表示使用配置文件）")
	verbose     = flag.Bool("verbose", false, "把日志写到 tui_preview.log")
)

func main() {
	flag.Parse()

	// 终端被 tcell 接管，日志只能写文件
	log.SetOutput(io.Discard)
	if *verbose {
		f, err := os.Create("tui_preview.log")
		if err == nil {
			defer f.Close()
			log.SetOutput(f)
		}
	}

	emitterCfg, sandboxCfg, err := loadConfigs(*configPath, *sandboxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *bodies > 0 {
		sandboxCfg.Bodies = *bodies
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := newPreview(screen, sandboxCfg, emitterCfg, *seed)
	p.run()
	screen.Fini()
}

// loadConfigs 加载两份配置
// 默认路径的文件不存在时使用内置默认值，其他错误直接返回
func loadConfigs(emitterPath, sandboxPath string) (config.RandomForceConfig, config.SandboxConfig, error) {
	emitterCfg := config.DefaultRandomForceConfig()
	if cfg, err := config.LoadRandomForceConfig(emitterPath); err == nil {
		emitterCfg = *cfg
	} else if !missingDefault(err, emitterPath, config.RandomForceConfigPath) {
		return emitterCfg, config.SandboxConfig{}, err
	}

	sandboxCfg := config.DefaultSandboxConfig()
	if cfg, err := config.LoadSandboxConfig(sandboxPath); err == nil {
		sandboxCfg = *cfg
	} else if !missingDefault(err, sandboxPath, config.SandboxConfigPath) {
		return emitterCfg, sandboxCfg, err
	}
	return emitterCfg, sandboxCfg, nil
}

func missingDefault(err error, path, defaultPath string) bool {
	if path == defaultPath && errors.Is(err, fs.ErrNotExist) {
		log.Printf("[TUIPreview] %v, using defaults", err)
		return true
	}
	return false
}

// preview 终端预览状态
type preview struct {
	screen     tcell.Screen
	sandboxCfg config.SandboxConfig
	emitterCfg config.RandomForceConfig
	seed       uint64

	world     *game.World
	enabled   bool
	lastFired map[ecs.EntityID]int // 上一帧各刚体的累计触发次数
}

func newPreview(screen tcell.Screen, sandboxCfg config.SandboxConfig, emitterCfg config.RandomForceConfig, seed uint64) *preview {
	p := &preview{
		screen:     screen,
		sandboxCfg: sandboxCfg,
		emitterCfg: emitterCfg,
		seed:       seed,
	}
	p.reset()
	return p
}

func (p *preview) reset() {
	var rng *utils.PCGRandom
	if p.seed != 0 {
		rng = utils.NewRandom(p.seed)
	} else {
		rng = utils.NewTimeSeededRandom()
	}
	p.world = game.NewWorld(p.sandboxCfg, p.emitterCfg, rng)
	p.world.Populate(p.sandboxCfg.Bodies)
	p.enabled = true
	p.lastFired = make(map[ecs.EntityID]int)
}

// handleKey 处理按键，返回 false 表示退出
func (p *preview) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			p.enabled = !p.enabled
			p.world.RandomForce.SetEnabled(p.enabled)
		case 'n':
			p.world.SpawnBody(p.world.RandomSpawnPoint())
			if !p.enabled {
				p.world.RandomForce.SetEnabled(false)
			}
		case 'b':
			p.world.SpawnEmitterOnly()
		case 'r':
			p.reset()
		}
	}
	return true
}

func (p *preview) run() {
	dt := p.sandboxCfg.DeltaTime()
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- p.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !p.handleKey(ev) {
					return
				}
			case *tcell.EventResize:
				p.screen.Sync()
			case nil:
				// Fini 之后 PollEvent 返回 nil
				return
			}

		case <-ticker.C:
			p.world.Step(dt)
			p.draw()
		}
	}
}
