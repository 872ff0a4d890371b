// Package app 提供沙盒应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/game"
	"github.com/decker502/randforce/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// AppName gdata 存储使用的应用名
const AppName = "randforce"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 随机力配置文件路径，为空使用 data/random_force.yaml
	ConfigPath string
	// SandboxPath 世界配置文件路径，为空使用 data/sandbox.yaml
	SandboxPath string
	// Seed 随机种子，0 表示沿用已保存的设置
	Seed uint64
	// Bodies 初始刚体数量，0 表示沿用已保存的设置或配置文件
	Bodies int
	// ContinuousDelay 首次延迟按连续区间采样
	ContinuousDelay bool
}

// App 是沙盒应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	scene        *scenes.SandboxScene
	deltaTime    float64
	verbose      bool
}

// NewApp 创建并初始化沙盒应用
//
// 调用此函数前应先调用 embedded.Init()，否则磁盘上缺少配置文件时会加载失败。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	emitterCfg, sandboxCfg, err := LoadConfigs(cfg)
	if err != nil {
		return nil, err
	}

	settings := game.OpenSettingsManager(AppName)
	ApplyOverrides(settings, cfg)

	scene := scenes.NewSandboxScene(*sandboxCfg, *emitterCfg, settings)
	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	ebiten.SetTPS(sandboxCfg.TickRate)
	log.Printf("[App] Sandbox ready: tickRate=%d seed=%d persistent=%v",
		sandboxCfg.TickRate, scene.Seed(), settings.IsPersistent())

	return &App{
		sceneManager: sceneManager,
		scene:        scene,
		deltaTime:    sandboxCfg.DeltaTime(),
		verbose:      cfg.Verbose,
	}, nil
}

// LoadConfigs 加载随机力配置和世界配置
func LoadConfigs(cfg Config) (*config.RandomForceConfig, *config.SandboxConfig, error) {
	emitterPath := cfg.ConfigPath
	if emitterPath == "" {
		emitterPath = config.RandomForceConfigPath
	}
	sandboxPath := cfg.SandboxPath
	if sandboxPath == "" {
		sandboxPath = config.SandboxConfigPath
	}

	emitterCfg, err := config.LoadRandomForceConfig(emitterPath)
	if err != nil {
		return nil, nil, fmt.Errorf("随机力配置加载失败: %w", err)
	}
	sandboxCfg, err := config.LoadSandboxConfig(sandboxPath)
	if err != nil {
		return nil, nil, fmt.Errorf("世界配置加载失败: %w", err)
	}
	log.Printf("[Config] Loaded %s and %s", emitterPath, sandboxPath)
	return emitterCfg, sandboxCfg, nil
}

// ApplyOverrides 用命令行参数覆盖已保存的设置
// 只覆盖显式给出的值，覆盖结果会在退出时保存
func ApplyOverrides(settings *game.SettingsManager, cfg Config) {
	if cfg.Seed != 0 {
		settings.SetSeed(cfg.Seed)
	}
	if cfg.Bodies > 0 {
		settings.SetBodies(cfg.Bodies)
	}
	if cfg.ContinuousDelay {
		settings.SetContinuousDelay(true)
	}
}

// Update 更新沙盒逻辑
// 每个 tick 调用一次，步长固定为 1/TickRate
func (a *App) Update() error {
	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	a.sceneManager.Update(a.deltaTime)

	if a.scene.QuitRequested() {
		log.Printf("[App] Quit requested")
		return ebiten.Termination
	}
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return scenes.ScreenWidth, scenes.ScreenHeight
}

// GetSceneManager 返回场景管理器
// 用于在关闭时保存设置
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
