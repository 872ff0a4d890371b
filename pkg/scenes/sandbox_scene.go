package scenes

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/game"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 画面尺寸
const (
	ScreenWidth  = 960
	ScreenHeight = 600

	viewMargin     = 40
	statusBarH     = 60   // 顶部状态栏高度，点击此区域切换发射器
	flashDuration  = 0.25 // 冲量箭头显示时间（秒）
	impulseArrowPx = 3.0  // 每单位冲量对应的箭头长度（像素）
)

var (
	colorBackground = color.RGBA{R: 24, G: 26, B: 33, A: 255}
	colorBounds     = color.RGBA{R: 90, G: 96, B: 110, A: 255}
	colorActive     = color.RGBA{R: 120, G: 200, B: 255, A: 255}
	colorIdle       = color.RGBA{R: 140, G: 140, B: 150, A: 255}
	colorImpulse    = color.NRGBA{R: 255, G: 210, B: 90, A: 255}
)

// impulseFlash 最近一次冲量的可视化
type impulseFlash struct {
	impulse   types.Vector3
	remaining float64
}

// SandboxScene 随机力沙盒场景
//
// 侧视图：X 水平，Y 垂直，Z 用圆的半径表示远近。
//
// 按键：
//
//	Space  启用/停用所有发射器
//	N      在随机位置生成一个刚体
//	B      生成一个没有刚体的发射器（演示激活失败）
//	C      切换首次延迟的采样方式（重置后生效）
//	R      重置世界
//	H      显示/隐藏帮助
//	Esc    退出
//
// 触摸/鼠标：点击状态栏切换发射器，点击场地在该处生成刚体，双指点击重置。
type SandboxScene struct {
	world    *game.World
	settings *game.SettingsManager

	sandboxCfg config.SandboxConfig
	emitterCfg config.RandomForceConfig

	emittersEnabled bool
	flashes         map[ecs.EntityID]*impulseFlash
	quitRequested   bool
	seed            uint64
}

// NewSandboxScene 创建沙盒场景并按设置生成初始刚体
//
// 参数:
//   - sandboxCfg: 世界配置
//   - emitterCfg: 随机力配置
//   - settings: 持久化设置（种子、刚体数量、延迟模式）
func NewSandboxScene(sandboxCfg config.SandboxConfig, emitterCfg config.RandomForceConfig, settings *game.SettingsManager) *SandboxScene {
	s := &SandboxScene{
		settings:        settings,
		sandboxCfg:      sandboxCfg,
		emitterCfg:      emitterCfg,
		emittersEnabled: true,
	}
	s.Reset()
	return s
}

// World 返回当前世界
func (s *SandboxScene) World() *game.World {
	return s.world
}

// Seed 返回当前世界使用的随机种子
func (s *SandboxScene) Seed() uint64 {
	return s.seed
}

// QuitRequested 用户是否请求退出
func (s *SandboxScene) QuitRequested() bool {
	return s.quitRequested
}

// Reset 按当前设置重建世界
func (s *SandboxScene) Reset() {
	prefs := s.settings.GetSettings()

	var rng *utils.PCGRandom
	if prefs.Seed != 0 {
		rng = utils.NewRandom(prefs.Seed)
	} else {
		rng = utils.NewTimeSeededRandom()
	}
	s.seed = rng.Seed()

	emitterCfg := s.emitterCfg
	emitterCfg.InitialDelay.Continuous = emitterCfg.InitialDelay.Continuous || prefs.ContinuousDelay

	s.world = game.NewWorld(s.sandboxCfg, emitterCfg, rng)
	s.flashes = make(map[ecs.EntityID]*impulseFlash)
	s.world.RandomForce.SetImpulseObserver(s.onImpulse)

	bodies := s.sandboxCfg.Bodies
	if prefs.Bodies > 0 {
		bodies = prefs.Bodies
	}
	s.world.Populate(bodies)
	s.emittersEnabled = true

	log.Printf("[SandboxScene] Reset with seed=%d bodies=%d continuousDelay=%v",
		s.seed, bodies, emitterCfg.InitialDelay.Continuous)
}

// ToggleEmitters 启用或停用所有发射器
func (s *SandboxScene) ToggleEmitters() {
	s.emittersEnabled = !s.emittersEnabled
	s.world.RandomForce.SetEnabled(s.emittersEnabled)
}

// SpawnBody 在随机位置生成刚体
func (s *SandboxScene) SpawnBody() ecs.EntityID {
	p := s.world.RandomSpawnPoint()
	return s.SpawnBodyAt(p.X, p.Y)
}

// SpawnBrokenEmitter 生成没有刚体的发射器
func (s *SandboxScene) SpawnBrokenEmitter() ecs.EntityID {
	return s.world.SpawnEmitterOnly()
}

// ToggleContinuousDelay 切换首次延迟采样方式并保存
func (s *SandboxScene) ToggleContinuousDelay() {
	prefs := s.settings.GetSettings()
	s.settings.SetContinuousDelay(!prefs.ContinuousDelay)
	if err := s.settings.Save(); err != nil {
		log.Printf("[SandboxScene] Warning: %v", err)
	}
}

// ToggleHelp 切换帮助显示
func (s *SandboxScene) ToggleHelp() {
	prefs := s.settings.GetSettings()
	s.settings.SetShowHelp(!prefs.ShowHelp)
}

// SaveOnExit 实现 game.Saveable
func (s *SandboxScene) SaveOnExit() bool {
	if err := s.settings.Save(); err != nil {
		log.Printf("[SandboxScene] Failed to save settings: %v", err)
		return false
	}
	return true
}

// Update 处理输入并推进世界
func (s *SandboxScene) Update(deltaTime float64) {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		s.quitRequested = true
		return
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		s.ToggleEmitters()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		s.SpawnBody()
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		s.SpawnBrokenEmitter()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		s.ToggleContinuousDelay()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		s.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		s.ToggleHelp()
	}

	if pressed, x, y := utils.IsJustTouchedOrClicked(); pressed {
		s.handleTap(x, y)
	}

	s.world.Step(deltaTime)

	for id, f := range s.flashes {
		f.remaining -= deltaTime
		if f.remaining <= 0 || !s.world.EntityManager.IsAlive(id) {
			delete(s.flashes, id)
		}
	}
}

// handleTap 处理点击或触摸
func (s *SandboxScene) handleTap(x, y int) {
	switch {
	case utils.ActiveTouchCount() >= 2:
		s.Reset()
	case y < statusBarH:
		s.ToggleEmitters()
	default:
		s.SpawnBodyAt(screenToWorld(s.sandboxCfg.Bounds, x, y))
	}
}

// SpawnBodyAt 在屏幕点击处生成刚体，Z 随机
func (s *SandboxScene) SpawnBodyAt(x, y float64) ecs.EntityID {
	pos := s.world.RandomSpawnPoint()
	pos.X, pos.Y = x, y
	id := s.world.SpawnBody(pos)
	if !s.emittersEnabled {
		s.world.RandomForce.SetEnabled(false)
	}
	return id
}

func (s *SandboxScene) onImpulse(id ecs.EntityID, impulse types.Vector3) {
	s.flashes[id] = &impulseFlash{impulse: impulse, remaining: flashDuration}
}

// Draw 绘制场景
func (s *SandboxScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	bounds := s.sandboxCfg.Bounds
	left, top := projectToScreen(bounds, types.Vector3{X: bounds.Min.X, Y: bounds.Max.Y})
	right, bottom := projectToScreen(bounds, types.Vector3{X: bounds.Max.X, Y: bounds.Min.Y})
	vector.StrokeRect(screen, left, top, right-left, bottom-top, 1, colorBounds, false)

	for _, b := range s.world.Bodies() {
		if !b.HasBody {
			continue
		}
		x, y := projectToScreen(bounds, b.Position)
		r := depthRadius(bounds, b.Position.Z)

		clr := colorIdle
		if b.Emitting {
			clr = colorActive
		}
		vector.DrawFilledCircle(screen, x, y, r, clr, true)

		if f, ok := s.flashes[b.ID]; ok {
			// 箭头随剩余时间淡出
			fade := utils.EaseOutQuad(utils.Clamp01(f.remaining / flashDuration))
			arrow := colorImpulse
			arrow.A = uint8(255 * fade)
			dx := float32(f.impulse.X * impulseArrowPx)
			dy := float32(-f.impulse.Y * impulseArrowPx)
			vector.StrokeLine(screen, x, y, x+dx, y+dy, 2, arrow, true)
		}
	}

	ebitenutil.DebugPrintAt(screen, s.statusText(), 10, 10)
	if s.settings.GetSettings().ShowHelp {
		help := helpText
		if utils.IsMobile() {
			help = touchHelpText
		}
		ebitenutil.DebugPrintAt(screen, help, 10, ScreenHeight-110)
	}
}

const helpText = `Space  toggle emitters
N      spawn body
B      spawn emitter without rigid body
C      toggle continuous first delay (applies on reset)
R      reset     H  help     Esc  quit`

const touchHelpText = `tap status bar   toggle emitters
tap field        spawn body
two-finger tap   reset`

func (s *SandboxScene) statusText() string {
	st := s.world.Stats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "t=%.1fs  seed=%d  bodies=%d\n", st.Elapsed, s.seed, st.Entities)
	fmt.Fprintf(&sb, "emitters: %d active, %d failed  impulses=%d  pending=%d\n",
		st.ActiveEmitters, st.FailedEmitters, st.Impulses, st.PendingInvokes)
	state := "ON"
	if !s.emittersEnabled {
		state = "OFF"
	}
	fmt.Fprintf(&sb, "emitters %s  continuous delay (next reset): %v", state, s.settings.GetSettings().ContinuousDelay)
	return sb.String()
}

// projectToScreen 将世界坐标投影到屏幕（侧视图）
func projectToScreen(bounds config.BoxBounds, p types.Vector3) (float32, float32) {
	nx := utils.InverseLerp(bounds.Min.X, bounds.Max.X, p.X)
	ny := utils.InverseLerp(bounds.Min.Y, bounds.Max.Y, p.Y)

	x := utils.Lerp(viewMargin, ScreenWidth-viewMargin, nx)
	y := utils.Lerp(ScreenHeight-viewMargin, viewMargin, ny)
	return float32(x), float32(y)
}

// screenToWorld projectToScreen 的逆映射，结果限制在边界内
func screenToWorld(bounds config.BoxBounds, sx, sy int) (float64, float64) {
	nx := utils.Clamp01(utils.InverseLerp(viewMargin, ScreenWidth-viewMargin, float64(sx)))
	ny := utils.Clamp01(utils.InverseLerp(ScreenHeight-viewMargin, viewMargin, float64(sy)))
	return utils.Lerp(bounds.Min.X, bounds.Max.X, nx), utils.Lerp(bounds.Min.Y, bounds.Max.Y, ny)
}

// depthRadius Z 越大（越近）半径越大
func depthRadius(bounds config.BoxBounds, z float64) float32 {
	nz := utils.Clamp01(utils.InverseLerp(bounds.Min.Z, bounds.Max.Z, z))
	return float32(utils.Lerp(5, 12, nz))
}
