package config

import (
	"fmt"

	"github.com/decker502/randforce/pkg/types"
	"gopkg.in/yaml.v3"
)

// SandboxConfigPath 沙盒世界默认配置文件位置
const SandboxConfigPath = "data/sandbox.yaml"

// SandboxConfig 沙盒世界配置
//
// 描述世界边界、重力、初始刚体数量等宿主侧参数。
// 随机力本身的参数见 RandomForceConfig。
//
// 配置文件位置: data/sandbox.yaml
type SandboxConfig struct {
	// Bodies 启动时生成的刚体数量
	Bodies int `yaml:"bodies"`

	// TickRate 固定逻辑帧率（每秒帧数）
	TickRate int `yaml:"tickRate"`

	// Gravity 重力加速度（米/秒²）
	Gravity types.Vector3 `yaml:"gravity"`

	// Bounds 世界边界（轴对齐盒）
	Bounds BoxBounds `yaml:"bounds"`

	// Restitution 碰到边界时的反弹系数 [0, 1]
	Restitution float64 `yaml:"restitution"`

	// Body 新生成刚体的物理参数
	Body BodyConfig `yaml:"body"`

	// Lifetime 刚体存活时间区间（秒），Max 为 0 表示永久存在
	Lifetime FloatRange `yaml:"lifetime"`
}

// BoxBounds 轴对齐盒边界
type BoxBounds struct {
	Min types.Vector3 `yaml:"min"`
	Max types.Vector3 `yaml:"max"`
}

// Center 返回边界中心
func (b BoxBounds) Center() types.Vector3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// BodyConfig 刚体物理参数
type BodyConfig struct {
	Mass       float64 `yaml:"mass"`
	Drag       float64 `yaml:"drag"`
	UseGravity bool    `yaml:"useGravity"`
}

// DefaultSandboxConfig 返回默认沙盒配置
func DefaultSandboxConfig() SandboxConfig {
	return SandboxConfig{
		Bodies:      12,
		TickRate:    60,
		Gravity:     types.Vector3{Y: -9.81},
		Bounds:      BoxBounds{Min: types.Vector3{X: -20, Y: 0, Z: -20}, Max: types.Vector3{X: 20, Y: 30, Z: 20}},
		Restitution: 0.6,
		Body:        BodyConfig{Mass: 1, Drag: 0.1, UseGravity: true},
		Lifetime:    FloatRange{Min: 0, Max: 0},
	}
}

// LoadSandboxConfig 加载沙盒配置
//
// 参数:
//   - path: 配置文件路径（如 "data/sandbox.yaml"）
//
// 返回:
//   - *SandboxConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadSandboxConfig(path string) (*SandboxConfig, error) {
	data, err := readConfigData(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sandbox config: %w", err)
	}

	cfg := DefaultSandboxConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sandbox config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sandbox config: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置有效性
func (c *SandboxConfig) Validate() error {
	if err := checkFinite("gravity", c.Gravity.X, c.Gravity.Y, c.Gravity.Z); err != nil {
		return err
	}
	if err := checkFinite("bounds", c.Bounds.Min.X, c.Bounds.Min.Y, c.Bounds.Min.Z,
		c.Bounds.Max.X, c.Bounds.Max.Y, c.Bounds.Max.Z); err != nil {
		return err
	}
	if err := checkFinite("restitution", c.Restitution); err != nil {
		return err
	}
	if err := checkFinite("body", c.Body.Mass, c.Body.Drag); err != nil {
		return err
	}
	if err := checkFinite("lifetime", c.Lifetime.Min, c.Lifetime.Max); err != nil {
		return err
	}
	if c.Bodies < 0 {
		return fmt.Errorf("bodies must be >= 0, got %d", c.Bodies)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate must be > 0, got %d", c.TickRate)
	}
	if c.Bounds.Min.X >= c.Bounds.Max.X || c.Bounds.Min.Y >= c.Bounds.Max.Y || c.Bounds.Min.Z >= c.Bounds.Max.Z {
		return fmt.Errorf("bounds invalid: min%v must be below max%v on every axis", c.Bounds.Min, c.Bounds.Max)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return fmt.Errorf("restitution must be in [0, 1], got %.2f", c.Restitution)
	}
	if c.Body.Mass <= 0 {
		return fmt.Errorf("body mass must be > 0, got %.3f", c.Body.Mass)
	}
	if c.Body.Drag < 0 {
		return fmt.Errorf("body drag must be >= 0, got %.3f", c.Body.Drag)
	}
	if c.Lifetime.Min < 0 || (c.Lifetime.Max > 0 && c.Lifetime.Min >= c.Lifetime.Max) {
		return fmt.Errorf("lifetime range invalid: [%.2f, %.2f)", c.Lifetime.Min, c.Lifetime.Max)
	}
	return nil
}

// DeltaTime 返回固定帧间隔（秒）
func (c *SandboxConfig) DeltaTime() float64 {
	return 1.0 / float64(c.TickRate)
}
