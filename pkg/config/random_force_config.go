package config

import (
	"fmt"
	"math"

	"github.com/decker502/randforce/pkg/types"
	"gopkg.in/yaml.v3"
)

// RandomForceConfigPath 随机力发射器默认配置文件位置
const RandomForceConfigPath = "data/random_force.yaml"

// RandomForceConfig 随机力发射器配置
//
// 描述首次触发延迟、重复周期和冲量分量的采样区间。
// 所有区间均为半开区间 [Min, Max)。
//
// 配置文件位置: data/random_force.yaml
type RandomForceConfig struct {
	// InitialDelay 首次触发延迟（秒）
	InitialDelay DelayRange `yaml:"initialDelay"`

	// Period 每次触发后重新采样的间隔（秒）
	Period FloatRange `yaml:"period"`

	// Force 冲量每个轴的取值区间
	Force FloatRange `yaml:"force"`

	// Mode 冲量作用方式: impulse / velocityChange / force / acceleration
	Mode string `yaml:"mode"`
}

// FloatRange 连续取值区间 [Min, Max)
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DelayRange 首次触发延迟区间
//
// Continuous 为 false 时按整数区间采样：默认的 [0, 1) 只能得到 0，
// 即激活后的第一帧立即触发。设为 true 时按连续区间采样。
type DelayRange struct {
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
	Continuous bool    `yaml:"continuous"`
}

// DefaultRandomForceConfig 返回默认配置
func DefaultRandomForceConfig() RandomForceConfig {
	return RandomForceConfig{
		InitialDelay: DelayRange{Min: 0, Max: 1, Continuous: false},
		Period:       FloatRange{Min: 0.1, Max: 1.0},
		Force:        FloatRange{Min: -10, Max: 10},
		Mode:         "impulse",
	}
}

// LoadRandomForceConfig 加载随机力配置
//
// 文件中缺失的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/random_force.yaml"）
//
// 返回:
//   - *RandomForceConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadRandomForceConfig(path string) (*RandomForceConfig, error) {
	data, err := readConfigData(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read random force config: %w", err)
	}

	cfg := DefaultRandomForceConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse random force config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid random force config: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置有效性
//
// 检查规则：
//   - 所有区间端点必须是有限值（YAML 允许 .nan / .inf）
//   - 延迟区间 Min >= 0 且 Min < Max；整数模式下两端必须是整数
//   - 周期区间 Min > 0 且 Min < Max（周期为 0 会导致同一帧内无限触发）
//   - 冲量区间 Min < Max
//   - Mode 必须是已知的力模式
//
// 返回:
//   - error: 验证失败时返回错误，成功返回 nil
func (c *RandomForceConfig) Validate() error {
	d := c.InitialDelay
	if err := checkFinite("initialDelay", d.Min, d.Max); err != nil {
		return err
	}
	if err := checkFinite("period", c.Period.Min, c.Period.Max); err != nil {
		return err
	}
	if err := checkFinite("force", c.Force.Min, c.Force.Max); err != nil {
		return err
	}

	if d.Min < 0 {
		return fmt.Errorf("initialDelay min must be >= 0, got %.3f", d.Min)
	}
	if d.Min >= d.Max {
		return fmt.Errorf("initialDelay range invalid: min(%.3f) >= max(%.3f)", d.Min, d.Max)
	}
	if !d.Continuous && (d.Min != float64(int(d.Min)) || d.Max != float64(int(d.Max))) {
		return fmt.Errorf("initialDelay bounds must be integers unless continuous is set, got [%.3f, %.3f)", d.Min, d.Max)
	}

	if c.Period.Min <= 0 {
		return fmt.Errorf("period min must be > 0, got %.3f", c.Period.Min)
	}
	if c.Period.Min >= c.Period.Max {
		return fmt.Errorf("period range invalid: min(%.3f) >= max(%.3f)", c.Period.Min, c.Period.Max)
	}

	if c.Force.Min >= c.Force.Max {
		return fmt.Errorf("force range invalid: min(%.3f) >= max(%.3f)", c.Force.Min, c.Force.Max)
	}

	if _, err := types.ParseForceMode(c.Mode); err != nil {
		return err
	}

	return nil
}

// checkFinite 拒绝 NaN 和 ±Inf
// NaN 参与的比较恒为 false，会绕过后续的区间检查
func checkFinite(field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v", field, v)
		}
	}
	return nil
}

// ForceMode 返回解析后的力模式（配置未通过验证时回退到 Impulse）
func (c *RandomForceConfig) ForceMode() types.ForceMode {
	mode, err := types.ParseForceMode(c.Mode)
	if err != nil {
		return types.ForceModeImpulse
	}
	return mode
}
