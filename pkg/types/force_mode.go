// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import (
	"fmt"
	"strings"
)

// ForceMode 定义力作用到刚体上的方式
type ForceMode int

const (
	// ForceModeForce 持续力，在下一次物理步进中按质量折算为加速度
	ForceModeForce ForceMode = iota
	// ForceModeAcceleration 持续加速度，忽略质量
	ForceModeAcceleration
	// ForceModeImpulse 瞬时冲量，立即按质量折算为速度变化
	ForceModeImpulse
	// ForceModeVelocityChange 瞬时速度变化，忽略质量
	ForceModeVelocityChange
)

// String 返回力模式的字符串表示
func (m ForceMode) String() string {
	switch m {
	case ForceModeForce:
		return "Force"
	case ForceModeAcceleration:
		return "Acceleration"
	case ForceModeImpulse:
		return "Impulse"
	case ForceModeVelocityChange:
		return "VelocityChange"
	default:
		return "Unknown"
	}
}

// IsInstant 瞬时模式直接修改速度，不参与力的累积
func (m ForceMode) IsInstant() bool {
	return m == ForceModeImpulse || m == ForceModeVelocityChange
}

// ParseForceMode 从配置字符串解析力模式（不区分大小写）
//
// 参数:
//   - s: "force" / "acceleration" / "impulse" / "velocityChange"
//
// 返回:
//   - ForceMode: 解析结果
//   - error: 未知名称时返回错误
func ParseForceMode(s string) (ForceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "force":
		return ForceModeForce, nil
	case "acceleration":
		return ForceModeAcceleration, nil
	case "impulse":
		return ForceModeImpulse, nil
	case "velocitychange", "velocity_change":
		return ForceModeVelocityChange, nil
	default:
		return ForceModeForce, fmt.Errorf("unknown force mode %q", s)
	}
}
