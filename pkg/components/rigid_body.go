package components

import "github.com/decker502/randforce/pkg/types"

// RigidBodyComponent 刚体组件
//
// 刚体由 PhysicsSystem 负责模拟。其他系统只通过 AddForce 提交力或冲量，
// 不直接修改位置、质量等字段。
type RigidBodyComponent struct {
	Position types.Vector3 // 世界坐标（米）
	Velocity types.Vector3 // 线速度（米/秒）

	Mass        float64 // 质量（千克），<= 0 时按 1 处理
	Drag        float64 // 线性阻尼系数（1/秒）
	UseGravity  bool    // 是否受重力影响
	IsKinematic bool    // 运动学刚体不响应任何力

	// 本物理步内累积的持续力（牛顿），在积分后清零
	accumulatedForce types.Vector3

	ImpulseCount int           // 已接收的瞬时冲量次数
	LastImpulse  types.Vector3 // 最近一次瞬时冲量（原始输入值）
}

// NewRigidBody 创建指定位置和质量的刚体
func NewRigidBody(position types.Vector3, mass float64) *RigidBodyComponent {
	return &RigidBodyComponent{
		Position: position,
		Mass:     mass,
	}
}

// EffectiveMass 返回参与计算的质量
func (rb *RigidBodyComponent) EffectiveMass() float64 {
	if rb.Mass <= 0 {
		return 1
	}
	return rb.Mass
}

// AddForce 向刚体提交力
//
// 参数:
//   - force: 力向量，含义取决于 mode
//   - mode: 作用方式
//   - ForceModeForce: 累积持续力，下一次积分时按质量折算
//   - ForceModeAcceleration: 累积加速度（忽略质量）
//   - ForceModeImpulse: 立即改变速度 Δv = force / mass
//   - ForceModeVelocityChange: 立即改变速度 Δv = force
func (rb *RigidBodyComponent) AddForce(force types.Vector3, mode types.ForceMode) {
	if rb.IsKinematic {
		return
	}

	switch mode {
	case types.ForceModeForce:
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	case types.ForceModeAcceleration:
		rb.accumulatedForce = rb.accumulatedForce.Add(force.Scale(rb.EffectiveMass()))
	case types.ForceModeImpulse:
		rb.Velocity = rb.Velocity.Add(force.Scale(1 / rb.EffectiveMass()))
	case types.ForceModeVelocityChange:
		rb.Velocity = rb.Velocity.Add(force)
	}

	if mode.IsInstant() {
		rb.ImpulseCount++
		rb.LastImpulse = force
	}
}

// AccumulatedForce 返回本步累积的持续力
func (rb *RigidBodyComponent) AccumulatedForce() types.Vector3 {
	return rb.accumulatedForce
}

// ClearForces 清除累积的持续力（由物理系统在积分后调用）
func (rb *RigidBodyComponent) ClearForces() {
	rb.accumulatedForce = types.Zero3
}
