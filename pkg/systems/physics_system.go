package systems

import (
	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/types"
)

// PhysicsSystem 刚体模拟
// 负责积分所有 RigidBodyComponent 的速度和位置，并处理世界边界反弹
type PhysicsSystem struct {
	em          *ecs.EntityManager
	gravity     types.Vector3
	bounds      *config.BoxBounds // nil 表示无边界
	restitution float64
}

// NewPhysicsSystem 创建物理系统
//
// 参数:
//   - em: 实体管理器，用于查询刚体组件
//   - gravity: 重力加速度
//   - bounds: 世界边界，可为 nil
//   - restitution: 边界反弹系数 [0, 1]
//
// 返回:
//   - *PhysicsSystem: 物理系统实例
func NewPhysicsSystem(em *ecs.EntityManager, gravity types.Vector3, bounds *config.BoxBounds, restitution float64) *PhysicsSystem {
	return &PhysicsSystem{
		em:          em,
		gravity:     gravity,
		bounds:      bounds,
		restitution: restitution,
	}
}

// Update 推进一个物理步
//
// 使用半隐式欧拉积分：
//
//	a = F/m + g
//	v = (v + a*dt) * max(0, 1 - drag*dt)
//	p = p + v*dt
//
// 参数:
//   - deltaTime: 自上一帧以来经过的时间（秒）
func (ps *PhysicsSystem) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}

	for _, id := range ecs.GetEntitiesWith1[*components.RigidBodyComponent](ps.em) {
		body, ok := ecs.GetComponent[*components.RigidBodyComponent](ps.em, id)
		if !ok || body.IsKinematic {
			continue
		}

		accel := body.AccumulatedForce().Scale(1 / body.EffectiveMass())
		if body.UseGravity {
			accel = accel.Add(ps.gravity)
		}

		body.Velocity = body.Velocity.Add(accel.Scale(deltaTime))

		damping := 1 - body.Drag*deltaTime
		if damping < 0 {
			damping = 0
		}
		body.Velocity = body.Velocity.Scale(damping)

		body.Position = body.Position.Add(body.Velocity.Scale(deltaTime))
		body.ClearForces()

		if ps.bounds != nil {
			ps.resolveBounds(body)
		}
	}
}

// resolveBounds 将越界的刚体夹回边界内并按反弹系数反转该轴速度
func (ps *PhysicsSystem) resolveBounds(body *components.RigidBodyComponent) {
	min, max := ps.bounds.Min, ps.bounds.Max

	body.Position.X, body.Velocity.X = reflectAxis(body.Position.X, body.Velocity.X, min.X, max.X, ps.restitution)
	body.Position.Y, body.Velocity.Y = reflectAxis(body.Position.Y, body.Velocity.Y, min.Y, max.Y, ps.restitution)
	body.Position.Z, body.Velocity.Z = reflectAxis(body.Position.Z, body.Velocity.Z, min.Z, max.Z, ps.restitution)
}

func reflectAxis(pos, vel, min, max, restitution float64) (float64, float64) {
	if pos < min {
		return min, -vel * restitution
	}
	if pos > max {
		return max, -vel * restitution
	}
	return pos, vel
}
