package game

import (
	"log"
	"slices"

	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/systems"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
)

// World 无界面的沙盒世界
//
// 负责组装实体管理器、调度服务和各个系统，并按固定顺序推进一帧。
// 窗口版（pkg/app）、终端预览和统计工具都基于它运行。
type World struct {
	EntityManager *ecs.EntityManager
	Scheduler     *systems.InvokeScheduler
	RandomForce   *systems.RandomForceSystem
	Physics       *systems.PhysicsSystem
	Lifetime      *systems.LifetimeSystem

	sandbox config.SandboxConfig
	emitter config.RandomForceConfig
	rng     utils.Random

	elapsed float64
	steps   uint64
}

// BodyView 刚体的只读快照（用于渲染和统计）
type BodyView struct {
	ID       ecs.EntityID
	Position types.Vector3
	Velocity types.Vector3
	Fired    int
	Emitting bool // 发射器处于激活状态
	Inert    bool // 发射器激活失败
	HasBody  bool
}

// WorldStats 世界统计
type WorldStats struct {
	Elapsed        float64
	Steps          uint64
	Entities       int
	ActiveEmitters int
	FailedEmitters int
	Impulses       int
	PendingInvokes int
}

// NewWorld 创建沙盒世界
//
// 参数:
//   - sandbox: 世界配置
//   - emitter: 新生成实体使用的随机力配置
//   - rng: 注入的随机数源（发射器和生成位置共用）
func NewWorld(sandbox config.SandboxConfig, emitter config.RandomForceConfig, rng utils.Random) *World {
	em := ecs.NewEntityManager()
	scheduler := systems.NewInvokeScheduler()

	bounds := sandbox.Bounds
	w := &World{
		EntityManager: em,
		Scheduler:     scheduler,
		RandomForce:   systems.NewRandomForceSystem(em, scheduler, rng),
		Physics:       systems.NewPhysicsSystem(em, sandbox.Gravity, &bounds, sandbox.Restitution),
		Lifetime:      systems.NewLifetimeSystem(em),
		sandbox:       sandbox,
		emitter:       emitter,
		rng:           rng,
	}

	log.Printf("[World] Initialized: bounds=%v..%v gravity=%v tickRate=%d",
		bounds.Min, bounds.Max, sandbox.Gravity, sandbox.TickRate)
	return w
}

// Sandbox 返回世界配置
func (w *World) Sandbox() config.SandboxConfig {
	return w.sandbox
}

// SpawnBody 在指定位置生成带刚体和随机力发射器的实体
func (w *World) SpawnBody(pos types.Vector3) ecs.EntityID {
	id := w.EntityManager.CreateEntity()

	body := components.NewRigidBody(pos, w.sandbox.Body.Mass)
	body.Drag = w.sandbox.Body.Drag
	body.UseGravity = w.sandbox.Body.UseGravity
	w.EntityManager.AddComponent(id, body)
	w.EntityManager.AddComponent(id, components.NewRandomForceComponent(w.emitter))

	if w.sandbox.Lifetime.Max > 0 {
		w.EntityManager.AddComponent(id, &components.LifetimeComponent{
			MaxLifetime: w.rng.RangeFloat(w.sandbox.Lifetime.Min, w.sandbox.Lifetime.Max),
		})
	}
	return id
}

// SpawnEmitterOnly 生成只有发射器、没有刚体的实体
// 发射器在下一帧激活时会失败并保持失效
func (w *World) SpawnEmitterOnly() ecs.EntityID {
	id := w.EntityManager.CreateEntity()
	w.EntityManager.AddComponent(id, components.NewRandomForceComponent(w.emitter))
	return id
}

// RandomSpawnPoint 在世界边界上半部分随机取一个点
func (w *World) RandomSpawnPoint() types.Vector3 {
	b := w.sandbox.Bounds
	midY := (b.Min.Y + b.Max.Y) / 2
	return types.Vector3{
		X: w.rng.RangeFloat(b.Min.X, b.Max.X),
		Y: w.rng.RangeFloat(midY, b.Max.Y),
		Z: w.rng.RangeFloat(b.Min.Z, b.Max.Z),
	}
}

// Populate 在随机位置生成 n 个刚体
func (w *World) Populate(n int) {
	for i := 0; i < n; i++ {
		w.SpawnBody(w.RandomSpawnPoint())
	}
	log.Printf("[World] Spawned %d bodies", n)
}

// Step 推进一帧
//
// 顺序：
//  1. RandomForceSystem 同步发射器（激活新实体、停用被禁用的实体）
//  2. 调度器推进时间并执行到期的冲量回调
//  3. 物理积分
//  4. 生命周期检查
//  5. 清理被销毁的实体并立即停用其发射器
func (w *World) Step(deltaTime float64) {
	w.RandomForce.Update(deltaTime)
	w.Scheduler.Update(deltaTime)
	w.Physics.Update(deltaTime)
	w.Lifetime.Update(deltaTime)

	if removed := w.EntityManager.RemoveMarkedEntities(); len(removed) > 0 {
		w.RandomForce.OnEntitiesRemoved(removed)
	}

	w.elapsed += deltaTime
	w.steps++
}

// Reset 清空所有实体和调度
func (w *World) Reset() {
	w.RandomForce.DeactivateAll()
	w.Scheduler.CancelAll()
	for _, id := range ecs.GetEntitiesWith1[*components.RandomForceComponent](w.EntityManager) {
		w.EntityManager.DestroyEntity(id)
	}
	for _, id := range ecs.GetEntitiesWith1[*components.RigidBodyComponent](w.EntityManager) {
		w.EntityManager.DestroyEntity(id)
	}
	w.EntityManager.RemoveMarkedEntities()
	log.Printf("[World] Reset")
}

// Bodies 返回所有宿主对象的快照，按实体ID排序
func (w *World) Bodies() []BodyView {
	ids := ecs.GetEntitiesWith1[*components.RigidBodyComponent](w.EntityManager)
	ids = append(ids, ecs.GetEntitiesWith1[*components.RandomForceComponent](w.EntityManager)...)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	views := make([]BodyView, 0, len(ids))
	for _, id := range ids {
		view := BodyView{ID: id}
		if body, ok := ecs.GetComponent[*components.RigidBodyComponent](w.EntityManager, id); ok {
			view.HasBody = true
			view.Position = body.Position
			view.Velocity = body.Velocity
		}
		if rf, ok := ecs.GetComponent[*components.RandomForceComponent](w.EntityManager, id); ok {
			view.Fired = rf.Fired
			view.Inert = rf.Inert
		}
		if e, ok := w.RandomForce.Emitter(id); ok {
			view.Emitting = e.State() == systems.EmitterActive
		}
		views = append(views, view)
	}
	return views
}

// Stats 返回世界统计
func (w *World) Stats() WorldStats {
	return WorldStats{
		Elapsed:        w.elapsed,
		Steps:          w.steps,
		Entities:       w.EntityManager.EntityCount(),
		ActiveEmitters: w.RandomForce.ActiveCount(),
		FailedEmitters: w.RandomForce.FailedCount(),
		Impulses:       w.RandomForce.TotalFired(),
		PendingInvokes: w.Scheduler.Pending(),
	}
}
