package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
)

// ErrMissingDependency 宿主对象缺少发射器依赖的刚体组件
var ErrMissingDependency = errors.New("missing dependency")

// EmitterState 发射器状态
type EmitterState int

const (
	// EmitterInactive 未激活，没有任何待执行的调度
	EmitterInactive EmitterState = iota
	// EmitterActive 已激活，重复调用已入队
	EmitterActive
)

// String 返回状态名
func (s EmitterState) String() string {
	if s == EmitterActive {
		return "Active"
	}
	return "Inactive"
}

var _ components.Lifecycle = (*ForceEmitter)(nil)

// ImpulseFunc 冲量提交后的观察回调
type ImpulseFunc func(id ecs.EntityID, impulse types.Vector3)

// ForceEmitter 周期性向宿主对象的刚体施加随机冲量
//
// 激活时解析一次刚体引用（非拥有），随后以随机延迟首次触发，
// 每次触发后重新采样下一个周期。刚体的生命周期由宿主负责，
// 发射器从不销毁或替换它。
type ForceEmitter struct {
	entityManager *ecs.EntityManager
	scheduler     *InvokeScheduler
	rng           utils.Random
	entityID      ecs.EntityID
	settings      config.RandomForceConfig
	mode          types.ForceMode

	body   *components.RigidBodyComponent   // 非拥有引用，激活时解析
	stats  *components.RandomForceComponent // 可选，用于记录运行统计
	handle InvokeHandle
	state  EmitterState
	err    error // 激活失败后保存，发射器永久失效

	// OnImpulse 每次成功提交冲量后调用（可为 nil）
	OnImpulse ImpulseFunc
}

// NewForceEmitter 创建绑定到指定实体的发射器
//
// 参数:
//   - em: 实体管理器，用于解析刚体和检查宿主是否存活
//   - scheduler: 调度服务
//   - rng: 注入的随机数源
//   - id: 宿主实体
//   - settings: 采样区间设置
func NewForceEmitter(em *ecs.EntityManager, scheduler *InvokeScheduler, rng utils.Random, id ecs.EntityID, settings config.RandomForceConfig) *ForceEmitter {
	return &ForceEmitter{
		entityManager: em,
		scheduler:     scheduler,
		rng:           rng,
		entityID:      id,
		settings:      settings,
		mode:          settings.ForceMode(),
	}
}

// AttachStats 将运行统计写入给定组件
func (e *ForceEmitter) AttachStats(stats *components.RandomForceComponent) {
	e.stats = stats
}

// EntityID 返回宿主实体
func (e *ForceEmitter) EntityID() ecs.EntityID { return e.entityID }

// State 返回当前状态
func (e *ForceEmitter) State() EmitterState { return e.state }

// Handle 返回当前调度句柄（未激活时为 0）
func (e *ForceEmitter) Handle() InvokeHandle { return e.handle }

// Err 返回激活失败的原因
func (e *ForceEmitter) Err() error { return e.err }

// Activate 绑定刚体并开始调度
//
// 宿主没有刚体时返回包装了 ErrMissingDependency 的错误，不会入队任何调度，
// 之后再调用也只会返回同一个错误。已激活时调用为空操作。
func (e *ForceEmitter) Activate() error {
	if e.state == EmitterActive {
		return nil
	}
	if e.err != nil {
		return e.err
	}

	body, ok := ecs.GetComponent[*components.RigidBodyComponent](e.entityManager, e.entityID)
	if !ok {
		e.err = fmt.Errorf("%w: entity %d has no RigidBodyComponent", ErrMissingDependency, e.entityID)
		if e.stats != nil {
			e.stats.Inert = true
		}
		log.Printf("[ForceEmitter] Activation failed: %v", e.err)
		return e.err
	}
	e.body = body

	delay := e.sampleDelay()
	e.handle = e.scheduler.InvokeRepeating(delay, e.samplePeriod, e.OnTimerFire)
	e.state = EmitterActive

	if e.stats != nil {
		e.stats.FirstDelay = delay
	}
	log.Printf("[ForceEmitter] Entity %d activated, first fire in %.3fs", e.entityID, delay)
	return nil
}

// Deactivate 取消调度
// 幂等；返回后不会再有任何触发
func (e *ForceEmitter) Deactivate() {
	if e.state != EmitterActive {
		return
	}
	e.scheduler.Cancel(e.handle)
	e.handle = 0
	e.state = EmitterInactive
	e.body = nil
	log.Printf("[ForceEmitter] Entity %d deactivated", e.entityID)
}

// OnTimerFire 采样随机冲量并提交给刚体
//
// 宿主已销毁或刚体已被移除时为空操作。
func (e *ForceEmitter) OnTimerFire() {
	if e.state != EmitterActive || e.body == nil {
		return
	}
	if !e.entityManager.IsAlive(e.entityID) {
		return
	}
	if current, ok := ecs.GetComponent[*components.RigidBodyComponent](e.entityManager, e.entityID); !ok || current != e.body {
		return
	}

	f := e.settings.Force
	impulse := types.Vector3{
		X: e.rng.RangeFloat(f.Min, f.Max),
		Y: e.rng.RangeFloat(f.Min, f.Max),
		Z: e.rng.RangeFloat(f.Min, f.Max),
	}
	e.body.AddForce(impulse, e.mode)

	if e.stats != nil {
		e.stats.Fired++
		e.stats.LastImpulse = impulse
	}
	if e.OnImpulse != nil {
		e.OnImpulse(e.entityID, impulse)
	}
}

// sampleDelay 采样首次触发延迟
//
// 整数模式下按 [Min, Max) 的整数区间采样，默认区间 [0, 1) 恒为 0。
func (e *ForceEmitter) sampleDelay() float64 {
	d := e.settings.InitialDelay
	if d.Continuous {
		return e.rng.RangeFloat(d.Min, d.Max)
	}
	return float64(e.rng.RangeInt(int(d.Min), int(d.Max)))
}

// samplePeriod 采样下一次触发的间隔，每次触发后调用
func (e *ForceEmitter) samplePeriod() float64 {
	p := e.rng.RangeFloat(e.settings.Period.Min, e.settings.Period.Max)
	if e.stats != nil {
		e.stats.LastPeriod = p
	}
	return p
}
