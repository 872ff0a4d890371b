package systems

import (
	"log"
	"slices"

	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
)

// RandomForceSystem 宿主侧适配器，负责发射器的生命周期
//
// 每帧对比拥有 RandomForceComponent 的实体和已创建的发射器：
//   - 新出现且启用的实体：创建发射器并 Activate
//   - Enabled 被置为 false：Deactivate
//   - 实体销毁或组件被移除：Deactivate 并丢弃发射器
//
// 激活失败的实体会被标记为 Inert，不再重试。
type RandomForceSystem struct {
	entityManager *ecs.EntityManager
	scheduler     *InvokeScheduler
	rng           utils.Random
	emitters      map[ecs.EntityID]*ForceEmitter

	failed     int
	onImpulse  ImpulseFunc
	totalFired int
}

// NewRandomForceSystem 创建随机力系统
//
// 参数:
//   - em: 实体管理器
//   - scheduler: 所有发射器共享的调度服务
//   - rng: 所有发射器共享的随机数源
func NewRandomForceSystem(em *ecs.EntityManager, scheduler *InvokeScheduler, rng utils.Random) *RandomForceSystem {
	return &RandomForceSystem{
		entityManager: em,
		scheduler:     scheduler,
		rng:           rng,
		emitters:      make(map[ecs.EntityID]*ForceEmitter),
	}
}

// SetImpulseObserver 设置冲量观察回调
func (s *RandomForceSystem) SetImpulseObserver(fn ImpulseFunc) {
	s.onImpulse = fn
}

// Update 同步发射器与实体状态
//
// 参数:
//   - deltaTime: 本系统不使用
func (s *RandomForceSystem) Update(deltaTime float64) {
	ids := ecs.GetEntitiesWith1[*components.RandomForceComponent](s.entityManager)
	// 排序保证随机数消费顺序稳定（固定种子可复现）
	slices.Sort(ids)

	for _, id := range ids {
		comp, ok := ecs.GetComponent[*components.RandomForceComponent](s.entityManager, id)
		if !ok || comp.Inert {
			continue
		}

		emitter, exists := s.emitters[id]
		if !exists {
			emitter = NewForceEmitter(s.entityManager, s.scheduler, s.rng, id, comp.Settings)
			emitter.AttachStats(comp)
			emitter.OnImpulse = s.recordImpulse
			s.emitters[id] = emitter
		}

		switch {
		case comp.Enabled && emitter.State() == EmitterInactive:
			if err := emitter.Activate(); err != nil {
				s.failed++
				log.Printf("[RandomForceSystem] Entity %d marked inert: %v", id, err)
			}
		case !comp.Enabled && emitter.State() == EmitterActive:
			emitter.Deactivate()
		}
	}

	// 清理宿主已不存在或组件已移除的发射器
	for id, emitter := range s.emitters {
		if !ecs.HasComponent[*components.RandomForceComponent](s.entityManager, id) {
			emitter.Deactivate()
			delete(s.emitters, id)
		}
	}
}

// OnEntitiesRemoved 宿主对象被销毁时立即停用对应发射器
func (s *RandomForceSystem) OnEntitiesRemoved(ids []ecs.EntityID) {
	for _, id := range ids {
		if emitter, ok := s.emitters[id]; ok {
			emitter.Deactivate()
			delete(s.emitters, id)
		}
	}
}

// SetEnabled 启用或停用所有发射器（下一次 Update 时生效）
func (s *RandomForceSystem) SetEnabled(enabled bool) {
	for _, id := range ecs.GetEntitiesWith1[*components.RandomForceComponent](s.entityManager) {
		if comp, ok := ecs.GetComponent[*components.RandomForceComponent](s.entityManager, id); ok {
			comp.Enabled = enabled
		}
	}
}

// DeactivateAll 立即停用所有发射器
func (s *RandomForceSystem) DeactivateAll() {
	for id, emitter := range s.emitters {
		emitter.Deactivate()
		delete(s.emitters, id)
	}
}

// Emitter 返回实体对应的发射器
func (s *RandomForceSystem) Emitter(id ecs.EntityID) (*ForceEmitter, bool) {
	e, ok := s.emitters[id]
	return e, ok
}

// ActiveCount 返回处于激活状态的发射器数量
func (s *RandomForceSystem) ActiveCount() int {
	n := 0
	for _, e := range s.emitters {
		if e.State() == EmitterActive {
			n++
		}
	}
	return n
}

// FailedCount 返回激活失败的次数
func (s *RandomForceSystem) FailedCount() int {
	return s.failed
}

// TotalFired 返回所有发射器累计提交的冲量数
func (s *RandomForceSystem) TotalFired() int {
	return s.totalFired
}

func (s *RandomForceSystem) recordImpulse(id ecs.EntityID, impulse types.Vector3) {
	s.totalFired++
	if s.onImpulse != nil {
		s.onImpulse(id, impulse)
	}
}
