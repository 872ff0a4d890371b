package systems

import (
	"testing"

	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
)

// firing 记录一次冲量提交
type firing struct {
	at      float64 // 调度器时间
	impulse types.Vector3
}

// emitterFixture 单个发射器的测试环境
// 这是一个测试辅助结构，被多个测试文件共享使用
type emitterFixture struct {
	em        *ecs.EntityManager
	scheduler *InvokeScheduler
	id        ecs.EntityID
	body      *components.RigidBodyComponent
	stats     *components.RandomForceComponent
	emitter   *ForceEmitter
	firings   []firing
}

// newEmitterFixture 创建实体、（可选）刚体和发射器
func newEmitterFixture(t *testing.T, rng utils.Random, settings config.RandomForceConfig, withBody bool) *emitterFixture {
	t.Helper()

	f := &emitterFixture{
		em:        ecs.NewEntityManager(),
		scheduler: NewInvokeScheduler(),
	}
	f.id = f.em.CreateEntity()
	if withBody {
		f.body = components.NewRigidBody(types.Zero3, 1)
		f.em.AddComponent(f.id, f.body)
	}
	f.stats = components.NewRandomForceComponent(settings)
	f.em.AddComponent(f.id, f.stats)

	f.emitter = NewForceEmitter(f.em, f.scheduler, rng, f.id, settings)
	f.emitter.AttachStats(f.stats)
	f.emitter.OnImpulse = func(_ ecs.EntityID, impulse types.Vector3) {
		f.firings = append(f.firings, firing{at: f.scheduler.Now(), impulse: impulse})
	}
	return f
}

// advance 以固定步长推进调度器 total 秒
func (f *emitterFixture) advance(total, step float64) {
	for elapsed := 0.0; elapsed < total; elapsed += step {
		dt := step
		if elapsed+dt > total {
			dt = total - elapsed
		}
		f.scheduler.Update(dt)
	}
}
