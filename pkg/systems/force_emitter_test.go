package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestActivateWithoutRigidBodyFailsFast(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(1), config.DefaultRandomForceConfig(), false)

	err := f.emitter.Activate()
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("Activate() error = %v, want ErrMissingDependency", err)
	}
	if f.scheduler.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 scheduled invokes", f.scheduler.Pending())
	}
	if f.emitter.State() != EmitterInactive {
		t.Errorf("State() = %v, want Inactive", f.emitter.State())
	}
	if !f.stats.Inert {
		t.Error("stats should be marked inert")
	}

	// 不重试：即使之后补上刚体，发射器仍保持失效
	f.em.AddComponent(f.id, components.NewRigidBody(types.Zero3, 1))
	if err := f.emitter.Activate(); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("second Activate() error = %v, want ErrMissingDependency", err)
	}
	if f.scheduler.Pending() != 0 {
		t.Error("inert emitter must never schedule")
	}

	f.advance(5, 1.0/60)
	if len(f.firings) != 0 {
		t.Errorf("inert emitter fired %d times", len(f.firings))
	}
}

// TestIntegerDelayRangeAlwaysZero 记录默认延迟采样的行为：
// 首次延迟按整数区间 [0, 1) 采样，结果恒为 0，
// 即激活后的第一次调度器推进就会触发。需要真正随机的首次延迟时，
// 在配置中设置 initialDelay.continuous: true。
func TestIntegerDelayRangeAlwaysZero(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		f := newEmitterFixture(t, utils.NewRandom(seed), config.DefaultRandomForceConfig(), true)
		if err := f.emitter.Activate(); err != nil {
			t.Fatalf("Activate() error: %v", err)
		}
		if f.stats.FirstDelay != 0 {
			t.Fatalf("seed %d: integer delay = %f, want exactly 0", seed, f.stats.FirstDelay)
		}

		f.scheduler.Update(0)
		if len(f.firings) != 1 || f.firings[0].at != 0 {
			t.Fatalf("seed %d: expected one firing at t=0, got %+v", seed, f.firings)
		}
	}
}

func TestContinuousDelayWithinUnitInterval(t *testing.T) {
	settings := config.DefaultRandomForceConfig()
	settings.InitialDelay.Continuous = true

	nonZero := 0
	for seed := uint64(0); seed < 200; seed++ {
		f := newEmitterFixture(t, utils.NewRandom(seed), settings, true)
		if err := f.emitter.Activate(); err != nil {
			t.Fatalf("Activate() error: %v", err)
		}

		f.scheduler.Update(1.0)
		if len(f.firings) == 0 {
			t.Fatalf("seed %d: no firing within 1s", seed)
		}

		first := f.firings[0].at
		if first < 0 || first >= 1 {
			t.Fatalf("seed %d: first firing at %f, want [0, 1)", seed, first)
		}
		if first != f.stats.FirstDelay {
			t.Errorf("seed %d: first firing at %f, sampled delay %f", seed, first, f.stats.FirstDelay)
		}
		if first > 0 {
			nonZero++
		}
	}

	if nonZero < 190 {
		t.Errorf("continuous delay was zero too often: %d/200 non-zero", nonZero)
	}
}

func TestImpulseComponentsStayInRangeAndCoverIt(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(42), config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}

	const wantFirings = 5000
	for len(f.firings) < wantFirings {
		f.scheduler.Update(1.0 / 60)
	}

	const buckets = 10
	var hist [3][buckets]int
	for _, fr := range f.firings[:wantFirings] {
		for axis := 0; axis < 3; axis++ {
			v := fr.impulse.Axis(axis)
			if v < -10 || v >= 10 {
				t.Fatalf("impulse component %f out of [-10, 10)", v)
			}
			hist[axis][int((v+10)/20*buckets)]++
		}
	}

	// 每个桶期望 500 次，标准差约 21，允许 ±150
	for axis := 0; axis < 3; axis++ {
		for b := 0; b < buckets; b++ {
			if n := hist[axis][b]; n < 350 || n > 650 {
				t.Errorf("axis %d bucket %d has %d samples, want roughly 500", axis, b, n)
			}
		}
	}
}

func TestInterFiringPeriodWithinRange(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(7), config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}

	f.advance(120, 1.0/60)
	if len(f.firings) < 100 {
		t.Fatalf("expected many firings in 120s, got %d", len(f.firings))
	}

	distinct := make(map[float64]bool)
	for i := 1; i < len(f.firings); i++ {
		gap := f.firings[i].at - f.firings[i-1].at
		if gap < 0.1-1e-9 || gap >= 1.0+1e-9 {
			t.Fatalf("gap %d = %f, want [0.1, 1.0)", i, gap)
		}
		distinct[math.Round(gap*1e6)] = true
	}

	// 周期每次重新采样，而不是激活时固定一次
	if len(distinct) < len(f.firings)/2 {
		t.Errorf("only %d distinct periods across %d firings", len(distinct), len(f.firings))
	}
}

func TestScenarioFireThenFireAgainAfterSampledPeriod(t *testing.T) {
	// 浮点样本消费顺序：每次触发 3 个冲量分量，然后 1 个周期
	rng := &utils.ScriptedRandom{Floats: []float64{
		0.5, 0.25, 0.75, 0.2, // 第一次：(0, -5, 5)，周期 0.28
		0.1, 0.9, 0.0, 0.6, // 第二次：(-8, 8, -10)，周期 0.64
	}}
	f := newEmitterFixture(t, rng, config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}

	// 推进到刚过首次延迟
	f.scheduler.Update(0.001)
	if len(f.firings) != 1 {
		t.Fatalf("expected exactly 1 impulse, got %d", len(f.firings))
	}
	if got := f.firings[0].impulse; got != (types.Vector3{X: 0, Y: -5, Z: 5}) {
		t.Errorf("first impulse = %v, want (0, -5, 5)", got)
	}
	if f.body.Velocity != (types.Vector3{X: 0, Y: -5, Z: 5}) {
		t.Errorf("body velocity = %v, impulse not applied", f.body.Velocity)
	}
	firstPeriod := f.stats.LastPeriod
	if !approxEqual(firstPeriod, 0.28) {
		t.Fatalf("first sampled period = %f, want 0.28", firstPeriod)
	}

	// 再推进一个采样周期
	f.scheduler.Update(firstPeriod)
	if len(f.firings) != 2 {
		t.Fatalf("expected exactly 2 impulses, got %d", len(f.firings))
	}
	if got := f.firings[1].impulse; got != (types.Vector3{X: -8, Y: 8, Z: -10}) {
		t.Errorf("second impulse = %v, want (-8, 8, -10)", got)
	}
	if !approxEqual(f.stats.LastPeriod, 0.64) {
		t.Errorf("period was not resampled: got %f, want 0.64", f.stats.LastPeriod)
	}

	// 0.281 + 0.5 < 0.92，尚未到第三次
	f.scheduler.Update(0.5)
	if len(f.firings) != 2 {
		t.Errorf("fired early: %d impulses", len(f.firings))
	}
	f.scheduler.Update(0.2)
	if len(f.firings) != 3 {
		t.Errorf("expected third impulse after resampled period, got %d", len(f.firings))
	}
}

func TestDeactivateStopsAllFurtherImpulses(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(3), config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}

	f.advance(2, 1.0/60)
	before := len(f.firings)
	if before == 0 {
		t.Fatal("expected some firings before deactivation")
	}

	f.emitter.Deactivate()
	f.emitter.Deactivate() // 幂等

	if f.emitter.State() != EmitterInactive || f.emitter.Handle() != 0 {
		t.Errorf("state=%v handle=%d after Deactivate", f.emitter.State(), f.emitter.Handle())
	}
	if f.scheduler.Pending() != 0 {
		t.Errorf("Pending() = %d after Deactivate", f.scheduler.Pending())
	}

	velocity := f.body.Velocity
	f.advance(60, 0.5)
	if len(f.firings) != before {
		t.Errorf("impulses after Deactivate: %d", len(f.firings)-before)
	}
	if f.body.Velocity != velocity {
		t.Error("body changed after Deactivate")
	}
}

func TestDeactivateBeforeFirstFiring(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(9), config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	f.emitter.Deactivate()

	f.advance(10, 1.0/60)
	if len(f.firings) != 0 {
		t.Errorf("expected zero impulses, got %d", len(f.firings))
	}
	if f.body.ImpulseCount != 0 {
		t.Errorf("body received %d impulses", f.body.ImpulseCount)
	}
}

func TestActivateTwiceSchedulesOnce(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(5), config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	h := f.emitter.Handle()
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("second Activate() error: %v", err)
	}

	if f.emitter.Handle() != h || f.scheduler.Pending() != 1 {
		t.Errorf("second Activate rescheduled: handle %d -> %d, pending=%d", h, f.emitter.Handle(), f.scheduler.Pending())
	}
}

func TestReactivateAfterDeactivate(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(5), config.DefaultRandomForceConfig(), true)
	_ = f.emitter.Activate()
	f.emitter.Deactivate()

	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("reactivate error: %v", err)
	}
	f.scheduler.Update(0.01)
	if len(f.firings) != 1 {
		t.Errorf("expected 1 firing after reactivation, got %d", len(f.firings))
	}
}

func TestFiringAfterHostDestroyedIsNoOp(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(11), config.DefaultRandomForceConfig(), true)
	if err := f.emitter.Activate(); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}

	// 宿主销毁但调度尚未取消
	f.em.DestroyEntity(f.id)
	f.em.RemoveMarkedEntities()

	f.advance(5, 1.0/60)
	if len(f.firings) != 0 {
		t.Errorf("emitter fired %d times on destroyed host", len(f.firings))
	}
	if f.body.ImpulseCount != 0 {
		t.Error("destroyed body must not be written")
	}

	// 停用仍然有效
	f.emitter.Deactivate()
	if f.scheduler.Pending() != 0 {
		t.Error("Deactivate should cancel the stale invoke")
	}
}

func TestFiringAfterRigidBodyRemovedIsNoOp(t *testing.T) {
	f := newEmitterFixture(t, utils.NewRandom(12), config.DefaultRandomForceConfig(), true)
	_ = f.emitter.Activate()

	// 用新的刚体替换旧的：旧引用已失效
	replacement := components.NewRigidBody(types.Zero3, 1)
	f.em.AddComponent(f.id, replacement)

	f.advance(3, 1.0/60)
	if len(f.firings) != 0 || replacement.ImpulseCount != 0 || f.body.ImpulseCount != 0 {
		t.Errorf("stale emitter wrote impulses: firings=%d", len(f.firings))
	}
}

func TestForceModeFromSettings(t *testing.T) {
	settings := config.DefaultRandomForceConfig()
	settings.Mode = "velocityChange"

	rng := &utils.ScriptedRandom{Floats: []float64{0.75, 0.75, 0.75, 0.5}}
	f := newEmitterFixture(t, rng, settings, true)
	f.body.Mass = 4
	_ = f.emitter.Activate()
	f.scheduler.Update(0)

	// VelocityChange 忽略质量
	if f.body.Velocity != (types.Vector3{X: 5, Y: 5, Z: 5}) {
		t.Errorf("velocity = %v, want (5, 5, 5)", f.body.Velocity)
	}
}

func TestImpulseScaledByMass(t *testing.T) {
	rng := &utils.ScriptedRandom{Floats: []float64{0.75, 0.75, 0.75, 0.5}}
	f := newEmitterFixture(t, rng, config.DefaultRandomForceConfig(), true)
	f.body.Mass = 2
	_ = f.emitter.Activate()
	f.scheduler.Update(0)

	if f.body.Velocity != (types.Vector3{X: 2.5, Y: 2.5, Z: 2.5}) {
		t.Errorf("velocity = %v, want (2.5, 2.5, 2.5)", f.body.Velocity)
	}
}
