package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type stubScene struct {
	updates  int
	lastDT   float64
	saved    bool
	saveFail bool
}

func (s *stubScene) Update(deltaTime float64) {
	s.updates++
	s.lastDT = deltaTime
}

func (s *stubScene) Draw(screen *ebiten.Image) {}

func (s *stubScene) SaveOnExit() bool {
	s.saved = true
	return !s.saveFail
}

type plainScene struct{}

func (plainScene) Update(float64) {}
func (plainScene) Draw(*ebiten.Image) {}

func TestSceneManagerDispatch(t *testing.T) {
	sm := NewSceneManager()

	// 没有场景时不应崩溃
	sm.Update(0.016)
	if !sm.SaveOnExit() {
		t.Error("SaveOnExit with no scene should succeed")
	}

	scene := &stubScene{}
	sm.SwitchTo(scene)
	sm.Update(0.5)

	if scene.updates != 1 || scene.lastDT != 0.5 {
		t.Errorf("scene updates=%d lastDT=%f", scene.updates, scene.lastDT)
	}
	if sm.GetCurrentScene() != scene {
		t.Error("GetCurrentScene should return active scene")
	}
}

func TestSceneManagerSaveOnExit(t *testing.T) {
	sm := NewSceneManager()
	scene := &stubScene{}
	sm.SwitchTo(scene)

	if !sm.SaveOnExit() || !scene.saved {
		t.Error("Saveable scene should be saved")
	}

	scene.saveFail = true
	if sm.SaveOnExit() {
		t.Error("failed save should be reported")
	}

	sm.SwitchTo(plainScene{})
	if !sm.SaveOnExit() {
		t.Error("non-saveable scene should report success")
	}
}
