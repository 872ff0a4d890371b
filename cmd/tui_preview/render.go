package main

import (
	"fmt"

	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/game"
	"github.com/decker502/randforce/pkg/types"
	"github.com/gdamore/tcell/v2"
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleActive = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleIdle   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleFresh  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText   = tcell.StyleDefault
)

// headerRows 顶部状态栏占用的行数
const headerRows = 2

// cellFor 把世界坐标映射到终端格子（侧视图，Y 向上）
//
// 返回的坐标位于边框内部；区域过小时 ok 为 false。
func cellFor(bounds config.BoxBounds, p types.Vector3, width, height int) (x, y int, ok bool) {
	innerW := width - 2
	innerH := height - headerRows - 2
	if innerW <= 0 || innerH <= 0 {
		return 0, 0, false
	}

	nx := (p.X - bounds.Min.X) / (bounds.Max.X - bounds.Min.X)
	ny := (p.Y - bounds.Min.Y) / (bounds.Max.Y - bounds.Min.Y)
	nx = min(max(nx, 0), 1)
	ny = min(max(ny, 0), 1)

	x = 1 + min(int(nx*float64(innerW)), innerW-1)
	y = headerRows + 1 + min(int((1-ny)*float64(innerH)), innerH-1)
	return x, y, true
}

// bodyGlyph 按发射器状态选择字符和样式
// 最近一帧刚触发过冲量的刚体高亮显示
func bodyGlyph(b game.BodyView, lastFired map[ecs.EntityID]int) (rune, tcell.Style) {
	switch {
	case lastFired[b.ID] != b.Fired:
		return '*', styleFresh
	case b.Emitting:
		return 'o', styleActive
	default:
		return '.', styleIdle
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func drawBox(s tcell.Screen, top, width, height int) {
	bottom := height - 1
	right := width - 1
	for x := 1; x < right; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, styleBorder)
		s.SetContent(x, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for y := top + 1; y < bottom; y++ {
		s.SetContent(0, y, tcell.RuneVLine, nil, styleBorder)
		s.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}
	s.SetContent(0, top, tcell.RuneULCorner, nil, styleBorder)
	s.SetContent(right, top, tcell.RuneURCorner, nil, styleBorder)
	s.SetContent(0, bottom, tcell.RuneLLCorner, nil, styleBorder)
	s.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)
}

// draw 绘制一帧
func (p *preview) draw() {
	s := p.screen
	s.Clear()
	width, height := s.Size()

	st := p.world.Stats()
	state := "ON"
	if !p.enabled {
		state = "OFF"
	}
	drawText(s, 0, 0, styleText, fmt.Sprintf("t=%.1fs bodies=%d emitters=%s active=%d failed=%d impulses=%d",
		st.Elapsed, st.Entities, state, st.ActiveEmitters, st.FailedEmitters, st.Impulses))
	drawText(s, 0, 1, styleBorder, "space toggle  n spawn  b broken  r reset  q quit")
	drawBox(s, headerRows, width, height)

	bounds := p.sandboxCfg.Bounds
	for _, b := range p.world.Bodies() {
		// 没有刚体的发射器只体现在 failed 计数里
		if !b.HasBody {
			continue
		}
		x, y, ok := cellFor(bounds, b.Position, width, height)
		if !ok {
			continue
		}
		r, style := bodyGlyph(b, p.lastFired)
		s.SetContent(x, y, r, nil, style)
		p.lastFired[b.ID] = b.Fired
	}

	s.Show()
}
