package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/types"
)

// collector 记录每次触发的时间和冲量
type collector struct {
	activatedAt float64
	times       []float64
	impulses    []types.Vector3
}

func (c *collector) record(now float64, impulse types.Vector3) {
	c.times = append(c.times, now)
	c.impulses = append(c.impulses, impulse)
}

// periods 返回相邻两次触发的间隔
func (c *collector) periods() []float64 {
	if len(c.times) < 2 {
		return nil
	}
	out := make([]float64, 0, len(c.times)-1)
	for i := 1; i < len(c.times); i++ {
		out = append(out, c.times[i]-c.times[i-1])
	}
	return out
}

// histogram 把 [min, max) 等分成 bins 份并计数
func histogram(values []float64, min, max float64, bins int) []int {
	counts := make([]int, bins)
	width := (max - min) / float64(bins)
	for _, v := range values {
		i := int((v - min) / width)
		if i < 0 {
			i = 0
		} else if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts
}

// axisValues 取出所有冲量在某个轴上的分量
func (c *collector) axisValues(axis int) []float64 {
	out := make([]float64, len(c.impulses))
	for i, v := range c.impulses {
		out[i] = v.Axis(axis)
	}
	return out
}

// minUniformSamples 每个分桶至少需要的期望样本数，低于此值不做均匀性检查
const minUniformSamples = 50

// check 检查所有不变量，返回违反项
//
// 参数:
//   - cfg: 发射器使用的采样区间
//   - bins: 均匀性检查的分桶数
func (c *collector) check(cfg config.RandomForceConfig, bins int) []string {
	var violations []string

	if len(c.times) > 0 {
		first := c.times[0] - c.activatedAt
		if first < cfg.InitialDelay.Min || first >= cfg.InitialDelay.Max {
			violations = append(violations, fmt.Sprintf("first fire after %.4fs, outside [%g, %g)",
				first, cfg.InitialDelay.Min, cfg.InitialDelay.Max))
		}
	}

	// 时间按浮点累加，留一点误差余量
	const eps = 1e-9
	for i, p := range c.periods() {
		if p < cfg.Period.Min-eps || p >= cfg.Period.Max+eps {
			violations = append(violations, fmt.Sprintf("period #%d = %.4fs, outside [%g, %g)",
				i+1, p, cfg.Period.Min, cfg.Period.Max))
		}
	}

	for i, v := range c.impulses {
		for axis := 0; axis < 3; axis++ {
			x := v.Axis(axis)
			if x < cfg.Force.Min || x >= cfg.Force.Max {
				violations = append(violations, fmt.Sprintf("impulse #%d axis %s = %.4f, outside [%g, %g)",
					i+1, axisName(axis), x, cfg.Force.Min, cfg.Force.Max))
			}
		}
	}

	expected := float64(len(c.impulses)) / float64(bins)
	if expected >= minUniformSamples {
		for axis := 0; axis < 3; axis++ {
			counts := histogram(c.axisValues(axis), cfg.Force.Min, cfg.Force.Max, bins)
			for b, n := range counts {
				if math.Abs(float64(n)-expected) > expected/2 {
					violations = append(violations, fmt.Sprintf("axis %s bin %d has %d samples, expected about %.0f",
						axisName(axis), b, n, expected))
				}
			}
		}
	}

	return violations
}

func axisName(axis int) string {
	return [...]string{"X", "Y", "Z"}[axis]
}

// report 输出统计报告
func (c *collector) report(w io.Writer, cfg config.RandomForceConfig, bins int) {
	fmt.Fprintf(w, "firings: %d\n", len(c.times))
	if len(c.times) == 0 {
		return
	}
	fmt.Fprintf(w, "first delay: %.4fs\n", c.times[0]-c.activatedAt)

	if periods := c.periods(); len(periods) > 0 {
		lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
		for _, p := range periods {
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
			sum += p
		}
		fmt.Fprintf(w, "period: min=%.4fs max=%.4fs mean=%.4fs\n", lo, hi, sum/float64(len(periods)))
	}

	width := (cfg.Force.Max - cfg.Force.Min) / float64(bins)
	for axis := 0; axis < 3; axis++ {
		counts := histogram(c.axisValues(axis), cfg.Force.Min, cfg.Force.Max, bins)
		peak := 0
		for _, n := range counts {
			peak = max(peak, n)
		}
		fmt.Fprintf(w, "\naxis %s\n", axisName(axis))
		for b, n := range counts {
			bar := 0
			if peak > 0 {
				bar = n * 40 / peak
			}
			lo := cfg.Force.Min + float64(b)*width
			fmt.Fprintf(w, "  [%7.2f, %7.2f) %6d %s\n", lo, lo+width, n, strings.Repeat("#", bar))
		}
	}
}
