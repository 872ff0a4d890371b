package utils

import (
	"math"
	"math/rand/v2"
	"time"
)

// Random 可注入的随机数源
//
// 所有需要随机性的系统都通过此接口取值，而不是直接使用全局随机数生成器，
// 这样测试可以注入固定种子或脚本化的序列。
type Random interface {
	// RangeInt 返回 [min, max) 内的整数；max <= min 时返回 min
	RangeInt(min, max int) int
	// RangeFloat 返回 [min, max) 内的浮点数；max <= min 时返回 min
	RangeFloat(min, max float64) float64
}

// PCGRandom 基于 math/rand/v2 PCG 的确定性随机数源
type PCGRandom struct {
	r    *rand.Rand
	seed uint64
}

// NewRandom 使用给定种子创建确定性随机数源
func NewRandom(seed uint64) *PCGRandom {
	return &PCGRandom{
		r:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// NewTimeSeededRandom 使用当前时间作为种子，用于交互式运行
func NewTimeSeededRandom() *PCGRandom {
	return NewRandom(uint64(time.Now().UnixNano()))
}

// Seed 返回创建时使用的种子（便于复现）
func (p *PCGRandom) Seed() uint64 {
	return p.seed
}

// RangeInt 返回 [min, max) 内均匀分布的整数
func (p *PCGRandom) RangeInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.r.IntN(max-min)
}

// RangeFloat 返回 [min, max) 内均匀分布的浮点数
func (p *PCGRandom) RangeFloat(min, max float64) float64 {
	return scaleUnit(p.r.Float64(), min, max)
}

// scaleUnit 将 [0, 1) 的样本映射到 [min, max)
// 浮点舍入可能使结果等于 max，此时退回到 max 之前的最近可表示值
func scaleUnit(u, min, max float64) float64 {
	if max <= min {
		return min
	}
	v := min + u*(max-min)
	if v >= max {
		v = math.Nextafter(max, min)
	}
	return v
}

// ScriptedRandom 按脚本顺序返回预设样本的随机数源（测试用）
//
// Floats 中的值是 [0, 1) 上的单位样本，按调用顺序映射到请求的区间；
// Ints 中的值直接返回（会被限制在请求区间内）。
// 脚本耗尽后循环使用。
type ScriptedRandom struct {
	Floats []float64
	Ints   []int

	floatIdx int
	intIdx   int
}

// RangeInt 返回下一个脚本整数
func (s *ScriptedRandom) RangeInt(min, max int) int {
	if max <= min || len(s.Ints) == 0 {
		return min
	}
	v := s.Ints[s.intIdx%len(s.Ints)]
	s.intIdx++
	if v < min {
		return min
	}
	if v >= max {
		return max - 1
	}
	return v
}

// RangeFloat 返回下一个脚本样本映射后的值
func (s *ScriptedRandom) RangeFloat(min, max float64) float64 {
	if len(s.Floats) == 0 {
		return min
	}
	u := s.Floats[s.floatIdx%len(s.Floats)]
	s.floatIdx++
	return scaleUnit(u, min, max)
}

// FloatCalls 返回已消费的浮点样本数量
func (s *ScriptedRandom) FloatCalls() int {
	return s.floatIdx
}
