package systems

import (
	"container/heap"
	"log"
	"math"
)

// MinInvokePeriod 重复调用的最小周期（秒）
// 非正或非有限（NaN、Inf）周期会被提升到此值，避免同一帧内无限追帧
const MinInvokePeriod = 0.001

// InvokeHandle 调度句柄，0 为无效句柄
type InvokeHandle uint64

// invokeEntry 单个待执行的调用
type invokeEntry struct {
	handle     InvokeHandle
	due        float64        // 下一次触发的调度器时间（秒）
	seq        uint64         // 同一时刻触发时按入队顺序执行
	nextPeriod func() float64 // nil 表示一次性调用
	fn         func()
	cancelled  bool
	index      int // 在堆中的位置，-1 表示不在堆中
}

// invokeQueue 按 (due, seq) 排序的最小堆
type invokeQueue []*invokeEntry

func (q invokeQueue) Len() int { return len(q) }

func (q invokeQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q invokeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *invokeQueue) Push(x any) {
	e := x.(*invokeEntry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *invokeQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// InvokeScheduler 帧驱动的延迟/重复调用服务
//
// 调度器维护自己的时间轴，只在 Update 中按帧间隔推进。
// 所有回调都在调用 Update 的同一 goroutine 中执行，不需要加锁。
//
// 语义:
//   - InvokeRepeating 首次在 delay 秒后触发，之后每次触发后调用 nextPeriod 获取下一个间隔
//   - 一帧内时间跨过多个触发点时会依次追帧触发
//   - Cancel 立即生效，包括在同一次 Update 中由其他回调取消的情况
type InvokeScheduler struct {
	now     float64
	queue   invokeQueue
	entries map[InvokeHandle]*invokeEntry

	nextHandle uint64
	nextSeq    uint64

	fired uint64 // 累计触发次数
}

// NewInvokeScheduler 创建调度器，时间从 0 开始
func NewInvokeScheduler() *InvokeScheduler {
	return &InvokeScheduler{
		queue:   make(invokeQueue, 0),
		entries: make(map[InvokeHandle]*invokeEntry),
	}
}

// Now 返回调度器当前时间（秒）
// 在回调执行期间返回该回调的计划触发时间
func (s *InvokeScheduler) Now() float64 {
	return s.now
}

// Pending 返回尚未结束的调用数量
func (s *InvokeScheduler) Pending() int {
	return len(s.entries)
}

// FiredCount 返回累计触发次数
func (s *InvokeScheduler) FiredCount() uint64 {
	return s.fired
}

// IsScheduled 检查句柄是否仍有效
func (s *InvokeScheduler) IsScheduled(h InvokeHandle) bool {
	_, ok := s.entries[h]
	return ok
}

// Invoke 在 delay 秒后执行一次 fn
func (s *InvokeScheduler) Invoke(delay float64, fn func()) InvokeHandle {
	return s.schedule(delay, nil, fn)
}

// InvokeRepeating 在 delay 秒后首次执行 fn，之后重复执行
//
// 参数:
//   - delay: 首次触发延迟（秒），负值按 0 处理
//   - nextPeriod: 每次触发后调用一次，返回到下一次触发的间隔（秒）
//   - fn: 回调
//
// 返回:
//   - InvokeHandle: 用于 Cancel 的句柄
func (s *InvokeScheduler) InvokeRepeating(delay float64, nextPeriod func() float64, fn func()) InvokeHandle {
	if nextPeriod == nil {
		nextPeriod = func() float64 { return MinInvokePeriod }
	}
	return s.schedule(delay, nextPeriod, fn)
}

func (s *InvokeScheduler) schedule(delay float64, nextPeriod func() float64, fn func()) InvokeHandle {
	if !(delay >= 0) || math.IsInf(delay, 0) {
		delay = 0
	}

	s.nextHandle++
	e := &invokeEntry{
		handle:     InvokeHandle(s.nextHandle),
		due:        s.now + delay,
		seq:        s.takeSeq(),
		nextPeriod: nextPeriod,
		fn:         fn,
		index:      -1,
	}
	s.entries[e.handle] = e
	heap.Push(&s.queue, e)
	return e.handle
}

func (s *InvokeScheduler) takeSeq() uint64 {
	s.nextSeq++
	return s.nextSeq
}

// Cancel 取消调用
//
// 幂等：对已取消或已完成的句柄返回 false。
// 在回调内部取消自身同样有效，该调用不会再次入队。
func (s *InvokeScheduler) Cancel(h InvokeHandle) bool {
	e, ok := s.entries[h]
	if !ok {
		return false
	}

	e.cancelled = true
	delete(s.entries, h)
	if e.index >= 0 {
		heap.Remove(&s.queue, e.index)
	}
	return true
}

// CancelAll 取消所有调用
func (s *InvokeScheduler) CancelAll() {
	for h := range s.entries {
		s.Cancel(h)
	}
}

// Update 推进调度器时间并执行所有到期的调用
//
// 参数:
//   - deltaTime: 自上一帧以来经过的时间（秒），负值和非有限值按 0 处理
func (s *InvokeScheduler) Update(deltaTime float64) {
	if !(deltaTime >= 0) || math.IsInf(deltaTime, 0) {
		deltaTime = 0
	}
	target := s.now + deltaTime

	for s.queue.Len() > 0 {
		e := s.queue[0]
		if e.due > target {
			break
		}
		heap.Pop(&s.queue)

		if e.due > s.now {
			s.now = e.due
		}
		e.fn()
		s.fired++

		// 回调中可能取消了自身
		if e.cancelled || e.nextPeriod == nil {
			delete(s.entries, e.handle)
			continue
		}

		period := e.nextPeriod()
		if !(period >= MinInvokePeriod) || math.IsInf(period, 0) {
			log.Printf("[InvokeScheduler] WARNING: period %.4fs invalid or below minimum, clamped to %.4fs", period, MinInvokePeriod)
			period = MinInvokePeriod
		}
		e.due += period
		e.seq = s.takeSeq()
		heap.Push(&s.queue, e)
	}

	s.now = target
}
