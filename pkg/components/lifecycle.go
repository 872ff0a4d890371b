package components

// Lifecycle 宿主对象的显式生命周期钩子
//
// 宿主在对象变为活动状态时调用 Activate，在对象停用或销毁时调用 Deactivate。
// 实现必须保证 Deactivate 幂等，且返回后不再产生任何副作用。
type Lifecycle interface {
	Activate() error
	Deactivate()
}
