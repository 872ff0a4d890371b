package components

import (
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/types"
)

// RandomForceComponent 随机力组件
//
// 标记实体需要周期性接收随机冲量。实际调度由 RandomForceSystem
// 为每个实体创建的 ForceEmitter 完成，这里只保存设置和运行统计。
type RandomForceComponent struct {
	Settings config.RandomForceConfig
	Enabled  bool // 为 false 时发射器被停用，重新置 true 后再次激活

	// 运行统计（由发射器写入）
	Fired       int           // 已触发次数
	FirstDelay  float64       // 激活时采样的首次延迟（秒）
	LastPeriod  float64       // 最近一次采样的周期（秒）
	LastImpulse types.Vector3 // 最近一次提交的冲量
	Inert       bool          // 激活失败后永久失效
}

// NewRandomForceComponent 使用给定设置创建启用状态的组件
func NewRandomForceComponent(settings config.RandomForceConfig) *RandomForceComponent {
	return &RandomForceComponent{
		Settings: settings,
		Enabled:  true,
	}
}
