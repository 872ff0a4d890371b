package game

import (
	"fmt"
	"log"

	"github.com/decker502/randforce/pkg/utils"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// SandboxSettings 沙盒的持久化设置
// 与 data/sandbox.yaml 不同，这里保存的是用户在运行中调整过的偏好
type SandboxSettings struct {
	Seed            uint64 `yaml:"seed"`            // 随机种子，0 表示每次启动使用时间种子
	Bodies          int    `yaml:"bodies"`          // 启动时生成的刚体数量，0 表示使用配置文件
	ContinuousDelay bool   `yaml:"continuousDelay"` // 首次延迟是否按连续区间采样
	ShowHelp        bool   `yaml:"showHelp"`        // 是否显示按键帮助
}

// DefaultSettings 返回默认设置
func DefaultSettings() *SandboxSettings {
	return &SandboxSettings{
		Seed:            0,
		Bodies:          0,
		ContinuousDelay: false,
		ShowHelp:        true,
	}
}

// SettingsManager 设置管理器
// 负责沙盒设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager   // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *SandboxSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "sandbox"
)

// OpenSettingsManager 打开 gdata 存储并创建设置管理器
//
// gdata 打开失败时退回降级模式（仅内存设置），不返回错误。
//
// 参数：
//   - appName: gdata 应用名，决定存储目录
func OpenSettingsManager(appName string) *SettingsManager {
	if err := utils.EnsureStorageDir(appName); err != nil {
		log.Printf("[SettingsManager] Warning: %v", err)
	}

	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SettingsManager] Warning: gdata unavailable: %v (settings will not persist)", err)
		manager = nil
	}

	sm, _ := NewSettingsManager(manager)
	return sm
}

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 如果加载设置失败返回错误（不影响创建）
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
		return sm, err
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// IsPersistent 是否能够持久化
func (sm *SettingsManager) IsPersistent() bool {
	return sm.gdataManager != nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *SandboxSettings {
	return sm.settings
}

// SetSeed 设置随机种子
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetSeed(seed uint64) {
	sm.settings.Seed = seed
}

// SetBodies 设置启动刚体数量，负值按 0 处理
func (sm *SettingsManager) SetBodies(n int) {
	if n < 0 {
		n = 0
	}
	sm.settings.Bodies = n
}

// SetContinuousDelay 设置首次延迟采样方式
func (sm *SettingsManager) SetContinuousDelay(enabled bool) {
	sm.settings.ContinuousDelay = enabled
}

// SetShowHelp 设置是否显示按键帮助
func (sm *SettingsManager) SetShowHelp(show bool) {
	sm.settings.ShowHelp = show
}
