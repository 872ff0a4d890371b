//go:build mobile

package utils

// IsMobile 检测当前是否在移动设备上运行
// 移动端编译时返回 true，沙盒场景据此显示触摸操作说明
func IsMobile() bool {
	return true
}
