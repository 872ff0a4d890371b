//go:build !android

package utils

// EnsureStorageDir 非 Android 平台的空实现
// gdata 在这些平台上会自行创建存储目录
func EnsureStorageDir(appName string) error {
	return nil
}

// GetStoragePath 非 Android 平台返回空字符串
func GetStoragePath() string {
	return ""
}
