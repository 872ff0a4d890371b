//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureStorageDir 确保 Android 上的设置目录存在并可写
//
// gdata 在 Android 上写入 /data/data/{package}/ 下的应用目录，
// 但不会预先创建它。需要在 gdata.Open 之前调用。
//
// 参数：
//   - appName: gdata 应用名
func EnsureStorageDir(appName string) error {
	pkg, err := detectAndroidPackage()
	if err != nil {
		return fmt.Errorf("failed to detect Android package: %w", err)
	}

	dir := filepath.Join("/data/data", pkg, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage directory %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// detectAndroidPackage 从 /proc/self/cmdline 读取应用包名
func detectAndroidPackage() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}

	pkg := strings.Map(func(r rune) rune {
		if r == 0 || r == '\n' {
			return -1
		}
		return r
	}, string(data))
	if pkg == "" {
		return "", fmt.Errorf("empty /proc/self/cmdline")
	}
	return pkg, nil
}

// GetStoragePath 返回 Android 应用数据目录（用于调试日志）
func GetStoragePath() string {
	pkg, err := detectAndroidPackage()
	if err != nil {
		return ""
	}
	return filepath.Join("/data/data", pkg)
}
