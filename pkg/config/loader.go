package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/decker502/randforce/pkg/embedded"
)

// readConfigData 读取配置文件内容
//
// 优先读取磁盘文件（便于本地调参），磁盘上不存在时回退到嵌入的默认配置。
//
// 参数:
//   - path: 配置文件路径（如 "data/random_force.yaml"）
//
// 返回:
//   - []byte: 文件内容
//   - error: 两处都读取失败时返回错误
func readConfigData(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if embedded.Exists(path) {
		log.Printf("[Config] %s not found on disk, using embedded copy", path)
		return embedded.ReadFile(path)
	}
	return nil, fmt.Errorf("config file %s: %w", path, fs.ErrNotExist)
}
