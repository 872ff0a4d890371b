//go:build mobile

// embed.go - 移动端配置嵌入声明
//
// 此文件仅在使用 -tags mobile 构建时编译。
// data/ 下是根目录 data/ 的副本，修改配置后运行 go generate ./mobile 同步。
package mobile

import "embed"

//go:embed data/random_force.yaml data/sandbox.yaml
var dataFS embed.FS
