package main

import (
	"flag"
	"log"

	"github.com/decker502/randforce/pkg/app"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose         = flag.Bool("verbose", false, "显示详细调试信息")
	configPath      = flag.String("config", config.RandomForceConfigPath, "随机力配置文件")
	sandboxPath     = flag.String("sandbox", config.SandboxConfigPath, "世界配置文件")
	seed            = flag.Uint64("seed", 0, "随机种子（0 表示沿用已保存的设置，未保存时使用时间种子）")
	bodies          = flag.Int("bodies", 0, "初始刚体数量（0 表示沿用设置或配置文件）")
	continuousDelay = flag.Bool("continuous-delay", false, "首次延迟按连续区间 [min, max) 采样")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源
	// dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:         *verbose,
		ConfigPath:      *configPath,
		SandboxPath:     *sandboxPath,
		Seed:            *seed,
		Bodies:          *bodies,
		ContinuousDelay: *continuousDelay,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(960, 600)
	ebiten.SetWindowTitle("Random Force Sandbox")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)

	// 退出时保存设置
	gameApp.GetSceneManager().SaveOnExit()

	if runErr != nil {
		log.Fatal(runErr)
	}
}
