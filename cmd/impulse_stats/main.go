// impulse_stats 无界面运行单个随机力发射器并输出统计
//
// 用法:
//
//	go run ./cmd/impulse_stats --firings 5000 --seed 7
//
// 任何不变量被违反时以非零状态退出。
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"os"

	"github.com/decker502/randforce/pkg/components"
	"github.com/decker502/randforce/pkg/config"
	"github.com/decker502/randforce/pkg/ecs"
	"github.com/decker502/randforce/pkg/systems"
	"github.com/decker502/randforce/pkg/types"
	"github.com/decker502/randforce/pkg/utils"
)

var (
	configPath      = flag.String("config", config.RandomForceConfigPath, "随机力配置文件（默认路径不存在时使用内置默认值）")
	firings         = flag.Int("firings", 2000, "采集的触发次数")
	seed            = flag.Uint64("seed", 1, "随机种子")
	step            = flag.Float64("dt", 1.0/60.0, "每帧时间步长（秒）")
	bins            = flag.Int("bins", 10, "直方图分桶数")
	continuousDelay = flag.Bool("continuous-delay", false, "首次延迟按连续区间采样")
	verbose         = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *continuousDelay {
		cfg.InitialDelay.Continuous = true
	}
	if *firings <= 0 || *bins <= 0 || !(*step > 0) || math.IsInf(*step, 0) {
		fmt.Fprintln(os.Stderr, "firings, bins and dt must be positive")
		os.Exit(2)
	}

	c, err := run(cfg, *seed, *firings, *step)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seed=%d mode=%s delay=[%g, %g) continuous=%v period=[%g, %g) force=[%g, %g)\n",
		*seed, cfg.ForceMode(), cfg.InitialDelay.Min, cfg.InitialDelay.Max, cfg.InitialDelay.Continuous,
		cfg.Period.Min, cfg.Period.Max, cfg.Force.Min, cfg.Force.Max)
	c.report(os.Stdout, cfg, *bins)

	if violations := c.check(cfg, *bins); len(violations) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d invariant violation(s):\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("\nall invariants hold")
}

// loadConfig 加载随机力配置
//
// 只有默认路径且文件不存在时才回退到内置默认值；
// 显式指定的路径读不到或配置无效都返回错误。
func loadConfig(path string) (config.RandomForceConfig, error) {
	cfg, err := config.LoadRandomForceConfig(path)
	if err == nil {
		return *cfg, nil
	}
	if path == config.RandomForceConfigPath && errors.Is(err, fs.ErrNotExist) {
		log.Printf("[ImpulseStats] %v, using defaults", err)
		return config.DefaultRandomForceConfig(), nil
	}
	return config.RandomForceConfig{}, err
}

// run 创建一个带刚体的实体，激活发射器并推进时间直到采集到 n 次触发
func run(cfg config.RandomForceConfig, seed uint64, n int, dt float64) (*collector, error) {
	em := ecs.NewEntityManager()
	scheduler := systems.NewInvokeScheduler()
	rng := utils.NewRandom(seed)

	id := em.CreateEntity()
	em.AddComponent(id, components.NewRigidBody(types.Zero3, 1))

	c := &collector{activatedAt: scheduler.Now()}
	emitter := systems.NewForceEmitter(em, scheduler, rng, id, cfg)
	emitter.OnImpulse = func(_ ecs.EntityID, impulse types.Vector3) {
		c.record(scheduler.Now(), impulse)
	}

	if err := emitter.Activate(); err != nil {
		return nil, err
	}
	for len(c.times) < n {
		scheduler.Update(dt)
	}
	emitter.Deactivate()
	// 多帧追赶时最后一帧可能超出 n 次
	c.times = c.times[:n]
	c.impulses = c.impulses[:n]
	return c, nil
}
