// Command headless 在没有窗口的情况下运行烟花秀
//
// 以固定的 60 帧/秒推进手动时钟，绘制到记录型画布上，
// 每秒输出一次粒子统计。用于在 CI 或服务器上检查配置和图像。
//
// 用法:
//
//	go run ./cmd/headless --seconds 90 --seed 7 --verbose
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/decker502/fireshow/pkg/embedded"
	"github.com/decker502/fireshow/pkg/game"
	"github.com/decker502/fireshow/pkg/render"
)

const framesPerSecond = 60

var (
	configFlag  = flag.String("config", "", "Path to a show config YAML (default: ./data/show.yaml)")
	imagesFlag  = flag.String("images", "", "Directory to load show images from (default: imageRoot from the config)")
	secondsFlag = flag.Int("seconds", 0, "Simulated seconds to run (0: until the show ends)")
	seedFlag    = flag.Int64("seed", 1, "Random seed for burst placement and particle spread")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	// 默认静音运行；统计信息通过 stdout 输出
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "headless: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 以当前目录作为资源根目录，布局与 embed.go 一致
	embedded.Init(os.DirFS("."), os.DirFS("."))

	cfg, err := game.LoadConfig(*configFlag)
	if err != nil {
		return err
	}
	images, err := game.OpenImages(*imagesFlag, cfg.Show.ImageRoot)
	if err != nil {
		return err
	}

	clock := game.NewManualClock(time.Now())
	surface := render.NewRecorder(float64(cfg.Window.Width), float64(cfg.Window.Height))
	ended := false

	sched := game.NewShow(game.ShowOptions{
		Config:  cfg,
		Surface: surface,
		Images:  images,
		Clock:   clock,
		Rand:    rand.New(rand.NewSource(*seedFlag)),
		// 同步解码，配合固定种子使每次运行的统计结果相同
		Go:          func(f func()) { f() },
		OnShowEnded: func() { ended = true },
	})
	sched.Start()

	limit := *secondsFlag * framesPerSecond
	frameTime := time.Second / framesPerSecond
	for frame := 1; limit <= 0 || frame <= limit; frame++ {
		clock.Advance(frameTime)
		sched.Tick()

		if frame%framesPerSecond == 0 {
			stats := sched.Simulation().Stats()
			fmt.Printf("t=%3ds image=%d/%d bursts=%d burstParticles=%d imageParticles=%d circles=%d\n",
				frame/framesPerSecond, sched.Index()+1, len(cfg.Show.Images),
				stats.Bursts, stats.BurstParticles, stats.ImageParticles, surface.Circles)
		}
		if ended {
			fmt.Printf("show ended after %.1fs\n", float64(frame)/framesPerSecond)
			break
		}
	}

	sched.Stop()
	return nil
}
