package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/fireshow/pkg/app"
	"github.com/decker502/fireshow/pkg/embedded"
)

var (
	configFlag     = flag.String("config", "", "Path to a show config YAML (default: embedded data/show.yaml)")
	imagesFlag     = flag.String("images", "", "Directory to load show images from (default: embedded assets/images)")
	verboseFlag    = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	fullscreenFlag = flag.Bool("fullscreen", false, "Start in fullscreen mode")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源（assetsFS 和 dataFS 在 embed.go 中声明）
	embedded.Init(assetsFS, dataFS)

	showApp, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		ConfigPath: *configFlag,
		ImageDir:   *imagesFlag,
	})
	if err != nil {
		// 日志可能已被静音，错误直接输出到 stderr
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	window := showApp.Config().Window
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(*fullscreenFlag)

	if err := ebiten.RunGame(showApp); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
	log.Println("[App] Fireshow closed")
}
