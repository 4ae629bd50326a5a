// Package app 提供烟花秀应用的 ebiten 包装器
//
// 该包将初始化逻辑从 main 包提取出来，main.go 通过 NewApp() 创建应用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/fireshow/pkg/config"
	"github.com/decker502/fireshow/pkg/game"
	"github.com/decker502/fireshow/pkg/render"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 配置文件路径，为空则使用内置配置
	ConfigPath string
	// ImageDir 图像目录，为空则使用内置图像
	ImageDir string
}

const endedBanner = "Show ended. Press R, Enter or click to replay."

// App 是烟花秀的 ebiten.Game 实现
//
// 每个 Update 驱动一次调度器 Tick；画布在帧之间保留，Draw 只负责呈现。
type App struct {
	cfg       *config.ShowConfig
	surface   *render.EbitenSurface
	scheduler *game.Scheduler

	started      bool
	ended        bool
	layoutWidth  int
	layoutHeight int

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化烟花秀应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	showConfig, err := game.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}

	images, err := game.OpenImages(cfg.ImageDir, showConfig.Show.ImageRoot)
	if err != nil {
		return nil, fmt.Errorf("图像资源加载失败: %w", err)
	}

	a := &App{
		cfg:          showConfig,
		surface:      render.NewEbitenSurface(showConfig.Window.Width, showConfig.Window.Height),
		layoutWidth:  showConfig.Window.Width,
		layoutHeight: showConfig.Window.Height,
	}
	a.scheduler = game.NewShow(game.ShowOptions{
		Config:      showConfig,
		Surface:     a.surface,
		Images:      images,
		OnShowEnded: func() { a.ended = true },
		OnShowReset: func() { a.ended = false },
	})

	log.Printf("[App] 初始化完成: %d 张图像, 窗口 %dx%d",
		len(showConfig.Show.Images), showConfig.Window.Width, showConfig.Window.Height)
	return a, nil
}

// Update 更新烟花秀状态
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.scheduler.Stop()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.cfg.Window.Width, a.cfg.Window.Height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	// 画布跟随窗口大小
	a.surface.Resize(a.layoutWidth, a.layoutHeight)

	// 第一次 Update 时画布已是最终尺寸，此时开始播放以便图像正确居中
	if !a.started {
		a.started = true
		a.scheduler.Start()
	} else if replayRequested() {
		log.Printf("[App] 重新播放")
		a.scheduler.Reset()
	}

	a.scheduler.Tick()
	return nil
}

// replayRequested 检查重播输入：R、Enter 或鼠标左键
func replayRequested() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyR) ||
		inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
}

// Draw 绘制画布，播放结束时叠加提示
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	a.surface.Present(screen)

	if a.ended {
		w := screen.Bounds().Dx()
		h := screen.Bounds().Dy()
		// 调试字体每个字符 6x16 像素
		ebitenutil.DebugPrintAt(screen, endedBanner, (w-len(endedBanner)*6)/2, h/2-8)
	}
}

// Layout 画布与窗口等大
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.layoutWidth, a.layoutHeight = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Config 返回生效的烟花秀配置
func (a *App) Config() *config.ShowConfig {
	return a.cfg
}
