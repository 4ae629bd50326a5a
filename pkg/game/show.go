package game

import (
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/decker502/fireshow/pkg/config"
	"github.com/decker502/fireshow/pkg/embedded"
	"github.com/decker502/fireshow/pkg/render"
	"github.com/decker502/fireshow/pkg/systems"
)

// ShowOptions 组装一场烟花秀所需的依赖
type ShowOptions struct {
	Config  *config.ShowConfig
	Surface render.Surface
	// Images 图像文件系统，路径为 Config.Show.Images 中的相对路径
	Images fs.FS
	// Clock 为空时使用系统时钟
	Clock Clock
	// Rand 为空时以当前时间为种子创建
	Rand *rand.Rand
	// Go 替换解码工作协程的启动方式，为空时使用 goroutine
	Go func(func())

	OnShowEnded func()
	OnShowReset func()
}

// NewShow wires loader, pipeline, simulation and scheduler for cfg.
// The returned scheduler has not been started.
func NewShow(opts ShowOptions) *Scheduler {
	cfg := opts.Config
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	loader := NewFSImageLoader(opts.Images)
	pipeline := systems.NewImagePipeline(loader, cfg.Image)
	pipeline.DecodeTimeout = cfg.DecodeTimeout()
	if opts.Go != nil {
		pipeline.Go = opts.Go
	}

	sim := systems.NewSimulation(opts.Surface, rng, cfg)

	return NewScheduler(SchedulerOptions{
		Clock:       opts.Clock,
		Surface:     opts.Surface,
		Simulation:  sim,
		Pipeline:    pipeline,
		Images:      cfg.Show.Images,
		Interval:    cfg.AdvanceInterval(),
		Scale:       cfg.Image.Scale,
		OnShowEnded: opts.OnShowEnded,
		OnShowReset: opts.OnShowReset,
	})
}

// LoadConfig 加载配置文件；path 为空时使用嵌入的默认配置
func LoadConfig(path string) (*config.ShowConfig, error) {
	if path != "" {
		log.Printf("[Config] 加载配置文件: %s", path)
		return config.LoadShowConfig(path)
	}

	data, err := embedded.ReadFile(embedded.ShowConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}
	log.Printf("[Config] 使用内置配置: %s", embedded.ShowConfigPath)
	return config.ParseShowConfig(data)
}

// OpenImages 返回图像文件系统：dir 非空时读取磁盘目录，
// 否则使用嵌入资源中的 root 目录
func OpenImages(dir, root string) (fs.FS, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open image directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("image path %s is not a directory", dir)
		}
		log.Printf("[ImageLoader] 图像目录: %s", dir)
		return os.DirFS(dir), nil
	}

	images, err := embedded.Sub(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded images %s: %w", root, err)
	}
	log.Printf("[ImageLoader] 使用内置图像: %s", root)
	return images, nil
}
