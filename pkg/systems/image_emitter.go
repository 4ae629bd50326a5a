package systems

import (
	"context"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/fireshow/internal/particle"
	"github.com/decker502/fireshow/pkg/config"
	"github.com/decker502/fireshow/pkg/utils"
)

// ImageLoader decodes the image at path.
//
// Load runs off the frame thread and must honour ctx cancellation.
type ImageLoader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// ImageEmitter is the result of one ignite request: the sampled seeds of an
// image placed on the surface, or the error that prevented it.
type ImageEmitter struct {
	Path       string
	Scale      float64
	OffsetX    float64
	OffsetY    float64
	Generation uint64
	Seeds      []utils.Seed
	Err        error
}

// Spawn turns the seeds into gravity-free, slowly drifting entities.
func (e *ImageEmitter) Spawn(rng *rand.Rand, cfg config.ImageConfig) []*particle.Entity {
	entities := make([]*particle.Entity, 0, len(e.Seeds))
	for _, seed := range e.Seeds {
		entities = append(entities, particle.NewEntity(
			seed.X,
			seed.Y,
			particle.RandomAngle(rng),
			particle.RandomInRange(rng, cfg.DriftSpeed.Min, cfg.DriftSpeed.Max),
			seed.Color,
			particle.RandomIntInRange(rng, cfg.Lifespan.Min, cfg.Lifespan.Max),
			false,
		))
	}
	return entities
}

// resultBufferSize 结果通道容量；工作协程在通道满时等待或随 ctx 取消退出
const resultBufferSize = 16

// ImagePipeline converts images into entity swarms asynchronously.
//
// Ignite returns at once; a worker decodes and samples the image and posts
// an ImageEmitter on a channel. Drain, called from the frame thread, hands
// completed emitters of the current generation to the caller. Completion
// order between concurrent ignites is not preserved.
type ImagePipeline struct {
	loader ImageLoader
	cfg    config.ImageConfig

	// DecodeTimeout 单次解码的超时时间，0 表示不限
	DecodeTimeout time.Duration
	// Go 启动工作协程，测试中可替换为同步执行
	Go func(func())
	// OnError 解码失败回调（在 Drain 所在线程调用）
	OnError func(path string, err error)

	results chan *ImageEmitter
	pending int
}

// NewImagePipeline creates a pipeline backed by loader.
func NewImagePipeline(loader ImageLoader, cfg config.ImageConfig) *ImagePipeline {
	return &ImagePipeline{
		loader:  loader,
		cfg:     cfg,
		Go:      func(f func()) { go f() },
		results: make(chan *ImageEmitter, resultBufferSize),
	}
}

// Ignite requests path to be decoded and sampled for a surfaceW×surfaceH
// surface. The request is tagged with generation so Drain can discard it
// if the session has been reset in the meantime.
func (p *ImagePipeline) Ignite(ctx context.Context, generation uint64, path string, scale, surfaceW, surfaceH float64) {
	p.pending++
	opts := utils.SampleOptions{
		Gap:            p.cfg.Gap,
		AlphaThreshold: uint8(p.cfg.AlphaThreshold),
		Scale:          scale,
	}
	timeout := p.DecodeTimeout

	p.Go(func() {
		emitter := &ImageEmitter{Path: path, Scale: scale, Generation: generation}

		img, err := p.load(ctx, path, timeout)
		if err == nil && img == nil {
			err = fmt.Errorf("loader returned no image for %s", path)
		}
		if err != nil {
			emitter.Err = err
		} else {
			b := img.Bounds()
			opts.OffsetX, opts.OffsetY = utils.CenterOffset(surfaceW, surfaceH, b.Dx(), b.Dy(), scale)
			emitter.OffsetX, emitter.OffsetY = opts.OffsetX, opts.OffsetY
			emitter.Seeds = utils.SamplePixels(img, opts)
		}

		select {
		case p.results <- emitter:
		case <-ctx.Done():
			// 会话已重置或关闭，结果无人接收
		}
	})
}

type loadResult struct {
	img image.Image
	err error
}

// load runs the loader in its own goroutine so a stuck open or decode
// cannot hold the worker past timeout. A result arriving after the
// deadline is dropped.
func (p *ImagePipeline) load(ctx context.Context, path string, timeout time.Duration) (image.Image, error) {
	if timeout <= 0 {
		return p.loader.Load(ctx, path)
	}

	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 容量为 1，超时后迟到的结果不会阻塞加载协程
	done := make(chan loadResult, 1)
	go func() {
		img, err := p.loader.Load(loadCtx, path)
		done <- loadResult{img: img, err: err}
	}()

	select {
	case r := <-done:
		return r.img, r.err
	case <-loadCtx.Done():
		return nil, fmt.Errorf("failed to load %s: %w", path, loadCtx.Err())
	}
}

// Drain delivers every completed emitter without blocking.
//
// Emitters from another generation are dropped. Failed emitters are logged,
// reported through OnError and contribute nothing. Returns the number of
// entities handed to sink.
func (p *ImagePipeline) Drain(generation uint64, rng *rand.Rand, sink func([]*particle.Entity)) int {
	spawned := 0
	for {
		select {
		case emitter := <-p.results:
			if emitter.Generation != generation {
				log.Printf("[ImagePipeline] 丢弃过期结果: %s (generation %d, current %d)",
					emitter.Path, emitter.Generation, generation)
				continue
			}
			p.pending--
			if emitter.Err != nil {
				log.Printf("[ImagePipeline] 图像加载失败: %s: %v", emitter.Path, emitter.Err)
				if p.OnError != nil {
					p.OnError(emitter.Path, emitter.Err)
				}
				continue
			}

			entities := emitter.Spawn(rng, p.cfg)
			log.Printf("[ImagePipeline] %s -> %d 个粒子", emitter.Path, len(entities))
			if len(entities) > 0 {
				sink(entities)
			}
			spawned += len(entities)
		default:
			return spawned
		}
	}
}

// Discard forgets all in-flight requests. Called on session reset, after
// their context has been cancelled; late results are dropped by Drain.
func (p *ImagePipeline) Discard() {
	p.pending = 0
}

// Pending returns the number of current-generation ignites not yet drained.
func (p *ImagePipeline) Pending() int {
	return p.pending
}
