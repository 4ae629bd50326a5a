package systems

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/decker502/fireshow/internal/particle"
	"github.com/decker502/fireshow/pkg/config"
)

// fakeLoader 返回预置图像或错误
type fakeLoader struct {
	images map[string]image.Image
	calls  []string
}

func (l *fakeLoader) Load(ctx context.Context, path string) (image.Image, error) {
	l.calls = append(l.calls, path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, ok := l.images[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func opaqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func newSyncPipeline(loader ImageLoader) *ImagePipeline {
	p := NewImagePipeline(loader, config.DefaultShowConfig().Image)
	p.Go = func(f func()) { f() }
	return p
}

func collect(dst *[]*particle.Entity) func([]*particle.Entity) {
	return func(entities []*particle.Entity) {
		*dst = append(*dst, entities...)
	}
}

func TestImagePipeline_IgniteAndDrain(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{"a.png": opaqueImage(70, 35)}}
	p := newSyncPipeline(loader)
	rng := rand.New(rand.NewSource(1))

	p.Ignite(context.Background(), 1, "a.png", 0.6, 800, 600)
	if p.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", p.Pending())
	}

	var got []*particle.Entity
	n := p.Drain(1, rng, collect(&got))
	if n != 50 || len(got) != 50 {
		t.Fatalf("drained %d entities (sink got %d), want 10x5 = 50", n, len(got))
	}
	if p.Pending() != 0 {
		t.Errorf("pending = %d after drain, want 0", p.Pending())
	}

	cfg := config.DefaultShowConfig().Image
	for _, e := range got {
		if e.Gravity {
			t.Fatal("image entities must be gravity-free")
		}
		if e.Lifespan < cfg.Lifespan.Min || e.Lifespan > cfg.Lifespan.Max {
			t.Fatalf("lifespan %d outside [%d, %d]", e.Lifespan, cfg.Lifespan.Min, cfg.Lifespan.Max)
		}
	}

	// 第一个种子位于居中偏移处：800/2 - 70*0.6/2 = 379, 600/2 - 35*0.6/2 = 289.5
	if math.Abs(got[0].X-379) > 1e-9 || math.Abs(got[0].Y-289.5) > 1e-9 {
		t.Errorf("first entity at (%v, %v), want (379, 289.5)", got[0].X, got[0].Y)
	}

	// 再次 Drain 不会重复交付
	if n := p.Drain(1, rng, collect(&got)); n != 0 {
		t.Errorf("second drain delivered %d entities", n)
	}
}

// TestImagePipeline_DecodeFailure 解码失败上报错误且不产生实体
func TestImagePipeline_DecodeFailure(t *testing.T) {
	p := newSyncPipeline(&fakeLoader{})
	var failed []string
	p.OnError = func(path string, err error) {
		failed = append(failed, path)
	}

	p.Ignite(context.Background(), 1, "missing.png", 0.6, 800, 600)

	var got []*particle.Entity
	n := p.Drain(1, rand.New(rand.NewSource(1)), collect(&got))
	if n != 0 || len(got) != 0 {
		t.Errorf("failed decode contributed %d entities", n)
	}
	if len(failed) != 1 || failed[0] != "missing.png" {
		t.Errorf("OnError calls = %v, want [missing.png]", failed)
	}
	if p.Pending() != 0 {
		t.Errorf("pending = %d, want 0", p.Pending())
	}
}

// TestImagePipeline_StaleGeneration 重置后到达的旧结果被丢弃
func TestImagePipeline_StaleGeneration(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{"a.png": opaqueImage(14, 14)}}
	p := newSyncPipeline(loader)

	p.Ignite(context.Background(), 1, "a.png", 1, 100, 100)
	p.Discard()

	var got []*particle.Entity
	if n := p.Drain(2, rand.New(rand.NewSource(1)), collect(&got)); n != 0 {
		t.Errorf("stale result delivered %d entities", n)
	}
	if p.Pending() != 0 {
		t.Errorf("pending = %d after discard, want 0", p.Pending())
	}
}

func TestImagePipeline_DegenerateImage(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{
		"blank.png": image.NewNRGBA(image.Rect(0, 0, 50, 50)),
	}}
	p := newSyncPipeline(loader)
	errs := 0
	p.OnError = func(string, error) { errs++ }

	p.Ignite(context.Background(), 1, "blank.png", 0.6, 800, 600)

	called := false
	n := p.Drain(1, rand.New(rand.NewSource(1)), func([]*particle.Entity) { called = true })
	if n != 0 || called {
		t.Errorf("transparent image produced entities (n=%d, sink called=%v)", n, called)
	}
	if errs != 0 {
		t.Error("a transparent image is not an error")
	}
}

// TestImagePipeline_OutOfOrderCompletion 后请求的图像先完成也能正确交付
func TestImagePipeline_OutOfOrderCompletion(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{
		"a.png": opaqueImage(7, 7),
		"b.png": opaqueImage(14, 7),
	}}
	p := NewImagePipeline(loader, config.DefaultShowConfig().Image)

	// 手动控制工作协程的执行顺序
	var queued []func()
	p.Go = func(f func()) { queued = append(queued, f) }

	p.Ignite(context.Background(), 1, "a.png", 1, 100, 100)
	p.Ignite(context.Background(), 1, "b.png", 1, 100, 100)
	queued[1]()

	rng := rand.New(rand.NewSource(1))
	var got []*particle.Entity
	if n := p.Drain(1, rng, collect(&got)); n != 2 {
		t.Fatalf("first drain delivered %d entities, want b.png's 2", n)
	}
	if p.Pending() != 1 {
		t.Errorf("pending = %d, want 1", p.Pending())
	}

	queued[0]()
	if n := p.Drain(1, rng, collect(&got)); n != 1 {
		t.Errorf("second drain delivered %d entities, want a.png's 1", n)
	}
}

func TestImagePipeline_CancelledContext(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{"a.png": opaqueImage(7, 7)}}
	p := NewImagePipeline(loader, config.DefaultShowConfig().Image)
	var queued []func()
	p.Go = func(f func()) { queued = append(queued, f) }

	ctx, cancel := context.WithCancel(context.Background())
	p.Ignite(ctx, 1, "a.png", 1, 100, 100)
	cancel()
	p.Discard()
	queued[0]()

	if n := p.Drain(2, rand.New(rand.NewSource(1)), func([]*particle.Entity) {}); n != 0 {
		t.Errorf("cancelled ignite delivered %d entities", n)
	}
}

// stuckLoader 忽略 ctx，直到 release 关闭才返回
type stuckLoader struct {
	release chan struct{}
}

func (l *stuckLoader) Load(ctx context.Context, path string) (image.Image, error) {
	<-l.release
	return opaqueImage(7, 7), nil
}

// TestImagePipeline_DecodeTimeout 加载器卡住时，超时后立即上报失败
func TestImagePipeline_DecodeTimeout(t *testing.T) {
	loader := &stuckLoader{release: make(chan struct{})}
	defer close(loader.release)

	p := newSyncPipeline(loader)
	p.DecodeTimeout = 50 * time.Millisecond
	var failures []error
	p.OnError = func(path string, err error) { failures = append(failures, err) }

	start := time.Now()
	p.Ignite(context.Background(), 1, "slow.png", 1, 100, 100)

	n := p.Drain(1, rand.New(rand.NewSource(1)), func([]*particle.Entity) {
		t.Error("timed out decode must not produce entities")
	})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout reported after %v, want about 50ms", elapsed)
	}
	if n != 0 {
		t.Errorf("timed out decode delivered %d entities", n)
	}
	if len(failures) != 1 || !errors.Is(failures[0], context.DeadlineExceeded) {
		t.Fatalf("failures = %v, want one DeadlineExceeded", failures)
	}
	if p.Pending() != 0 {
		t.Errorf("pending = %d after timeout, want 0", p.Pending())
	}
}

func TestImagePipeline_DecodeWithinTimeout(t *testing.T) {
	loader := &fakeLoader{images: map[string]image.Image{"a.png": opaqueImage(14, 14)}}
	p := newSyncPipeline(loader)
	p.DecodeTimeout = 5 * time.Second

	p.Ignite(context.Background(), 1, "a.png", 1, 100, 100)
	if n := p.Drain(1, rand.New(rand.NewSource(1)), func([]*particle.Entity) {}); n != 4 {
		t.Errorf("drained %d entities, want 4", n)
	}
}
