package systems

import (
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/fireshow/internal/particle"
	"github.com/decker502/fireshow/pkg/config"
	"github.com/decker502/fireshow/pkg/render"
)

// BurstPhase 背景烟花的阶段
type BurstPhase int

const (
	// BurstRising 上升阶段：只有一个火花标记，没有粒子
	BurstRising BurstPhase = iota
	// BurstExploded 爆炸阶段：持有粒子，粒子全部消失后烟花死亡
	BurstExploded
)

// markerSize 上升火花标记的边长（像素）
const markerSize = 2

// RisingMarker is the spark drawn while a burst climbs. It is not an Entity.
type RisingMarker struct {
	X, Y float64
}

// BurstEmitter is one ambient firework.
//
// The two phases are a tagged variant: marker is meaningful only while
// Rising, particles only once Exploded. The transition happens exactly once.
type BurstEmitter struct {
	phase   BurstPhase
	marker  RisingMarker
	targetY float64
	color   colorful.Color

	particles []*particle.Entity
}

// NewBurstEmitter launches a burst from the bottom edge of a width×height
// surface. Origin X, target altitude and hue are randomised from cfg.
func NewBurstEmitter(rng *rand.Rand, cfg config.AmbientConfig, width, height float64) *BurstEmitter {
	x := particle.RandomInRange(rng, width*cfg.OriginX.Min, width*cfg.OriginX.Max)
	targetY := particle.RandomInRange(rng, height*cfg.TargetY.Min, height*cfg.TargetY.Max)
	hue := rng.Float64() * 360

	return &BurstEmitter{
		phase:   BurstRising,
		marker:  RisingMarker{X: x, Y: height},
		targetY: targetY,
		color:   colorful.Hsl(hue, cfg.Saturation, cfg.Lightness),
	}
}

// Phase returns the current phase.
func (b *BurstEmitter) Phase() BurstPhase {
	return b.phase
}

// Marker returns the rising spark; ok is false once the burst has exploded.
func (b *BurstEmitter) Marker() (RisingMarker, bool) {
	if b.phase != BurstRising {
		return RisingMarker{}, false
	}
	return b.marker, true
}

// Particles returns the live particles. Always empty while rising.
func (b *BurstEmitter) Particles() []*particle.Entity {
	return b.particles
}

// TargetY returns the altitude at which the burst explodes.
func (b *BurstEmitter) TargetY() float64 {
	return b.targetY
}

// Color returns the burst colour fixed at creation.
func (b *BurstEmitter) Color() colorful.Color {
	return b.color
}

// Dead reports whether the burst has exploded and all its particles expired.
func (b *BurstEmitter) Dead() bool {
	return b.phase == BurstExploded && len(b.particles) == 0
}

// Step advances the burst by one frame and draws it.
func (b *BurstEmitter) Step(s render.Surface, rng *rand.Rand, cfg config.AmbientConfig, physics particle.Physics, radius float64) {
	if b.phase == BurstRising {
		b.marker.Y -= cfg.RiseSpeed
		if b.marker.Y <= b.targetY {
			b.explode(rng, cfg)
		} else {
			s.SetGlobalAlpha(1)
			s.SetFillColor(color.White)
			s.FillRect(b.marker.X, b.marker.Y, markerSize, markerSize)
		}
	}

	// 先更新再绘制，过期粒子在当帧移除
	alive := b.particles[:0]
	for _, p := range b.particles {
		p.Step(physics)
		if !p.IsAlive() {
			continue
		}
		p.Draw(s, radius)
		alive = append(alive, p)
	}
	clear(b.particles[len(alive):])
	b.particles = alive
}

// explode spawns the particle ring at the marker position.
func (b *BurstEmitter) explode(rng *rand.Rand, cfg config.AmbientConfig) {
	count := particle.RandomIntInRange(rng, cfg.ParticleCount.Min, cfg.ParticleCount.Max)
	b.particles = make([]*particle.Entity, 0, count)
	for i := 0; i < count; i++ {
		b.particles = append(b.particles, particle.NewEntity(
			b.marker.X,
			b.marker.Y,
			particle.RandomAngle(rng),
			particle.RandomInRange(rng, cfg.ParticleSpeed.Min, cfg.ParticleSpeed.Max),
			b.color,
			cfg.ParticleLifespan,
			true,
		))
	}
	b.phase = BurstExploded
}
