package systems

import (
	"image/color"
	"math/rand"
	"time"

	"github.com/decker502/fireshow/internal/particle"
	"github.com/decker502/fireshow/pkg/config"
	"github.com/decker502/fireshow/pkg/render"
)

// SimulationStats is a snapshot of the live collections.
type SimulationStats struct {
	Bursts         int
	BurstParticles int
	ImageParticles int
	Frames         int
}

// Simulation owns the live bursts and image entities and advances them once
// per rendered frame.
//
// It is not safe for concurrent use; the frame loop owns it.
type Simulation struct {
	surface render.Surface
	rng     *rand.Rand
	physics particle.Physics

	ambient   config.AmbientConfig
	fadeAlpha float64
	radius    float64

	bursts []*BurstEmitter
	images []*particle.Entity

	lastSpawn     time.Time
	spawnInterval time.Duration
	frames        int
}

// NewSimulation creates a simulation drawing on surface.
func NewSimulation(surface render.Surface, rng *rand.Rand, cfg *config.ShowConfig) *Simulation {
	s := &Simulation{
		surface: surface,
		rng:     rng,
		physics: particle.Physics{
			Gravity: cfg.Physics.Gravity,
			Drag:    cfg.Physics.Drag,
		},
		ambient:   cfg.Ambient,
		fadeAlpha: cfg.TrailFadeAlpha,
		radius:    cfg.ParticleRadius,
	}
	s.spawnInterval = s.nextSpawnInterval()
	return s
}

// Step advances the simulation by one frame at timestamp now:
//  1. fade the whole surface (destination-out) to leave trails
//  2. spawn an ambient burst when the spawn interval has elapsed
//  3. step and draw bursts, then drop dead ones
//  4. step and draw image entities, then drop expired ones
//
// Removal happens after each pass, so no element is skipped or stepped twice.
func (s *Simulation) Step(now time.Time) {
	s.frames++
	w, h := s.surface.Size()

	s.surface.SetCompositeMode(render.CompositeSubtractive)
	s.surface.SetGlobalAlpha(s.fadeAlpha)
	s.surface.SetFillColor(color.Black)
	s.surface.FillRect(0, 0, w, h)
	s.surface.SetCompositeMode(render.CompositeAdditive)

	if s.lastSpawn.IsZero() || now.Sub(s.lastSpawn) > s.spawnInterval {
		s.bursts = append(s.bursts, NewBurstEmitter(s.rng, s.ambient, w, h))
		s.lastSpawn = now
		s.spawnInterval = s.nextSpawnInterval()
	}

	for _, b := range s.bursts {
		b.Step(s.surface, s.rng, s.ambient, s.physics, s.radius)
	}
	s.bursts = removeDeadBursts(s.bursts)

	alive := s.images[:0]
	for _, e := range s.images {
		e.Step(s.physics)
		if !e.IsAlive() {
			continue
		}
		e.Draw(s.surface, s.radius)
		alive = append(alive, e)
	}
	clear(s.images[len(alive):])
	s.images = alive
}

// AddImageEntities appends a freshly sampled swarm to the image pool.
func (s *Simulation) AddImageEntities(entities []*particle.Entity) {
	s.images = append(s.images, entities...)
}

// Reset empties both collections and forgets the last spawn time.
func (s *Simulation) Reset() {
	s.bursts = nil
	s.images = nil
	s.lastSpawn = time.Time{}
	s.spawnInterval = s.nextSpawnInterval()
	s.frames = 0
}

// Bursts returns the live bursts.
func (s *Simulation) Bursts() []*BurstEmitter {
	return s.bursts
}

// ImageEntities returns the live image entities.
func (s *Simulation) ImageEntities() []*particle.Entity {
	return s.images
}

// Stats returns a snapshot of the collection sizes.
func (s *Simulation) Stats() SimulationStats {
	stats := SimulationStats{
		Bursts:         len(s.bursts),
		ImageParticles: len(s.images),
		Frames:         s.frames,
	}
	for _, b := range s.bursts {
		stats.BurstParticles += len(b.Particles())
	}
	return stats
}

// Empty reports whether both collections are empty.
func (s *Simulation) Empty() bool {
	return len(s.bursts) == 0 && len(s.images) == 0
}

// Rand returns the simulation's random source.
func (s *Simulation) Rand() *rand.Rand {
	return s.rng
}

func (s *Simulation) nextSpawnInterval() time.Duration {
	ms := particle.RandomIntInRange(s.rng, s.ambient.SpawnIntervalMs.Min, s.ambient.SpawnIntervalMs.Max)
	return time.Duration(ms) * time.Millisecond
}

// removeDeadBursts filters bursts in place after a full pass.
func removeDeadBursts(bursts []*BurstEmitter) []*BurstEmitter {
	alive := bursts[:0]
	for _, b := range bursts {
		if !b.Dead() {
			alive = append(alive, b)
		}
	}
	clear(bursts[len(alive):])
	return alive
}
