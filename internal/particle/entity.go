// Package particle provides the moving, fading point shared by ambient
// bursts and image swarms, together with its per-frame physics.
//
// All quantities are per frame: velocity in pixels/frame, acceleration in
// pixels/frame², age and lifespan in frames.
package particle

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/fireshow/pkg/render"
)

// Physics holds the constants applied by Entity.Step.
type Physics struct {
	// Gravity 重力加速度（像素/帧²），仅对 Gravity=true 的实体生效
	Gravity float64
	// Drag 每帧速度衰减系数（各向同性），1 表示无阻力
	Drag float64
}

// DefaultPhysics returns the stock gravity and drag.
func DefaultPhysics() Physics {
	return Physics{
		Gravity: 0.02,
		Drag:    0.98,
	}
}

// Entity is a single simulated point.
//
// Opacity is derived from Age and Lifespan on demand and never stored.
type Entity struct {
	X, Y     float64
	VX, VY   float64
	Color    colorful.Color
	Age      int
	Lifespan int
	Gravity  bool
}

// NewEntity creates an entity at (x, y) launched at angle (radians) with the
// given speed.
func NewEntity(x, y, angle, speed float64, c colorful.Color, lifespan int, gravity bool) *Entity {
	return &Entity{
		X:        x,
		Y:        y,
		VX:       math.Cos(angle) * speed,
		VY:       math.Sin(angle) * speed,
		Color:    c,
		Lifespan: lifespan,
		Gravity:  gravity,
	}
}

// Step advances the entity by one frame.
func (e *Entity) Step(p Physics) {
	e.Age++
	if e.Gravity {
		e.VY += p.Gravity
	}
	e.VX *= p.Drag
	e.VY *= p.Drag
	e.X += e.VX
	e.Y += e.VY
}

// IsAlive reports whether the entity has frames left.
func (e *Entity) IsAlive() bool {
	return e.Age < e.Lifespan
}

// Opacity returns max(0, 1 - age/lifespan).
func (e *Entity) Opacity() float64 {
	if e.Lifespan <= 0 {
		return 0
	}
	return math.Max(0, 1-float64(e.Age)/float64(e.Lifespan))
}

// Draw renders the entity as a filled circle. Fully faded entities are skipped.
func (e *Entity) Draw(s render.Surface, radius float64) {
	o := e.Opacity()
	if o <= 0 {
		return
	}
	s.SetGlobalAlpha(o)
	s.SetFillColor(e.Color.Clamped())
	s.FillCircle(e.X, e.Y, radius)
}
