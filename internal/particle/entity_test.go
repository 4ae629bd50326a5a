package particle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/fireshow/pkg/render"
)

const epsilon = 1e-9

// TestEntity_OpacityDecay 验证透明度随年龄单调递减，并在 age == lifespan 时恰好为 0
func TestEntity_OpacityDecay(t *testing.T) {
	e := &Entity{Lifespan: 80}
	physics := DefaultPhysics()

	prev := e.Opacity()
	if prev != 1 {
		t.Fatalf("new entity opacity = %v, want 1", prev)
	}

	for e.Age < e.Lifespan {
		e.Step(physics)
		o := e.Opacity()
		if o > prev {
			t.Fatalf("opacity increased at age %d: %v -> %v", e.Age, prev, o)
		}
		if o < 0 {
			t.Fatalf("opacity negative at age %d: %v", e.Age, o)
		}
		prev = o
	}

	if e.Opacity() != 0 {
		t.Errorf("opacity at age == lifespan = %v, want exactly 0", e.Opacity())
	}
	if e.IsAlive() {
		t.Error("entity should not be alive at age == lifespan")
	}

	// Past the end it must stay clamped at zero.
	e.Step(physics)
	if e.Opacity() != 0 {
		t.Errorf("opacity past lifespan = %v, want 0", e.Opacity())
	}
}

func TestEntity_ZeroLifespan(t *testing.T) {
	e := &Entity{}
	if e.IsAlive() {
		t.Error("zero-lifespan entity should be dead")
	}
	if e.Opacity() != 0 {
		t.Errorf("zero-lifespan opacity = %v, want 0", e.Opacity())
	}
}

// TestEntity_StepWithGravity checks one frame of integration by hand.
func TestEntity_StepWithGravity(t *testing.T) {
	e := &Entity{X: 10, Y: 20, VX: 1, VY: -2, Lifespan: 10, Gravity: true}
	e.Step(Physics{Gravity: 0.02, Drag: 0.98})

	wantVX := 1 * 0.98
	wantVY := (-2 + 0.02) * 0.98
	if math.Abs(e.VX-wantVX) > epsilon || math.Abs(e.VY-wantVY) > epsilon {
		t.Errorf("velocity = (%v, %v), want (%v, %v)", e.VX, e.VY, wantVX, wantVY)
	}
	if math.Abs(e.X-(10+wantVX)) > epsilon || math.Abs(e.Y-(20+wantVY)) > epsilon {
		t.Errorf("position = (%v, %v), want (%v, %v)", e.X, e.Y, 10+wantVX, 20+wantVY)
	}
	if e.Age != 1 {
		t.Errorf("age = %d, want 1", e.Age)
	}
}

func TestEntity_StepWithoutGravity(t *testing.T) {
	e := &Entity{VX: 0, VY: 0, Lifespan: 10}
	for i := 0; i < 5; i++ {
		e.Step(DefaultPhysics())
	}
	if e.X != 0 || e.Y != 0 {
		t.Errorf("gravity-free entity at rest moved to (%v, %v)", e.X, e.Y)
	}
}

func TestNewEntity_PolarVelocity(t *testing.T) {
	e := NewEntity(0, 0, math.Pi/2, 3, colorful.Color{R: 1}, 60, false)
	if math.Abs(e.VX) > epsilon || math.Abs(e.VY-3) > epsilon {
		t.Errorf("velocity = (%v, %v), want (0, 3)", e.VX, e.VY)
	}
	if e.Age != 0 || e.Lifespan != 60 || e.Gravity {
		t.Errorf("unexpected initial state: %+v", e)
	}
}

func TestEntity_Draw(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	rec.Trace = true

	e := &Entity{X: 5, Y: 6, Color: colorful.Color{R: 1, G: 0.5, B: 0}, Age: 20, Lifespan: 80}
	e.Draw(rec, 2)

	if rec.Circles != 1 {
		t.Fatalf("circles = %d, want 1", rec.Circles)
	}
	op := rec.Ops[0]
	if op.X != 5 || op.Y != 6 || op.R != 2 {
		t.Errorf("circle = (%v, %v, r=%v), want (5, 6, r=2)", op.X, op.Y, op.R)
	}
	if math.Abs(op.Alpha-0.75) > epsilon {
		t.Errorf("alpha = %v, want 0.75", op.Alpha)
	}

	// 完全透明的实体不绘制
	e.Age = 80
	e.Draw(rec, 2)
	if rec.Circles != 1 {
		t.Errorf("faded entity was drawn")
	}
}

func TestRandomInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := RandomInRange(rng, 1, 4)
		if v < 1 || v >= 4 {
			t.Fatalf("RandomInRange(1, 4) = %v out of range", v)
		}
		n := RandomIntInRange(rng, 45, 60)
		if n < 45 || n > 60 {
			t.Fatalf("RandomIntInRange(45, 60) = %d out of range", n)
		}
		a := RandomAngle(rng)
		if a < 0 || a >= 2*math.Pi {
			t.Fatalf("RandomAngle() = %v out of range", a)
		}
	}
	if got := RandomInRange(rng, 5, 5); got != 5 {
		t.Errorf("RandomInRange(5, 5) = %v, want 5", got)
	}
	if got := RandomIntInRange(rng, 7, 3); got != 7 {
		t.Errorf("RandomIntInRange(7, 3) = %v, want 7", got)
	}
}
