package game

import (
	"context"
	"log"
	"time"

	"github.com/decker502/fireshow/internal/particle"
	"github.com/decker502/fireshow/pkg/render"
	"github.com/decker502/fireshow/pkg/systems"
)

// SchedulerOptions 调度器的依赖和参数
type SchedulerOptions struct {
	Clock      Clock
	Surface    render.Surface
	Simulation *systems.Simulation
	Pipeline   *systems.ImagePipeline

	// Images 按顺序播放的图像路径
	Images []string
	// Interval 两次图像切换之间的间隔
	Interval time.Duration
	// Scale 图像缩放
	Scale float64

	// OnShowEnded 图像序列播放完毕时调用（每个会话一次）
	OnShowEnded func()
	// OnShowReset 调用 Reset 后触发
	OnShowReset func()
}

// Scheduler owns one show session: the frame loop driving the simulation and
// the repeating advance timer stepping through the image sequence.
//
// Everything runs on the host's frame thread. Tick is the frame callback; the
// advance timer is a deadline checked by Tick, so timer callbacks never run
// concurrently with a frame. Image decodes complete on worker goroutines and
// are picked up by Tick through the pipeline.
//
// Every ignite carries the session generation. Reset bumps the generation and
// cancels the session context, so a decode finishing after a reset is dropped.
type Scheduler struct {
	clock    Clock
	surface  render.Surface
	sim      *systems.Simulation
	pipeline *systems.ImagePipeline

	images   []string
	interval time.Duration
	scale    float64

	onShowEnded func()
	onShowReset func()

	ctx    context.Context
	cancel context.CancelFunc

	generation  uint64
	index       int
	stopped     bool
	ended       bool
	timerArmed  bool
	nextAdvance time.Time
	started     bool
}

// NewScheduler creates a scheduler. Call Start to begin the show.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:       clock,
		surface:     opts.Surface,
		sim:         opts.Simulation,
		pipeline:    opts.Pipeline,
		images:      opts.Images,
		interval:    opts.Interval,
		scale:       opts.Scale,
		onShowEnded: opts.OnShowEnded,
		onShowReset: opts.OnShowReset,
		index:       -1,
		stopped:     true,
	}
}

// Start begins the first session. It behaves like Reset without emitting
// the showReset signal. Calling Start on a running scheduler resets it.
func (s *Scheduler) Start() {
	s.restart()
	log.Printf("[Scheduler] 开始播放: %d 张图像, 间隔 %v", len(s.images), s.interval)
}

// Reset discards the current session and starts a new one: the advance timer
// and in-flight decodes are cancelled, both entity collections are emptied,
// the surface is cleared, the frame loop restarts and the first image is
// ignited immediately.
func (s *Scheduler) Reset() {
	s.restart()
	log.Printf("[Scheduler] 重置: generation=%d", s.generation)
	if s.onShowReset != nil {
		s.onShowReset()
	}
}

// restart performs the reset sequence shared by Start and Reset.
func (s *Scheduler) restart() {
	s.cancelSession()

	s.generation++
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.pipeline.Discard()

	s.stopped = false
	s.ended = false
	s.index = -1
	s.sim.Reset()
	s.surface.Clear()
	s.started = true

	s.Advance()
	if !s.ended {
		s.timerArmed = true
		s.nextAdvance = s.clock.Now().Add(s.interval)
	}
}

// Stop ends the session for good, e.g. on shutdown. The frame loop stops,
// the timer is disarmed and in-flight decodes are cancelled.
func (s *Scheduler) Stop() {
	s.cancelSession()
	s.stopped = true
	s.timerArmed = false
}

func (s *Scheduler) cancelSession() {
	s.timerArmed = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Advance moves to the next image in the sequence and ignites it. Once the
// sequence is exhausted it emits showEnded (once), stops the frame loop and
// cancels the advance timer; later calls do nothing until Reset.
func (s *Scheduler) Advance() {
	if s.ended || !s.started {
		return
	}

	s.index++
	if s.index < len(s.images) {
		path := s.images[s.index]
		w, h := s.surface.Size()
		log.Printf("[Scheduler] 切换图像 %d/%d: %s", s.index+1, len(s.images), path)
		s.pipeline.Ignite(s.ctx, s.generation, path, s.scale, w, h)
		return
	}

	s.end()
}

func (s *Scheduler) end() {
	s.ended = true
	s.stopped = true
	s.cancelSession()
	log.Printf("[Scheduler] 播放结束")
	if s.onShowEnded != nil {
		s.onShowEnded()
	}
}

// Tick is the frame callback. It picks up finished decodes, fires the
// advance timer when due and, unless stopped, steps the simulation once.
func (s *Scheduler) Tick() {
	now := s.clock.Now()

	if s.started {
		s.pipeline.Drain(s.generation, s.sim.Rand(), s.addImageEntities)
	}

	if s.timerArmed && !now.Before(s.nextAdvance) {
		s.nextAdvance = s.nextAdvance.Add(s.interval)
		s.Advance()
	}

	if !s.stopped {
		s.sim.Step(now)
	}
}

func (s *Scheduler) addImageEntities(entities []*particle.Entity) {
	s.sim.AddImageEntities(entities)
}

// Index returns the position of the most recently advanced image, -1 before
// the first advance of a session.
func (s *Scheduler) Index() int {
	return s.index
}

// Generation returns the current session generation.
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

// Stopped reports whether the frame loop is halted.
func (s *Scheduler) Stopped() bool {
	return s.stopped
}

// Ended reports whether the image sequence has been exhausted.
func (s *Scheduler) Ended() bool {
	return s.ended
}

// TimerArmed reports whether the advance timer is active.
func (s *Scheduler) TimerArmed() bool {
	return s.timerArmed
}

// NextAdvance returns when the advance timer fires next. Only meaningful
// while TimerArmed is true.
func (s *Scheduler) NextAdvance() time.Time {
	return s.nextAdvance
}

// Simulation returns the simulation driven by the scheduler.
func (s *Scheduler) Simulation() *systems.Simulation {
	return s.sim
}
