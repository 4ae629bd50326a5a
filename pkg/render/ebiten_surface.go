package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// EbitenSurface implements Surface on a persistent offscreen ebiten.Image.
//
// The canvas is not cleared between frames, so the fade pass of the
// simulation produces trails. Call Present to copy it onto the screen.
//
// Fills are drawn as scaled white sprites tinted through ColorScale so every
// fill goes through DrawImageOptions.Blend.
type EbitenSurface struct {
	canvas *ebiten.Image
	pixel  *ebiten.Image             // 1x1 白色像素，用于矩形填充
	dots   map[float64]*ebiten.Image // radius -> 白色圆形精灵
	mode   CompositeMode
	alpha  float64
	fill   color.Color
}

// NewEbitenSurface creates a surface with the given canvas size.
func NewEbitenSurface(width, height int) *EbitenSurface {
	pixel := ebiten.NewImage(1, 1)
	pixel.Fill(color.White)

	return &EbitenSurface{
		canvas: ebiten.NewImage(max(width, 1), max(height, 1)),
		pixel:  pixel,
		dots:   make(map[float64]*ebiten.Image),
		mode:   CompositeNormal,
		alpha:  1,
		fill:   color.Black,
	}
}

// Resize replaces the canvas when the window size changes.
// The previous content is discarded.
func (s *EbitenSurface) Resize(width, height int) {
	b := s.canvas.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	s.canvas.Deallocate()
	s.canvas = ebiten.NewImage(max(width, 1), max(height, 1))
}

// Present draws the canvas onto dst (normally the ebiten screen).
func (s *EbitenSurface) Present(dst *ebiten.Image) {
	dst.DrawImage(s.canvas, nil)
}

// Size implements Surface.
func (s *EbitenSurface) Size() (float64, float64) {
	b := s.canvas.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Clear implements Surface.
func (s *EbitenSurface) Clear() {
	s.canvas.Clear()
}

// SetCompositeMode implements Surface.
func (s *EbitenSurface) SetCompositeMode(mode CompositeMode) {
	s.mode = mode
}

// SetGlobalAlpha implements Surface.
func (s *EbitenSurface) SetGlobalAlpha(alpha float64) {
	s.alpha = math.Max(0, math.Min(1, alpha))
}

// SetFillColor implements Surface.
func (s *EbitenSurface) SetFillColor(c color.Color) {
	s.fill = c
}

// FillRect implements Surface.
func (s *EbitenSurface) FillRect(x, y, width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	op := s.drawOptions()
	op.GeoM.Scale(width, height)
	op.GeoM.Translate(x, y)
	s.canvas.DrawImage(s.pixel, op)
}

// FillCircle implements Surface.
func (s *EbitenSurface) FillCircle(cx, cy, radius float64) {
	if radius <= 0 {
		return
	}
	dot := s.dot(radius)
	op := s.drawOptions()
	// 精灵四周留有 1px 边距，供抗锯齿使用
	op.GeoM.Translate(cx-radius-1, cy-radius-1)
	s.canvas.DrawImage(dot, op)
}

func (s *EbitenSurface) drawOptions() *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleWithColor(s.fill)
	op.ColorScale.ScaleAlpha(float32(s.alpha))
	op.Blend = s.blend()
	return op
}

func (s *EbitenSurface) blend() ebiten.Blend {
	switch s.mode {
	case CompositeAdditive:
		return ebiten.BlendLighter
	case CompositeSubtractive:
		return ebiten.BlendDestinationOut
	default:
		return ebiten.BlendSourceOver
	}
}

// dot returns a cached white circle sprite of the given radius.
func (s *EbitenSurface) dot(radius float64) *ebiten.Image {
	if img, ok := s.dots[radius]; ok {
		return img
	}
	size := int(math.Ceil(radius*2)) + 2
	img := ebiten.NewImage(size, size)
	vector.DrawFilledCircle(img, float32(radius+1), float32(radius+1), float32(radius), color.White, true)
	s.dots[radius] = img
	return img
}
