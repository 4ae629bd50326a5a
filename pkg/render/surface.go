// Package render 定义烟花秀使用的绘图表面抽象
//
// 模拟层只通过 Surface 接口绘制，不直接依赖 Ebitengine。
// 桌面端使用 EbitenSurface，无头模式和测试使用 Recorder。
package render

import "image/color"

// CompositeMode 合成模式
type CompositeMode int

const (
	// CompositeNormal 普通 source-over 混合
	CompositeNormal CompositeMode = iota
	// CompositeAdditive 加色混合（lighter），粒子重叠处变亮
	CompositeAdditive
	// CompositeSubtractive destination-out，用于拖尾淡出
	CompositeSubtractive
)

// String returns the mode name used in logs.
func (m CompositeMode) String() string {
	switch m {
	case CompositeNormal:
		return "normal"
	case CompositeAdditive:
		return "additive"
	case CompositeSubtractive:
		return "subtractive"
	default:
		return "unknown"
	}
}

// Surface is the drawing capability the simulation consumes.
//
// It is stateful in the manner of a 2D canvas context: composite mode, global
// alpha and fill colour persist until changed and apply to subsequent fills.
// Implementations never fail; an unavailable surface is the host's problem.
type Surface interface {
	// Size returns the logical surface size in pixels.
	Size() (width, height float64)

	// Clear erases the whole surface to transparent.
	Clear()

	SetCompositeMode(mode CompositeMode)
	SetGlobalAlpha(alpha float64)
	SetFillColor(c color.Color)

	FillRect(x, y, width, height float64)
	FillCircle(cx, cy, radius float64)
}
