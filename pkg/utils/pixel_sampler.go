package utils

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// 采样默认值
const (
	DefaultSampleGap      = 7
	DefaultAlphaThreshold = 128
	DefaultSampleScale    = 0.6
)

// Seed 一个采样点：屏幕坐标 + 像素颜色
type Seed struct {
	X, Y  float64
	Color colorful.Color
}

// SampleOptions 像素采样参数
type SampleOptions struct {
	// Gap 采样步长（像素），x/y 两个方向都按此步长跳跃
	Gap int
	// AlphaThreshold 不透明度阈值（0-255），alpha 严格大于该值的像素才会产生种子
	AlphaThreshold uint8
	// Scale 图像坐标到屏幕坐标的缩放
	Scale float64
	// OffsetX/OffsetY 屏幕上的基准偏移（通常由 CenterOffset 计算）
	OffsetX, OffsetY float64
}

// DefaultSampleOptions 返回默认采样参数（步长 7，阈值 128，缩放 0.6，无偏移）
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{
		Gap:            DefaultSampleGap,
		AlphaThreshold: DefaultAlphaThreshold,
		Scale:          DefaultSampleScale,
	}
}

// CenterOffset 计算使缩放后的图像在表面上居中的基准偏移
//
// 示例:
//
//	CenterOffset(800, 600, 200, 100, 0.5) = (350, 275)
func CenterOffset(surfaceW, surfaceH float64, imgW, imgH int, scale float64) (float64, float64) {
	return surfaceW/2 - float64(imgW)*scale/2, surfaceH/2 - float64(imgH)*scale/2
}

// SamplePixels converts an image into seeds.
//
// Grid positions at multiples of Gap (relative to the image's min point) are
// visited in row-major order. A seed is emitted for each visited pixel whose
// non-premultiplied alpha exceeds AlphaThreshold, positioned at
// Offset + (x, y) * Scale and coloured with the pixel's RGB.
//
// An image with no pixel above the threshold yields an empty slice.
func SamplePixels(img image.Image, opts SampleOptions) []Seed {
	if img == nil {
		return nil
	}
	gap := opts.Gap
	if gap <= 0 {
		gap = 1
	}

	b := img.Bounds()
	cols := (b.Dx() + gap - 1) / gap
	rows := (b.Dy() + gap - 1) / gap
	seeds := make([]Seed, 0, max(cols*rows/2, 0))

	for y := 0; y < b.Dy(); y += gap {
		for x := 0; x < b.Dx(); x += gap {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A <= opts.AlphaThreshold {
				continue
			}
			seeds = append(seeds, Seed{
				X: opts.OffsetX + float64(x)*opts.Scale,
				Y: opts.OffsetY + float64(y)*opts.Scale,
				Color: colorful.Color{
					R: float64(c.R) / 255,
					G: float64(c.G) / 255,
					B: float64(c.B) / 255,
				},
			})
		}
	}

	return seeds
}
