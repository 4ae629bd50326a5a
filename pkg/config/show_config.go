package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ShowConfig 烟花秀配置
//
// 生成间隔、粒子数量、图像粒子寿命等调参常量都在这里配置，
// 代码中不写死。
//
// 配置文件位置: data/show.yaml（嵌入二进制，可通过 --config 覆盖）
type ShowConfig struct {
	Window  WindowConfig  `yaml:"window"`
	Physics PhysicsConfig `yaml:"physics"`

	// TrailFadeAlpha 每帧拖尾淡出的 destination-out 不透明度
	TrailFadeAlpha float64 `yaml:"trailFadeAlpha"`
	// ParticleRadius 粒子绘制半径（像素）
	ParticleRadius float64 `yaml:"particleRadius"`

	Ambient AmbientConfig  `yaml:"ambient"`
	Image   ImageConfig    `yaml:"image"`
	Show    SequenceConfig `yaml:"show"`
}

// WindowConfig 窗口配置
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// PhysicsConfig 物理常量（每帧）
type PhysicsConfig struct {
	Gravity float64 `yaml:"gravity"`
	Drag    float64 `yaml:"drag"`
}

// IntRange 闭区间整数范围
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange 浮点范围
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// AmbientConfig 背景烟花配置
type AmbientConfig struct {
	// SpawnIntervalMs 两次生成之间的间隔（毫秒），每次生成后在范围内重新随机
	SpawnIntervalMs IntRange `yaml:"spawnIntervalMs"`
	// RiseSpeed 上升阶段每帧上升的像素数
	RiseSpeed float64 `yaml:"riseSpeed"`
	// OriginX 发射点 X 占表面宽度的比例范围
	OriginX FloatRange `yaml:"originX"`
	// TargetY 爆炸高度占表面高度的比例范围
	TargetY FloatRange `yaml:"targetY"`

	ParticleCount    IntRange   `yaml:"particleCount"`
	ParticleSpeed    FloatRange `yaml:"particleSpeed"`
	ParticleLifespan int        `yaml:"particleLifespan"`

	// Saturation/Lightness HSL 颜色的固定饱和度和亮度，色相每个烟花随机
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
}

// ImageConfig 图像粒子配置
type ImageConfig struct {
	Gap            int        `yaml:"gap"`
	AlphaThreshold int        `yaml:"alphaThreshold"`
	Scale          float64    `yaml:"scale"`
	Lifespan       IntRange   `yaml:"lifespan"`
	DriftSpeed     FloatRange `yaml:"driftSpeed"`
	// DecodeTimeoutMs 单张图像解码超时（毫秒），0 表示不限
	DecodeTimeoutMs int `yaml:"decodeTimeoutMs"`
}

// SequenceConfig 图像序列配置
type SequenceConfig struct {
	// AdvanceIntervalMs 两张图像之间的间隔（毫秒）
	AdvanceIntervalMs int `yaml:"advanceIntervalMs"`
	// ImageRoot 图像路径的根目录
	ImageRoot string `yaml:"imageRoot"`
	// Images 按顺序播放的图像路径（相对 ImageRoot）
	Images []string `yaml:"images"`
}

// DefaultShowConfig 返回默认配置
func DefaultShowConfig() *ShowConfig {
	return &ShowConfig{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Fireshow",
		},
		Physics: PhysicsConfig{
			Gravity: 0.02,
			Drag:    0.98,
		},
		TrailFadeAlpha: 0.25,
		ParticleRadius: 2,
		Ambient: AmbientConfig{
			SpawnIntervalMs:  IntRange{Min: 200, Max: 400},
			RiseSpeed:        4,
			OriginX:          FloatRange{Min: 0.2, Max: 0.8},
			TargetY:          FloatRange{Min: 0.2, Max: 0.45},
			ParticleCount:    IntRange{Min: 45, Max: 60},
			ParticleSpeed:    FloatRange{Min: 1, Max: 4},
			ParticleLifespan: 80,
			Saturation:       1.0,
			Lightness:        0.6,
		},
		Image: ImageConfig{
			Gap:             7,
			AlphaThreshold:  128,
			Scale:           0.6,
			Lifespan:        IntRange{Min: 600, Max: 600},
			DriftSpeed:      FloatRange{Min: 0.1, Max: 0.6},
			DecodeTimeoutMs: 10000,
		},
		Show: SequenceConfig{
			AdvanceIntervalMs: 20000,
			ImageRoot:         "assets/images",
		},
	}
}

// LoadShowConfig 从文件加载配置
//
// 参数:
//   - path: 配置文件路径（如 "data/show.yaml"）
//
// 返回:
//   - *ShowConfig: 默认值之上叠加文件内容后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadShowConfig(path string) (*ShowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read show config: %w", err)
	}
	return ParseShowConfig(data)
}

// ParseShowConfig 解析 YAML 配置
//
// 先填充默认值再反序列化，文件中未出现的字段保留默认值。
func ParseShowConfig(data []byte) (*ShowConfig, error) {
	config := DefaultShowConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse show config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid show config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
func (c *ShowConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Physics.Drag <= 0 || c.Physics.Drag > 1 {
		return fmt.Errorf("physics drag must be in (0, 1], got %.3f", c.Physics.Drag)
	}
	if c.TrailFadeAlpha < 0 || c.TrailFadeAlpha > 1 {
		return fmt.Errorf("trailFadeAlpha must be in [0, 1], got %.3f", c.TrailFadeAlpha)
	}
	if c.ParticleRadius <= 0 {
		return fmt.Errorf("particleRadius must be positive, got %.1f", c.ParticleRadius)
	}

	a := c.Ambient
	if err := checkIntRange("ambient.spawnIntervalMs", a.SpawnIntervalMs, 1); err != nil {
		return err
	}
	if a.RiseSpeed <= 0 {
		return fmt.Errorf("ambient.riseSpeed must be positive, got %.1f", a.RiseSpeed)
	}
	if err := checkFraction("ambient.originX", a.OriginX); err != nil {
		return err
	}
	if err := checkFraction("ambient.targetY", a.TargetY); err != nil {
		return err
	}
	if err := checkIntRange("ambient.particleCount", a.ParticleCount, 0); err != nil {
		return err
	}
	if err := checkFloatRange("ambient.particleSpeed", a.ParticleSpeed); err != nil {
		return err
	}
	if a.ParticleLifespan <= 0 {
		return fmt.Errorf("ambient.particleLifespan must be positive, got %d", a.ParticleLifespan)
	}

	img := c.Image
	if img.Gap <= 0 {
		return fmt.Errorf("image.gap must be positive, got %d", img.Gap)
	}
	if img.AlphaThreshold < 0 || img.AlphaThreshold > 255 {
		return fmt.Errorf("image.alphaThreshold must be in [0, 255], got %d", img.AlphaThreshold)
	}
	if img.Scale <= 0 {
		return fmt.Errorf("image.scale must be positive, got %.2f", img.Scale)
	}
	if err := checkIntRange("image.lifespan", img.Lifespan, 1); err != nil {
		return err
	}
	if err := checkFloatRange("image.driftSpeed", img.DriftSpeed); err != nil {
		return err
	}
	if img.DecodeTimeoutMs < 0 {
		return fmt.Errorf("image.decodeTimeoutMs must not be negative, got %d", img.DecodeTimeoutMs)
	}

	if c.Show.AdvanceIntervalMs <= 0 {
		return fmt.Errorf("show.advanceIntervalMs must be positive, got %d", c.Show.AdvanceIntervalMs)
	}

	return nil
}

// AdvanceInterval 返回图像切换间隔
func (c *ShowConfig) AdvanceInterval() time.Duration {
	return time.Duration(c.Show.AdvanceIntervalMs) * time.Millisecond
}

// DecodeTimeout 返回解码超时，0 表示不限
func (c *ShowConfig) DecodeTimeout() time.Duration {
	return time.Duration(c.Image.DecodeTimeoutMs) * time.Millisecond
}

func checkIntRange(name string, r IntRange, lowest int) error {
	if r.Min < lowest {
		return fmt.Errorf("%s min must be >= %d, got %d", name, lowest, r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s range invalid: min(%d) > max(%d)", name, r.Min, r.Max)
	}
	return nil
}

func checkFloatRange(name string, r FloatRange) error {
	if r.Min < 0 {
		return fmt.Errorf("%s min must not be negative, got %.2f", name, r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s range invalid: min(%.2f) > max(%.2f)", name, r.Min, r.Max)
	}
	return nil
}

func checkFraction(name string, r FloatRange) error {
	if err := checkFloatRange(name, r); err != nil {
		return err
	}
	if r.Max > 1 {
		return fmt.Errorf("%s must be a fraction of the surface, got max %.2f", name, r.Max)
	}
	return nil
}
