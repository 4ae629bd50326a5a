package game

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"log"
	"path"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// FSImageLoader decodes images from a file system and caches the results.
//
// Paths are slash-separated and relative to the root of fsys. Decoded images
// are cached by path and reused on replay.
//
// Thread Safety Note:
// Load is called from worker goroutines; the cache is guarded by a mutex.
// Two concurrent loads of the same uncached path may both decode it; the
// second result simply overwrites the first.
//
// Usage:
//
//	loader := NewFSImageLoader(os.DirFS("assets/images"))
//	img, err := loader.Load(ctx, "heart.png")
type FSImageLoader struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewFSImageLoader creates a loader reading from fsys.
func NewFSImageLoader(fsys fs.FS) *FSImageLoader {
	return &FSImageLoader{
		fsys:  fsys,
		cache: make(map[string]image.Image),
	}
}

// Load implements systems.ImageLoader.
//
// Error handling:
//   - Returns ctx.Err() if the context is done before or right after decoding.
//   - Returns an error if the file does not exist or cannot be opened.
//   - Returns an error if the format is not supported or the file is corrupted.
func (l *FSImageLoader) Load(ctx context.Context, name string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = path.Clean(name)
	l.mu.Lock()
	cached, ok := l.cache[name]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	file, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", name, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}

	// image.Decode 不支持取消，解码完成后再检查一次
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = img
	l.mu.Unlock()

	b := img.Bounds()
	log.Printf("[ImageLoader] 解码完成: %s (%s, %dx%d)", name, format, b.Dx(), b.Dy())
	return img, nil
}

// Cached reports whether name has been decoded already.
func (l *FSImageLoader) Cached(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[path.Clean(name)]
	return ok
}
