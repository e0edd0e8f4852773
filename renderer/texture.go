package renderer

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"sync"
)

// MemoryTextures 是内存中的纹理表，代替真实渲染后端的纹理上传接口。
// 可并发使用。
type MemoryTextures struct {
	// Capacity 限制同时存活的纹理数量，0 表示不限。
	Capacity int
	// Logger 为 nil 时使用包级 Logger()。
	Logger *slog.Logger

	mu       sync.Mutex
	next     TextureHandle
	textures map[TextureHandle]*image.RGBA
	uploads  int
	destroys int
}

var _ TextureStore = (*MemoryTextures)(nil)

// NewMemoryTextures creates an empty store.
func NewMemoryTextures() *MemoryTextures {
	return &MemoryTextures{textures: map[TextureHandle]*image.RGBA{}}
}

// UploadTexture copies img into a new texture.
func (m *MemoryTextures) UploadTexture(img *image.RGBA) (TextureHandle, error) {
	if img == nil || img.Bounds().Empty() {
		return NoTexture, fmt.Errorf("%w: 纹理尺寸为空", ErrAllocationFailed)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.textures == nil {
		m.textures = map[TextureHandle]*image.RGBA{}
	}
	if m.Capacity > 0 && len(m.textures) >= m.Capacity {
		return NoTexture, fmt.Errorf("%w: 已有 %d 个纹理，超过上限", ErrAllocationFailed, len(m.textures))
	}

	b := img.Bounds()
	tex := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(tex, tex.Bounds(), img, b.Min, draw.Src)

	m.next++
	m.textures[m.next] = tex
	m.uploads++
	return m.next, nil
}

// DestroyTexture releases h. Unknown handles and NoTexture are ignored.
func (m *MemoryTextures) DestroyTexture(h TextureHandle) {
	if h == NoTexture {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.textures[h]; !ok {
		m.logger().Warn("destroy unknown texture", "handle", uint64(h))
		return
	}
	delete(m.textures, h)
	m.destroys++
}

func (m *MemoryTextures) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return Logger()
}

// Texture returns the pixels behind h. The image must not be modified.
func (m *MemoryTextures) Texture(h TextureHandle) (*image.RGBA, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tex, ok := m.textures[h]
	return tex, ok
}

// Live 返回当前存活的纹理数量。
func (m *MemoryTextures) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.textures)
}

// Stats returns how many uploads and destroys have happened.
func (m *MemoryTextures) Stats() (uploads, destroys int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads, m.destroys
}

// EncodePNG 将纹理编码为 PNG。NoTexture 编码为 1×1 透明图片。
func (m *MemoryTextures) EncodePNG(w io.Writer, h TextureHandle) error {
	if h == NoTexture {
		return png.Encode(w, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	}
	tex, ok := m.Texture(h)
	if !ok {
		return fmt.Errorf("renderer: 纹理 %d 不存在", h)
	}
	return png.Encode(w, tex)
}
