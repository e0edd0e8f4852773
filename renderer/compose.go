package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"github.com/ByLCY/scroll/layout"
)

// Limits applied when Compositor fields are zero.
const (
	DefaultMaxPixels    = 64 << 20
	DefaultMaxDimension = 16384
)

// TextBlock 是一次排版的完整结果：行序列、包围矩形以及独占的纹理。
// 纹理在下一次成功重排后即失效。
type TextBlock struct {
	Lines       []layout.LineSpan `json:"lines"`
	Bounds      image.Rectangle   `json:"bounds"`
	LineAdvance int               `json:"lineAdvance"`
	Texture     TextureHandle     `json:"texture"`
	// Degraded 记录光栅化失败、以空白代替的行号。
	Degraded []int `json:"degraded,omitempty"`
}

func (b *TextBlock) Width() int  { return b.Bounds.Dx() }
func (b *TextBlock) Height() int { return b.Bounds.Dy() }

// Release destroys the block's texture. The block keeps its geometry.
func (b *TextBlock) Release(store TextureStore) {
	if b == nil || b.Texture == NoTexture {
		return
	}
	store.DestroyTexture(b.Texture)
	b.Texture = NoTexture
}

// Result converts the block geometry into a layout snapshot.
func (b *TextBlock) Result(opts layout.Options) *layout.Result {
	return layout.NewResult(b.Lines, opts, b.LineAdvance)
}

// Compositor 把逐行光栅化的像素面拼成一张位图并上传为纹理。
type Compositor struct {
	Textures TextureStore

	// MaxPixels and MaxDimension bound the block bitmap; exceeding them
	// fails with ErrAllocationFailed.
	MaxPixels    int
	MaxDimension int

	Surfaces *SurfacePool
	Logger   *slog.Logger
}

// NewCompositor creates a compositor uploading into store.
func NewCompositor(store TextureStore) *Compositor {
	return &Compositor{Textures: store}
}

func (c *Compositor) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return Logger()
}

func (c *Compositor) surfaces() *SurfacePool {
	if c.Surfaces != nil {
		return c.Surfaces
	}
	return DefaultSurfaces
}

// Compose 光栅化 lines 并合成新的 TextBlock。
//
// 成功时 prev 持有的纹理会被销毁；失败时（ErrAllocationFailed）prev 保持不变。
// 单行光栅化失败不会中止合成，该行以空白代替并记入 Degraded。
func (c *Compositor) Compose(prev *TextBlock, lines []layout.LineSpan, font Font) (*TextBlock, error) {
	if font == nil {
		return nil, ErrNoFont
	}
	if c.Textures == nil {
		return nil, fmt.Errorf("%w: 未设置纹理后端", ErrAllocationFailed)
	}

	advance := font.LineAdvance()
	if advance < 0 {
		advance = 0
	}
	width := layout.MaxLineWidth(lines)
	height := advance * len(lines)
	if err := c.checkSize(width, height); err != nil {
		return nil, err
	}

	block := &TextBlock{
		Lines:       lines,
		Bounds:      image.Rect(0, 0, width, height),
		LineAdvance: advance,
	}

	if width > 0 && height > 0 {
		dst := c.surfaces().Get(width, height)
		defer dst.Release()

		for i, ln := range lines {
			if !c.drawLine(dst.Pix, i, ln, advance, font) {
				block.Degraded = append(block.Degraded, i)
			}
		}

		tex, err := c.Textures.UploadTexture(dst.Pix)
		if err != nil {
			return nil, fmt.Errorf("上传纹理失败 (%dx%d): %w", width, height, wrapAllocation(err))
		}
		block.Texture = tex
	}

	if prev != nil {
		prev.Release(c.Textures)
	}
	c.logger().Debug("text block composed",
		"lines", len(lines), "width", width, "height", height,
		"texture", uint64(block.Texture), "degraded", len(block.Degraded))
	return block, nil
}

// drawLine 把第 i 行复制到目标位图的对应行带内；返回 false 表示使用了空白代替。
func (c *Compositor) drawLine(dst *image.RGBA, i int, ln layout.LineSpan, advance int, font Font) bool {
	if ln.Text == "" {
		return true
	}
	surf, err := font.Rasterize(ln.Text)
	if err == nil && (surf == nil || surf.Pix == nil) {
		err = ErrRasterizationFailed
	}
	if err != nil {
		surf.Release()
		c.logger().Warn("rasterize failed, drawing blank line",
			"err", &RasterizeError{Line: i, Text: ln.Text, Err: err})
		surf = BlankSurface(advance)
	}
	defer surf.Release()

	top := i * advance
	band := image.Rect(0, top, dst.Bounds().Dx(), top+advance)
	r := image.Rect(0, top, surf.Width(), top+surf.Height()).Intersect(band)
	if !r.Empty() {
		draw.Draw(dst, r, surf.Pix, surf.Pix.Bounds().Min, draw.Src)
	}
	return err == nil
}

func (c *Compositor) checkSize(width, height int) error {
	maxDim := c.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	maxPix := c.MaxPixels
	if maxPix <= 0 {
		maxPix = DefaultMaxPixels
	}
	if width > maxDim || height > maxDim {
		return fmt.Errorf("%w: 位图 %dx%d 超过单边上限 %d", ErrAllocationFailed, width, height, maxDim)
	}
	if width*height > maxPix {
		return fmt.Errorf("%w: 位图 %dx%d 超过像素上限 %d", ErrAllocationFailed, width, height, maxPix)
	}
	return nil
}

func wrapAllocation(err error) error {
	if errors.Is(err, ErrAllocationFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAllocationFailed, err)
}
