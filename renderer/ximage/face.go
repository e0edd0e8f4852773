// Package ximage implements renderer.Font on top of golang.org/x/image/font.
//
// Any font.Face can be wrapped with NewFace; OpenType and FreeType build one
// from TTF bytes with the x/image opentype engine or github.com/golang/freetype.
package ximage

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

// Options configures a Face. Zero values pick defaults.
type Options struct {
	Color color.Color // glyph color, default black
	// HasGlyph reports whether the font covers r. When nil, a rune is
	// considered missing only if the face reports !ok for its advance.
	HasGlyph func(r rune) bool
	// Fallback replaces missing runes. Default: U+FFFD if covered, else '?'.
	Fallback rune
	// LineAdvance overrides the advance computed from the font metrics.
	LineAdvance int
	Surfaces    *renderer.SurfacePool
}

// Face is a renderer.Font backed by a font.Face.
type Face struct {
	face     *fallbackFace
	col      *image.Uniform
	advance  int
	baseline fixed.Int26_6
	surfaces *renderer.SurfacePool
}

var _ renderer.Font = (*Face)(nil)

// NewFace wraps face.
func NewFace(face font.Face, opts Options) *Face {
	ff := newFallbackFace(face, opts.HasGlyph, opts.Fallback)

	m := face.Metrics()
	lineHeight := max(m.Ascent+m.Descent, m.Height)
	baseline := min(m.Ascent, lineHeight-m.Descent)

	col := opts.Color
	if col == nil {
		col = color.Black
	}
	f := &Face{
		face:     ff,
		col:      image.NewUniform(col),
		advance:  lineHeight.Ceil(),
		baseline: baseline,
		surfaces: opts.Surfaces,
	}
	if opts.LineAdvance > 0 {
		f.advance = opts.LineAdvance
	}
	if f.surfaces == nil {
		f.surfaces = renderer.DefaultSurfaces
	}
	return f
}

// OpenType parses ttf with golang.org/x/image/font/opentype. sizePx is the
// em size in pixels.
func OpenType(ttf []byte, sizePx float64, opts Options) (*Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("ximage: 解析字体失败: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72, // 72 DPI 下 1pt == 1px
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("ximage: 创建字体面失败: %w", err)
	}
	if opts.HasGlyph == nil {
		opts.HasGlyph = sfntCoverage(f)
	}
	return NewFace(face, opts), nil
}

// FreeType parses ttf with github.com/golang/freetype/truetype.
func FreeType(ttf []byte, sizePx float64, opts Options) (*Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("ximage: 解析字体失败: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if opts.HasGlyph == nil {
		opts.HasGlyph = func(r rune) bool { return f.Index(r) != 0 }
	}
	return NewFace(face, opts), nil
}

func sfntCoverage(f *sfnt.Font) func(rune) bool {
	var (
		mu  sync.Mutex
		buf sfnt.Buffer
	)
	return func(r rune) bool {
		mu.Lock()
		defer mu.Unlock()
		x, err := f.GlyphIndex(&buf, r)
		return err == nil && x != 0
	}
}

// Measure returns the advance width of s in whole pixels, rounded up.
func (f *Face) Measure(s string) int {
	if s == "" {
		return 0
	}
	return font.MeasureString(f.face, s).Ceil()
}

func (f *Face) LineAdvance() int { return f.advance }

// Fallback returns the rune drawn in place of missing glyphs.
func (f *Face) Fallback() rune { return f.face.fallback }

// Rasterize draws s onto a transparent Measure(s)×LineAdvance() surface.
func (f *Face) Rasterize(s string) (*renderer.Surface, error) {
	w := f.Measure(s)
	if w > renderer.DefaultMaxDimension {
		return nil, fmt.Errorf("%w: 行宽 %d 超过上限", renderer.ErrRasterizationFailed, w)
	}
	surf := f.surfaces.Get(w, f.advance)
	d := font.Drawer{
		Dst:  surf.Pix,
		Src:  f.col,
		Face: f.face,
		Dot:  fixed.Point26_6{Y: f.baseline},
	}
	d.DrawString(s)
	return surf, nil
}

// Close releases the underlying face.
func (f *Face) Close() error { return f.face.Close() }

// fallbackFace 把缺失字形与控制字符替换为备用字形，并缓存字形宽度。
type fallbackFace struct {
	font.Face
	has      func(rune) bool
	fallback rune

	mu       sync.RWMutex
	advances map[rune]fixed.Int26_6
}

func newFallbackFace(face font.Face, has func(rune) bool, fallback rune) *fallbackFace {
	ff := &fallbackFace{
		Face:     face,
		has:      has,
		advances: map[rune]fixed.Int26_6{},
	}
	if fallback == 0 {
		fallback = '?'
		if has == nil || has('\uFFFD') {
			fallback = '\uFFFD'
		}
	}
	ff.fallback = fallback
	return ff
}

func (ff *fallbackFace) resolve(r rune) rune {
	if r < 0x20 || r == 0x7f {
		return ff.fallback
	}
	if ff.has != nil && !ff.has(r) {
		return ff.fallback
	}
	return r
}

func (ff *fallbackFace) Glyph(dot fixed.Point26_6, r rune) (
	dr image.Rectangle,
	mask image.Image,
	maskp image.Point,
	advance fixed.Int26_6,
	ok bool,
) {
	dr, mask, maskp, _, ok = ff.Face.Glyph(dot, ff.resolve(r))
	advance, _ = ff.GlyphAdvance(r)
	return dr, mask, maskp, advance, ok
}

func (ff *fallbackFace) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	bounds, _, ok = ff.Face.GlyphBounds(ff.resolve(r))
	advance, _ = ff.GlyphAdvance(r)
	return bounds, advance, ok
}

func (ff *fallbackFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	ff.mu.RLock()
	adv, ok := ff.advances[r]
	ff.mu.RUnlock()
	if ok {
		return adv, true
	}

	ru := ff.resolve(r)
	adv, ok = ff.Face.GlyphAdvance(ru)
	if !ok && ru != ff.fallback {
		ru = ff.fallback
		adv, _ = ff.Face.GlyphAdvance(ru)
	}
	if ru != r {
		renderer.Logger().Debug("glyph missing, using fallback",
			"rune", string(r), "fallback", string(ru), "err", layout.ErrMeasurementUnavailable)
	}

	ff.mu.Lock()
	ff.advances[r] = adv
	ff.mu.Unlock()
	return adv, true
}

func (ff *fallbackFace) Kern(r0, r1 rune) fixed.Int26_6 {
	return ff.Face.Kern(ff.resolve(r0), ff.resolve(r1))
}
