package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

// 画布单位按像素处理：1mm 画布单位 == 1px。
var resolution = canvas.DPMM(1)

// Renderer resolves fonts via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by unique name

	Surfaces *renderer.SurfacePool

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *fontFamilyEntry
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
	covers func(rune) bool
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via builtin:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving fonts.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时在使用处报错
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// Face implements renderer.Renderer. spec.Size is in pixels.
func (r *Renderer) Face(spec renderer.FontSpec) (renderer.Font, error) {
	return r.FontFace(spec)
}

// FontFace is Face with the concrete type.
func (r *Renderer) FontFace(spec renderer.FontSpec) (*Face, error) {
	if spec.Size <= 0 {
		return nil, fmt.Errorf("canvas: 字号必须为正数，得到 %d", spec.Size)
	}
	entry, err := r.ensureFontFamily(spec)
	if err != nil {
		return nil, err
	}
	col := spec.Color
	if col == nil {
		col = color.Black
	}
	// 1px == 1mm，字体系统使用 pt
	face := entry.family.Face(float64(spec.Size)*layout.MmToPt, col, entry.style, canvas.FontNormal)
	m := face.Metrics()
	advance := int(math.Ceil(m.LineHeight))
	if advance <= 0 {
		advance = spec.Size
	}
	f := &Face{
		face:     face,
		covers:   entry.covers,
		advance:  advance,
		ascent:   m.Ascent,
		surfaces: r.Surfaces,
	}
	if f.surfaces == nil {
		f.surfaces = renderer.DefaultSurfaces
	}
	return f, nil
}

func (r *Renderer) ensureFontFamily(spec renderer.FontSpec) (*fontFamilyEntry, error) {
	key := fontCacheKey(spec)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry, nil
	}

	style := parseFontStyle(spec.Style)
	familyName := spec.Name
	if familyName == "" {
		familyName = "Body"
	}
	entry, err := r.loadFamily(familyName, spec.Src, style)
	if err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, err
		}
		renderer.Logger().Warn("font load failed, using fallback family", "src", spec.Src, "err", err)
		r.fontFamilies[key] = fallback
		return fallback, nil
	}
	r.fontFamilies[key] = entry
	return entry, nil
}

func (r *Renderer) loadFamily(name, src string, style canvas.FontStyle) (*fontFamilyEntry, error) {
	data, err := r.loadFontBytes(src)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, fmt.Errorf("canvas: 加载字体 %s 失败: %w", src, err)
	}
	return &fontFamilyEntry{family: family, style: style, covers: coverage(data)}, nil
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if fonts.IsBuiltin(src) {
		name := src[strings.IndexByte(src, ':')+1:]
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
	}
	return fonts.ReadSource(src, r.baseDir)
}

// fallback 需在持有 fontMu 时调用。
func (r *Renderer) fallback() (*fontFamilyEntry, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	entry, err := r.loadFamily("scroll-fallback", "builtin:"+fonts.Default, canvas.FontRegular)
	if err != nil {
		return nil, err
	}
	r.fallbackFamily = entry
	return entry, nil
}

// coverage 用 x/image 的 sfnt 解析同一份字体数据来判断字形是否存在。
func coverage(data []byte) func(rune) bool {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil
	}
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

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") || strings.Contains(style, "I") {
		result |= canvas.FontItalic
	}
	if strings.Contains(style, "B") && !strings.Contains(s, "bold") {
		result = canvas.FontBold | (result & canvas.FontItalic)
	}
	return result
}

func fontCacheKey(spec renderer.FontSpec) string {
	return fmt.Sprintf("%s|%s|%s", spec.Name, spec.Src, spec.Style)
}

// Face is a renderer.Font drawn with canvas.
type Face struct {
	face     *canvas.FontFace
	covers   func(rune) bool
	advance  int
	ascent   float64
	surfaces *renderer.SurfacePool
}

var _ renderer.Font = (*Face)(nil)

// Fallback is drawn for code points the font does not cover.
const Fallback = '?'

// substitute 替换字体未覆盖的字符与控制字符。
func (f *Face) substitute(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return Fallback
		}
		if f.covers != nil && !f.covers(r) {
			return Fallback
		}
		return r
	}, s)
}

// Measure returns the advance width of s rounded up to whole pixels.
func (f *Face) Measure(s string) int {
	if s == "" {
		return 0
	}
	return int(math.Ceil(f.face.TextWidth(f.substitute(s))))
}

func (f *Face) LineAdvance() int { return f.advance }

// Rasterize draws s onto a transparent Measure(s)×LineAdvance() surface.
func (f *Face) Rasterize(s string) (*renderer.Surface, error) {
	w := f.Measure(s)
	if w > renderer.DefaultMaxDimension {
		return nil, fmt.Errorf("%w: 行宽 %d 超过上限", renderer.ErrRasterizationFailed, w)
	}
	surf := f.surfaces.Get(w, f.advance)
	if w == 0 || f.advance == 0 {
		return surf, nil
	}

	c := canvas.New(float64(w), float64(f.advance))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点
	ctx.DrawText(0, f.ascent, canvas.NewTextLine(f.face, f.substitute(s), canvas.Left))

	img := rasterizer.Draw(c, resolution, canvas.DefaultColorSpace)
	if img == nil {
		surf.Release()
		return nil, fmt.Errorf("%w: canvas 未返回位图", renderer.ErrRasterizationFailed)
	}
	draw.Draw(surf.Pix, surf.Pix.Bounds(), img, image.Point{}, draw.Src)
	return surf, nil
}
