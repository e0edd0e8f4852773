package ximage

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/renderer"
)

// Engines understood by Renderer.
const (
	EngineOpenType = "opentype"
	EngineFreeType = "freetype"
)

// Renderer resolves FontSpecs with one of the x/image based engines.
type Renderer struct {
	Engine   string // EngineOpenType (default) or EngineFreeType
	BaseDir  string // 相对字体路径的基准目录
	Surfaces *renderer.SurfacePool

	mu sync.Mutex
	ot map[string]*sfnt.Font
	ft map[string]*truetype.Font
}

var _ renderer.Renderer = (*Renderer)(nil)

// New returns a renderer for engine; an empty engine means EngineOpenType.
func New(engine, baseDir string) (*Renderer, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	switch engine {
	case "":
		engine = EngineOpenType
	case EngineOpenType, EngineFreeType:
	default:
		return nil, fmt.Errorf("ximage: 不支持的字体引擎 %q", engine)
	}
	return &Renderer{Engine: engine, BaseDir: baseDir}, nil
}

// Face implements renderer.Renderer.
func (r *Renderer) Face(spec renderer.FontSpec) (renderer.Font, error) {
	if spec.Size <= 0 {
		return nil, fmt.Errorf("ximage: 字号必须为正数，得到 %d", spec.Size)
	}
	opts := Options{Color: spec.Color, Surfaces: r.Surfaces}
	size := float64(spec.Size)

	if r.Engine == EngineFreeType {
		f, err := r.freetype(spec.Src)
		if err != nil {
			return nil, err
		}
		opts.HasGlyph = func(c rune) bool { return f.Index(c) != 0 }
		return NewFace(truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		}), opts), nil
	}

	f, err := r.opentype(spec.Src)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("ximage: 创建字体面失败: %w", err)
	}
	opts.HasGlyph = sfntCoverage(f)
	return NewFace(face, opts), nil
}

func (r *Renderer) opentype(src string) (*sfnt.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.ot[src]; ok {
		return f, nil
	}
	data, err := fonts.ReadSource(src, r.BaseDir)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ximage: 解析字体 %s 失败: %w", src, err)
	}
	if r.ot == nil {
		r.ot = map[string]*sfnt.Font{}
	}
	r.ot[src] = f
	return f, nil
}

func (r *Renderer) freetype(src string) (*truetype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.ft[src]; ok {
		return f, nil
	}
	data, err := fonts.ReadSource(src, r.BaseDir)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ximage: 解析字体 %s 失败: %w", src, err)
	}
	if r.ft == nil {
		r.ft = map[string]*truetype.Font{}
	}
	r.ft[src] = f
	return f, nil
}
