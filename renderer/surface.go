package renderer

import (
	"image"
	"sync"
)

// Surface 是一次光栅化得到的像素面，只在一次合成过程内有效。
// 像素布局固定为 image.RGBA（每通道 8 位，R G B A 顺序）。
type Surface struct {
	Pix     *image.RGBA
	release func(*image.RGBA)
	done    bool
}

// NewSurface wraps img; release (may be nil) runs once on Release.
func NewSurface(img *image.RGBA, release func(*image.RGBA)) *Surface {
	return &Surface{Pix: img, release: release}
}

// BlankSurface 返回零宽的空白面，用于光栅化失败时占位。
func BlankSurface(height int) *Surface {
	if height < 0 {
		height = 0
	}
	return NewSurface(image.NewRGBA(image.Rect(0, 0, 0, height)), nil)
}

func (s *Surface) Width() int {
	if s == nil || s.Pix == nil {
		return 0
	}
	return s.Pix.Bounds().Dx()
}

func (s *Surface) Height() int {
	if s == nil || s.Pix == nil {
		return 0
	}
	return s.Pix.Bounds().Dy()
}

// Release returns the pixels to their owner. Safe to call more than once.
func (s *Surface) Release() {
	if s == nil || s.done {
		return
	}
	s.done = true
	if s.release != nil && s.Pix != nil {
		s.release(s.Pix)
	}
	s.Pix = nil
}

// Released reports whether Release has been called.
func (s *Surface) Released() bool { return s != nil && s.done }

// SurfacePool recycles pixel buffers between layout passes.
//
// Usage:
//
//	pool := NewSurfacePool()
//	surf := pool.Get(w, h)
//	defer surf.Release()
type SurfacePool struct {
	pool sync.Pool
}

// NewSurfacePool creates an empty pool.
func NewSurfacePool() *SurfacePool {
	return &SurfacePool{}
}

// Get returns a fully transparent w×h surface whose Release puts the buffer back.
func (p *SurfacePool) Get(w, h int) *Surface {
	return NewSurface(p.Image(w, h), p.Put)
}

// Image returns a cleared w×h RGBA image backed by a pooled buffer when possible.
func (p *SurfacePool) Image(w, h int) *image.RGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := 4 * w * h
	var buf []byte
	if v, ok := p.pool.Get().(*[]byte); ok && cap(*v) >= n {
		buf = (*v)[:n]
		clear(buf)
	} else {
		buf = make([]byte, n)
	}
	return &image.RGBA{Pix: buf, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
}

// Put hands img's buffer back to the pool.
func (p *SurfacePool) Put(img *image.RGBA) {
	if img == nil || cap(img.Pix) == 0 {
		return
	}
	buf := img.Pix[:0]
	p.pool.Put(&buf)
}

// DefaultSurfaces is shared by the bundled font backends.
var DefaultSurfaces = NewSurfacePool()
