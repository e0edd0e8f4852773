// Package textarea 把文本缓冲、换行与合成器组合成一个可编辑的文本区。
//
// 每次修改都会同步执行一次完整的重排；重排失败时修改本身被回滚，
// 调用方看到的始终是上一次成功的 TextBlock。
package textarea

import (
	"errors"
	"image"
	"log/slog"
	"strings"

	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
)

// DefaultTabWidth is the number of spaces AppendTab inserts.
const DefaultTabWidth = 3

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("textarea: closed")

// Options configures a TextArea.
type Options struct {
	WrapWidth int             // 折行宽度（像素），<= 0 时只在显式换行处断行
	Wrap      layout.WrapMode // 折行策略
	TabWidth  int             // 0 表示 DefaultTabWidth
	MaxPixels int             // 合成位图的像素上限，0 表示默认值
	Logger    *slog.Logger
}

// TextArea owns a text buffer, the bound font and the current TextBlock.
// It is not safe for concurrent use.
type TextArea struct {
	opts  Options
	store renderer.TextureStore
	comp  *renderer.Compositor
	log   *slog.Logger

	buf    Buffer
	font   renderer.Font
	block  *renderer.TextBlock
	closed bool
}

// New creates an empty text area uploading its textures into store.
// A *renderer.MemoryTextures without its own Logger inherits opts.Logger.
func New(store renderer.TextureStore, opts Options) *TextArea {
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultTabWidth
	}
	log := opts.Logger
	if log == nil {
		log = renderer.Logger()
	}
	if mem, ok := store.(*renderer.MemoryTextures); ok && mem.Logger == nil && opts.Logger != nil {
		mem.Logger = opts.Logger
	}
	comp := renderer.NewCompositor(store)
	comp.MaxPixels = opts.MaxPixels
	comp.Logger = log
	return &TextArea{
		opts:  opts,
		store: store,
		comp:  comp,
		log:   log,
		block: &renderer.TextBlock{},
	}
}

// SetFont binds f and relayouts.
func (a *TextArea) SetFont(f renderer.Font) error {
	prev := a.font
	return a.mutate("set font", func() {
		a.font = f
	}, func() {
		a.font = prev
	})
}

// Font returns the bound font, or nil.
func (a *TextArea) Font() renderer.Font { return a.font }

// SetText replaces the whole buffer.
func (a *TextArea) SetText(s string) error {
	saved := a.buf.snapshot()
	return a.mutate("set text", func() {
		a.buf.Replace(s)
	}, func() {
		a.buf.restore(saved)
	})
}

// AppendCharacter appends r. A line break rune behaves like AppendLineBreak.
func (a *TextArea) AppendCharacter(r rune) error {
	if r == layout.LineBreak || r == '\r' {
		return a.AppendLineBreak()
	}
	if r == '\t' {
		return a.AppendTab()
	}
	saved := a.buf.snapshot()
	return a.mutate("append character", func() {
		a.buf.Append(r)
	}, func() {
		a.buf.restore(saved)
	})
}

// AppendLineBreak appends an explicit line break.
func (a *TextArea) AppendLineBreak() error {
	saved := a.buf.snapshot()
	return a.mutate("append line break", func() {
		a.buf.Append(layout.LineBreak)
	}, func() {
		a.buf.restore(saved)
	})
}

// AppendTab 插入 TabWidth 个空格。
func (a *TextArea) AppendTab() error {
	saved := a.buf.snapshot()
	return a.mutate("append tab", func() {
		for range a.opts.TabWidth {
			a.buf.Append(' ')
		}
	}, func() {
		a.buf.restore(saved)
	})
}

// RemoveLastCharacter drops the last code point. On an empty buffer it
// still relayouts.
func (a *TextArea) RemoveLastCharacter() error {
	saved := a.buf.snapshot()
	return a.mutate("remove last character", func() {
		a.buf.RemoveLast()
	}, func() {
		a.buf.restore(saved)
	})
}

// OnWrapWidthChanged 更新折行宽度（例如窗口尺寸变化）并重排。
func (a *TextArea) OnWrapWidthChanged(w int) error {
	prev := a.opts.WrapWidth
	return a.mutate("wrap width changed", func() {
		a.opts.WrapWidth = w
	}, func() {
		a.opts.WrapWidth = prev
	})
}

// SetWrap changes the wrap strategy and relayouts.
func (a *TextArea) SetWrap(mode layout.WrapMode) error {
	prev := a.opts.Wrap
	return a.mutate("wrap mode changed", func() {
		a.opts.Wrap = mode
	}, func() {
		a.opts.Wrap = prev
	})
}

// Relayout recomputes lines and texture from the current state.
func (a *TextArea) Relayout() error {
	if a.closed {
		return ErrClosed
	}
	if a.font == nil {
		// 未绑定字体时只能得到空块
		a.block.Release(a.store)
		a.block = &renderer.TextBlock{}
		return nil
	}
	lines := layout.Layout(a.buf.runes, a.layoutOptions(), a.font)
	block, err := a.comp.Compose(a.block, lines, a.font)
	if err != nil {
		return err
	}
	a.block = block
	return nil
}

func (a *TextArea) mutate(op string, apply, undo func()) error {
	if a.closed {
		return ErrClosed
	}
	apply()
	if err := a.Relayout(); err != nil {
		undo()
		a.log.Warn("relayout failed, change rolled back", "op", op, "err", err)
		return err
	}
	return nil
}

func (a *TextArea) layoutOptions() layout.Options {
	opts := layout.Options{MaxWidth: a.opts.WrapWidth, Wrap: a.opts.Wrap}
	if opts.MaxWidth <= 0 {
		opts.Wrap = layout.WrapNone
	}
	return opts
}

// LayoutOptions returns the options used by the last relayout.
func (a *TextArea) LayoutOptions() layout.Options { return a.layoutOptions() }

// WrapWidth returns the current wrap width in pixels.
func (a *TextArea) WrapWidth() int { return a.opts.WrapWidth }

// Block 返回当前 TextBlock 的只读副本，纹理句柄在下一次修改前有效。
func (a *TextArea) Block() renderer.TextBlock {
	b := *a.block
	b.Lines = append([]layout.LineSpan(nil), a.block.Lines...)
	b.Degraded = append([]int(nil), a.block.Degraded...)
	return b
}

// Texture returns the handle of the current texture.
func (a *TextArea) Texture() renderer.TextureHandle { return a.block.Texture }

// Bounds returns the bounding rectangle of the current block.
func (a *TextArea) Bounds() image.Rectangle { return a.block.Bounds }

// Lines returns the visible text of every line.
func (a *TextArea) Lines() []string {
	out := make([]string, len(a.block.Lines))
	for i, ln := range a.block.Lines {
		out[i] = ln.Text
	}
	return out
}

// Text returns the buffer contents.
func (a *TextArea) Text() string { return a.buf.String() }

// String 以竖线分隔各行，便于日志与测试输出。
func (a *TextArea) String() string { return strings.Join(a.Lines(), "|") }

// Close destroys the owned texture. Further mutations fail with ErrClosed.
func (a *TextArea) Close() error {
	if a.closed {
		return nil
	}
	a.block.Release(a.store)
	a.closed = true
	return nil
}
