// Package script 在 TextArea 上执行编辑脚本，模拟输入端逐键触发的修改。
package script

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/scroll/binding"
	"github.com/ByLCY/scroll/dsl"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
	"github.com/ByLCY/scroll/textarea"
)

// Defaults for font statements.
const (
	DefaultFontSize = 16
	DefaultEngine   = "opentype"
)

// ErrNoSnapshot is returned by snapshot statements when Env.Textures is nil.
var ErrNoSnapshot = errors.New("script: snapshot needs an in-memory texture store")

// Env is the state a script runs against.
type Env struct {
	Area     *textarea.TextArea
	Fonts    map[string]renderer.Renderer // 按引擎名索引
	Engine   string                       // font 语句未指定引擎时使用
	Data     any                          // ${path} 插值数据
	Textures *renderer.MemoryTextures     // snapshot 的数据来源
	BaseDir  string                       // snapshot 相对路径的基准目录
	Logger   *slog.Logger

	color color.Color
	spec  *renderer.FontSpec
	bound string // 当前字体所用引擎
}

// Error wraps a failure with the position of the statement that caused it.
type Error struct {
	Stmt *dsl.Statement
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s: %v", e.Stmt.Pos.Line, e.Stmt.Pos.Column, e.Stmt.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Run executes s statement by statement and stops at the first error.
func Run(s *dsl.Script, env *Env) error {
	if env == nil || env.Area == nil {
		return errors.New("script: missing text area")
	}
	for _, st := range s.Statements {
		if err := env.exec(st); err != nil {
			return &Error{Stmt: st, Err: err}
		}
	}
	return nil
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return renderer.Logger()
}

func (e *Env) exec(st *dsl.Statement) error {
	e.logger().Debug("exec", "stmt", st.Name, "line", st.Pos.Line)
	switch st.Name {
	case "font":
		return e.font(st)
	case "color":
		e.color = canvas.Hex(st.Arg(0).Text())
		if e.spec == nil {
			return nil
		}
		// 已绑定字体时用新颜色重新创建字体面
		spec := *e.spec
		spec.Color = e.color
		return e.UseFont(spec, e.bound)
	case "wrap":
		return e.wrap(st)
	case "type":
		text := e.interpolate(st.Arg(0).Text())
		for _, r := range text {
			if err := e.Area.AppendCharacter(r); err != nil {
				return err
			}
		}
		return nil
	case "return":
		return repeat(st, e.Area.AppendLineBreak)
	case "tab":
		return repeat(st, e.Area.AppendTab)
	case "backspace":
		return repeat(st, e.Area.RemoveLastCharacter)
	case "set":
		return e.Area.SetText(e.interpolate(st.Arg(0).Text()))
	case "clear":
		return e.Area.SetText("")
	case "relayout":
		return e.Area.Relayout()
	case "snapshot":
		return e.Snapshot(st.Arg(0).Text())
	}
	return fmt.Errorf("script: 未实现的指令 %s", st.Name)
}

func (e *Env) font(st *dsl.Statement) error {
	spec := renderer.FontSpec{Size: DefaultFontSize, Color: e.color}
	if a := st.Arg(0); a != nil {
		spec.Src = a.Text()
	}
	if a := st.Option("size"); a != nil {
		spec.Size = int(*a.Number)
	}
	if a := st.Option("style"); a != nil {
		spec.Style = a.Text()
	}
	if a := st.Option("name"); a != nil {
		spec.Name = a.Text()
	}
	if a := st.Option("color"); a != nil {
		spec.Color = canvas.Hex(a.Text())
	}
	engine := ""
	if a := st.Option("engine"); a != nil {
		engine = a.Text()
	}
	return e.UseFont(spec, engine)
}

// UseFont resolves spec with engine (Env.Engine or DefaultEngine when empty)
// and binds the result to the text area.
func (e *Env) UseFont(spec renderer.FontSpec, engine string) error {
	if engine == "" {
		engine = e.Engine
	}
	if engine == "" {
		engine = DefaultEngine
	}
	r, ok := e.Fonts[engine]
	if !ok {
		return fmt.Errorf("script: 未配置字体引擎 %q", engine)
	}
	f, err := r.Face(spec)
	if err != nil {
		return err
	}
	if err := e.Area.SetFont(f); err != nil {
		return err
	}
	e.spec, e.bound = &spec, engine
	return nil
}

func (e *Env) wrap(st *dsl.Statement) error {
	for _, a := range st.Args {
		if a.Kind() != dsl.KindIdent {
			continue
		}
		mode, err := layout.ParseWrapMode(a.Text())
		if err != nil {
			return err
		}
		if err := e.Area.SetWrap(mode); err != nil {
			return err
		}
	}
	if a := st.Arg(0); a != nil && a.Number != nil {
		if *a.Number < 0 {
			return fmt.Errorf("script: 折行宽度不能为负数: %d", *a.Number)
		}
		return e.Area.OnWrapWidthChanged(int(*a.Number))
	}
	return nil
}

func (e *Env) interpolate(s string) string {
	if missing := binding.Missing(s, e.Data); len(missing) > 0 && e.Data != nil {
		e.logger().Warn("unresolved placeholders", "paths", missing)
	}
	return binding.Interpolate(s, e.Data)
}

// Snapshot writes the current texture as PNG to path.
func (e *Env) Snapshot(path string) error {
	if e.Textures == nil {
		return ErrNoSnapshot
	}
	if !filepath.IsAbs(path) && e.BaseDir != "" {
		path = filepath.Join(e.BaseDir, path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建快照文件失败: %w", err)
	}
	if err := e.Textures.EncodePNG(f, e.Area.Texture()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func repeat(st *dsl.Statement, op func() error) error {
	n := st.Count(1)
	if n < 0 {
		return fmt.Errorf("script: 次数不能为负数: %d", n)
	}
	for range n {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}
