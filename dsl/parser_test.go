package dsl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ByLCY/scroll/dsl"
)

const sampleScript = `
# 打开字体并设置折行宽度
font "builtin:goregular" size 36px engine canvas style bold
color #202020
wrap 512

type "Hello, ${user.name}!" // 行尾注释
return; tab 2
backspace
/* 块注释
   跨行 */
set "replaced"
clear
snapshot "out/step.png"
`

func TestParseScript(t *testing.T) {
	s, err := dsl.ParseString(sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var names []string
	for _, st := range s.Statements {
		names = append(names, st.Name)
	}
	if got, want := strings.Join(names, " "), "font color wrap type return tab backspace set clear snapshot"; got != want {
		t.Fatalf("statements:\n got %s\nwant %s", got, want)
	}

	font := s.Statements[0]
	if font.Arg(0).Text() != "builtin:goregular" {
		t.Fatalf("font src: %+v", font.Arg(0))
	}
	if size := font.Option("size"); size == nil || size.Number == nil || int(*size.Number) != 36 {
		t.Fatalf("font size option missing: %+v", font.Options)
	}
	if font.Option("engine").Text() != "canvas" || font.Option("style").Text() != "bold" {
		t.Fatalf("unexpected font options: %+v", font.Options)
	}
	if font.Pos.Line != 3 {
		t.Fatalf("font statement line = %d, want 3", font.Pos.Line)
	}

	if c := s.Statements[1].Arg(0); c.Kind() != dsl.KindColor || c.Text() != "#202020" {
		t.Fatalf("color arg: %+v", c)
	}
	if got := s.Statements[2].Count(0); got != 512 {
		t.Fatalf("wrap width = %d", got)
	}
	if got := s.Statements[3].Arg(0).Text(); got != "Hello, ${user.name}!" {
		t.Fatalf("type text = %q", got)
	}
	if got := s.Statements[4].Count(1); got != 1 {
		t.Fatalf("return default count = %d", got)
	}
	if got := s.Statements[5].Count(1); got != 2 {
		t.Fatalf("tab count = %d", got)
	}
}

func TestParseWrapModes(t *testing.T) {
	s, err := dsl.ParseString("wrap none\nwrap 200 anywhere\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Statements[0].Arg(0).Kind() != dsl.KindIdent {
		t.Fatalf("wrap none should keep the identifier")
	}
	if s.Statements[1].Count(0) != 200 || s.Statements[1].Arg(1).Text() != "anywhere" {
		t.Fatalf("unexpected wrap args: %+v", s.Statements[1].Args)
	}
}

// 行首 # 后面即使是十六进制字母也按注释处理，参数位置上的 #add 仍是颜色。
func TestParseHashCommentLooksLikeColor(t *testing.T) {
	s, err := dsl.ParseString("type \"a\"\n#add two lines\n#fff\nreturn # cafe\ncolor #add; clear\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var names []string
	for _, st := range s.Statements {
		names = append(names, st.Name)
	}
	if got, want := strings.Join(names, " "), "type return color clear"; got != want {
		t.Fatalf("statements:\n got %s\nwant %s", got, want)
	}
	if len(s.Statements[1].Args) != 0 {
		t.Fatalf("return should carry no args: %+v", s.Statements[1].Args)
	}
	if c := s.Statements[2].Arg(0); c.Kind() != dsl.KindColor || c.Text() != "#add" {
		t.Fatalf("color arg: %+v", c)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "\n\n", "# only a comment\n", ";;"} {
		s, err := dsl.ParseString(in)
		if err != nil {
			t.Fatalf("ParseString(%q): %v", in, err)
		}
		if len(s.Statements) != 0 {
			t.Fatalf("ParseString(%q): expected no statements", in)
		}
	}
}

func TestParseErrorsArePositioned(t *testing.T) {
	cases := []struct {
		in   string
		line int
		msg  string
	}{
		{"type \"a\"\njump 3\n", 2, "未知指令"},
		{"\n\ntype 12\n", 3, "type 的第 1 个参数"},
		{"color\n", 1, "至少需要"},
		{"font \"x\" size\n", 1, "缺少取值"},
		{"font \"x\" size \"big\"\n", 1, "取值应为"},
		{"clear now\n", 1, "不接受参数"},
	}
	for _, tc := range cases {
		_, err := dsl.ParseString(tc.in)
		var perr *dsl.Error
		if !errors.As(err, &perr) {
			t.Fatalf("%q: expected *dsl.Error, got %v", tc.in, err)
		}
		if perr.Pos.Line != tc.line || !strings.Contains(perr.Msg, tc.msg) {
			t.Fatalf("%q: got %v", tc.in, err)
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := dsl.ParseString("type \"unterminated\n"); err == nil {
		t.Fatalf("expected a lexer error")
	}
}

func TestParseReaderWithName(t *testing.T) {
	_, err := dsl.Parse("demo.scroll", strings.NewReader("oops\n"))
	if err == nil || !strings.HasPrefix(err.Error(), "demo.scroll:1:1:") {
		t.Fatalf("error should carry the file name, got %v", err)
	}
}

func TestParseLengthUnits(t *testing.T) {
	s, err := dsl.ParseString("wrap 3in\nfont size 27pt\nwrap 10.4px\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := s.Statements[0].Count(0); got != 288 {
		t.Fatalf("3in = %d px, want 288", got)
	}
	if got := int(*s.Statements[1].Option("size").Number); got != 36 {
		t.Fatalf("27pt = %d px, want 36", got)
	}
	if got := s.Statements[2].Count(0); got != 10 {
		t.Fatalf("10.4px = %d, want 10", got)
	}
}
