package layout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// fixedWidth 每个字符固定 w 像素。
func fixedWidth(w int) Measurer {
	return MeasureFunc(func(s string) int { return utf8.RuneCountInString(s) * w })
}

func texts(lines []LineSpan) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBreakLinesScenarios(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		width  int
		lines  []string
		widths []int
	}{
		{"wrap abc", "abc", 25, []string{"ab", "c"}, []int{20, 10}},
		{"explicit break", "ab\ncd", 1000, []string{"ab", "cd"}, []int{20, 20}},
		{"empty", "", 100, nil, nil},
		{"single wide char", "x", 5, []string{"x"}, []int{10}},
		{"blank line", "a\n\nb", 100, []string{"a", "", "b"}, []int{10, 0, 10}},
		{"trailing break", "ab\n", 100, []string{"ab", ""}, []int{20, 0}},
		{"only break", "\n", 100, []string{"", ""}, []int{0, 0}},
		{"exact fit", "abcd", 20, []string{"ab", "cd"}, []int{20, 20}},
		{"exact fit then break", "ab\ncd", 20, []string{"ab", "", "cd"}, []int{20, 0, 20}},
		{"exact fit trailing break", "ab\n", 20, []string{"ab", "", ""}, []int{20, 0, 0}},
		{"wide char then break", "x\ny", 5, []string{"x", "", "y"}, []int{10, 0, 10}},
		{"overflow run", "abcdefg", 25, []string{"ab", "cd", "ef", "g"}, []int{20, 20, 20, 10}},
		{"every char too wide", "abc", 5, []string{"a", "b", "c"}, []int{10, 10, 10}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lines := BreakLines([]rune(c.text), c.width, fixedWidth(10))
			if got := texts(lines); !equalStrings(got, c.lines) {
				t.Fatalf("lines mismatch: got=%q want=%q\n%s", got, c.lines, spew.Sdump(lines))
			}
			for i, ln := range lines {
				if ln.Width != c.widths[i] {
					t.Fatalf("line %d width: got=%d want=%d", i, ln.Width, c.widths[i])
				}
			}
		})
	}
}

// TestBreakLinesWidthBound 验证：除单字符溢出外，每行宽度都不超过限制。
func TestBreakLinesWidthBound(t *testing.T) {
	// 宽窄不一的字符：i=3, m=12, 其他=7
	m := MeasureFunc(func(s string) int {
		w := 0
		for _, r := range s {
			switch r {
			case 'i':
				w += 3
			case 'm':
				w += 12
			default:
				w += 7
			}
		}
		return w
	})
	text := "minimum immersion in mammals\nimmaterial\n\nmmmm iiii"
	for _, limit := range []int{1, 5, 11, 12, 13, 20, 37, 100} {
		lines := BreakLines([]rune(text), limit, m)
		for i, ln := range lines {
			if ln.Width > limit && ln.Runes() != 1 {
				t.Fatalf("limit=%d line %d %q width %d exceeds limit", limit, i, ln.Text, ln.Width)
			}
			if got := m.Measure(ln.Text); got != ln.Width {
				t.Fatalf("limit=%d line %d reported width %d, measured %d", limit, i, ln.Width, got)
			}
		}
	}
}

// TestBreakLinesReconstructs 验证行内容与被消耗的换行标记按原位置拼接后等于原文。
func TestBreakLinesReconstructs(t *testing.T) {
	samples := []string{
		"",
		"a",
		"\n",
		"\n\n\n",
		"hello world",
		"hello\nworld\n",
		"ab\n\ncd\nefghijklmnop",
		"中文字符也可以折行\n第二段",
	}
	for _, s := range samples {
		text := []rune(s)
		for _, limit := range []int{1, 15, 25, 40, 1000} {
			lines := BreakLines(text, limit, fixedWidth(10))
			var b strings.Builder
			visible, markers := 0, 0
			for i, ln := range lines {
				if string(text[ln.Start:ln.End]) != ln.Text {
					t.Fatalf("%q/%d: line %d offsets do not match text", s, limit, i)
				}
				b.WriteString(ln.Text)
				visible += ln.Runes()
				if ln.Break {
					b.WriteRune(LineBreak)
					markers++
				}
			}
			if b.String() != s {
				t.Fatalf("%q/%d: reconstructed %q\n%s", s, limit, b.String(), spew.Sdump(lines))
			}
			if visible+markers != len(text) {
				t.Fatalf("%q/%d: %d visible + %d markers != %d", s, limit, visible, markers, len(text))
			}
		}
	}
}

func TestBreakLinesNonPositiveWidthMakesProgress(t *testing.T) {
	for _, limit := range []int{0, -10} {
		lines := BreakLines([]rune("abc"), limit, fixedWidth(10))
		if got := texts(lines); !equalStrings(got, []string{"a", "b", "c"}) {
			t.Fatalf("limit=%d: got %q", limit, got)
		}
	}
}

func TestBreakLinesZeroWidthRunes(t *testing.T) {
	m := MeasureFunc(func(s string) int {
		return strings.Count(s, "a") * 10
	})
	// 零宽字符不会让宽度增长，应与前一个字符留在同一行
	lines := BreakLines([]rune("a\u200ba\u200ba"), 20, m)
	if got := texts(lines); !equalStrings(got, []string{"a\u200ba", "\u200ba"}) {
		t.Fatalf("got %q", got)
	}
}

func TestLayoutNoWrap(t *testing.T) {
	opts := Options{MaxWidth: 10, Wrap: WrapNone}
	lines := Layout([]rune("abcdef\ngh\n"), opts, fixedWidth(10))
	if got := texts(lines); !equalStrings(got, []string{"abcdef", "gh", ""}) {
		t.Fatalf("got %q", got)
	}
	if lines[0].Width != 60 {
		t.Fatalf("expected measured width 60, got %d", lines[0].Width)
	}
	if Layout(nil, opts, fixedWidth(10)) != nil {
		t.Fatalf("expected no lines for empty text")
	}
}

func TestLayoutDefaultsToAnywhere(t *testing.T) {
	lines := Layout([]rune("abc"), Options{MaxWidth: 25}, fixedWidth(10))
	if got := texts(lines); !equalStrings(got, []string{"ab", "c"}) {
		t.Fatalf("got %q", got)
	}
}

func TestParseWrapMode(t *testing.T) {
	for in, want := range map[string]WrapMode{"": WrapAnywhere, "Anywhere": WrapAnywhere, "nowrap": WrapNone, "none": WrapNone} {
		got, err := ParseWrapMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseWrapMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseWrapMode("hyphenate"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestNewResultBounds(t *testing.T) {
	lines := BreakLines([]rune("abc\nd"), 25, fixedWidth(10))
	res := NewResult(lines, Options{MaxWidth: 25}, 14)
	if res.Height != 14*len(lines) {
		t.Fatalf("height %d != 14*%d", res.Height, len(lines))
	}
	if res.Width != 20 {
		t.Fatalf("width: got %d want 20", res.Width)
	}
	empty := NewResult(nil, Options{MaxWidth: 25}, 14)
	if empty.Width != 0 || empty.Height != 0 {
		t.Fatalf("empty result should be 0x0, got %dx%d", empty.Width, empty.Height)
	}
}
