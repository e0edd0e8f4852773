package textarea

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/scroll/layout"
)

// Buffer 是文本区独占的可变字符序列，没有长度上限。
type Buffer struct {
	runes []rune
}

// NewBuffer returns a buffer holding the normalized form of s.
func NewBuffer(s string) *Buffer {
	b := &Buffer{}
	b.Replace(s)
	return b
}

// Normalize 把 CRLF 与单独的 CR 统一为换行标记，并做 NFC 组合。
func Normalize(s string) string {
	if strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return norm.NFC.String(s)
}

// Replace 整体替换缓冲区内容。
func (b *Buffer) Replace(s string) {
	b.runes = []rune(Normalize(s))
}

// Append adds r to the end of the buffer. '\r' is stored as a line break.
func (b *Buffer) Append(r rune) {
	if r == '\r' {
		r = layout.LineBreak
	}
	// 组合附加符号与前一个字符合并（例如 e + U+0301 → é）
	if n := len(b.runes); n > 0 && !norm.NFC.PropertiesString(string(r)).BoundaryBefore() {
		composed := []rune(norm.NFC.String(string(b.runes[n-1]) + string(r)))
		b.runes = append(b.runes[:n-1], composed...)
		return
	}
	b.runes = append(b.runes, r)
}

// RemoveLast drops the final code point and reports whether anything was removed.
func (b *Buffer) RemoveLast() bool {
	if len(b.runes) == 0 {
		return false
	}
	b.runes = b.runes[:len(b.runes)-1]
	return true
}

func (b *Buffer) Len() int       { return len(b.runes) }
func (b *Buffer) String() string { return string(b.runes) }

// Runes returns a copy of the buffer contents.
func (b *Buffer) Runes() []rune { return append([]rune(nil), b.runes...) }

func (b *Buffer) snapshot() []rune { return b.Runes() }
func (b *Buffer) restore(r []rune) { b.runes = r }
