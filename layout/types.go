package layout

// 该文件定义排版结果，供换行计算、合成器与调试 JSON 共用。

// LineBreak 是唯一的显式换行标记，它被换行算法消耗，不会出现在任何行的内容里。
const LineBreak = '\n'

// LineSpan 表示排版后的一行文本及其测量宽度（像素）。
// Start/End 为该行在原始文本中的 rune 偏移，End 不包含。
type LineSpan struct {
	Text  string `json:"text"`
	Width int    `json:"width"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Break bool   `json:"break,omitempty"` // 该行以显式换行标记结束
}

// Empty reports whether the line has no visible content.
func (l LineSpan) Empty() bool { return l.Start == l.End }

// Runes 返回行内可见字符数。
func (l LineSpan) Runes() int { return l.End - l.Start }

// Result 是一次完整排版的快照，调试输出与测试共用。
type Result struct {
	MaxWidth    int        `json:"maxWidth"`
	Wrap        string     `json:"wrap"`
	LineAdvance int        `json:"lineAdvance"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Lines       []LineSpan `json:"lines"`
}

// MaxLineWidth returns the widest measured line, or 0 for no lines.
func MaxLineWidth(lines []LineSpan) int {
	w := 0
	for _, ln := range lines {
		if ln.Width > w {
			w = ln.Width
		}
	}
	return w
}

// NewResult 根据行序列与行距计算包围尺寸。
func NewResult(lines []LineSpan, opts Options, lineAdvance int) *Result {
	return &Result{
		MaxWidth:    opts.MaxWidth,
		Wrap:        opts.Wrap.String(),
		LineAdvance: lineAdvance,
		Width:       MaxLineWidth(lines),
		Height:      lineAdvance * len(lines),
		Lines:       lines,
	}
}
