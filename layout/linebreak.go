package layout

import "errors"

// ErrMeasurementUnavailable 表示后端无法测量某个字符；后端应在内部以备用宽度恢复，
// 不会从 BreakLines 向上传递。
var ErrMeasurementUnavailable = errors.New("layout: measurement unavailable")

// Layout 按 opts 选择的折行策略拆分文本。
func Layout(text []rune, opts Options, m Measurer) []LineSpan {
	if opts.Wrap == WrapNone {
		return splitBreaks(text, m)
	}
	return BreakLines(text, opts.MaxWidth, m)
}

// BreakLines 使用贪心算法（带一步回退）把 text 拆成宽度不超过 maxWidth 的行。
//
// 每行至少包含一个字符，因此单个字符本身超过 maxWidth 时会独占一行。
// LineBreak 标记会结束当前行并被消耗；文本以标记结尾时追加一个空行。
// 空文本返回 nil。
func BreakLines(text []rune, maxWidth int, m Measurer) []LineSpan {
	var lines []LineSpan
	n := len(text)
	c := 0
	endsOnBreak := false

	for c < n {
		start, end := c, c
		width := 0
		closed := false

		for c < n && (width < maxWidth || end == start) {
			if text[c] == LineBreak {
				c++
				closed = true
				break
			}
			c++
			end = c
			width = m.Measure(string(text[start:end]))
		}

		if !closed && width > maxWidth && end-start > 1 {
			// 最后一个字符放不下，留给下一行
			end--
			c--
			width = m.Measure(string(text[start:end]))
		}

		if end == start {
			width = 0
		}
		lines = append(lines, LineSpan{
			Text:  string(text[start:end]),
			Width: width,
			Start: start,
			End:   end,
			Break: closed,
		})
		endsOnBreak = closed
	}

	if endsOnBreak {
		lines = append(lines, LineSpan{Start: n, End: n})
	}
	return lines
}

// splitBreaks 只在显式换行处拆分。
func splitBreaks(text []rune, m Measurer) []LineSpan {
	if len(text) == 0 {
		return nil
	}
	var lines []LineSpan
	start := 0
	for i, r := range text {
		if r != LineBreak {
			continue
		}
		lines = append(lines, measuredSpan(text, start, i, true, m))
		start = i + 1
	}
	return append(lines, measuredSpan(text, start, len(text), false, m))
}

func measuredSpan(text []rune, start, end int, brk bool, m Measurer) LineSpan {
	ln := LineSpan{Start: start, End: end, Break: brk}
	if end > start {
		ln.Text = string(text[start:end])
		ln.Width = m.Measure(ln.Text)
	}
	return ln
}
