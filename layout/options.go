package layout

import (
	"fmt"
	"strings"
)

// Options 配置一次排版所需的参数。
type Options struct {
	MaxWidth int      // 换行宽度（像素）
	Wrap     WrapMode // 折行策略，零值为 WrapAnywhere
}

// Measurer 返回字符串在当前字体下的像素宽度。
// 实现必须是全函数：无法测量的字符由后端替换为备用字形宽度，而不是返回错误。
// 追加字符时宽度不应变小（单调），换行回退依赖这一前提。
type Measurer interface {
	Measure(s string) int
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(s string) int

func (f MeasureFunc) Measure(s string) int { return f(s) }

// WrapMode selects how lines are split.
type WrapMode uint8

const (
	// WrapAnywhere 在任意字符处按宽度折行，并尊重显式换行。
	WrapAnywhere WrapMode = iota
	// WrapNone 只按显式换行拆分，宽度仅用于测量。
	WrapNone
)

func (m WrapMode) String() string {
	switch m {
	case WrapAnywhere:
		return "anywhere"
	case WrapNone:
		return "nowrap"
	default:
		return "unknown"
	}
}

// ParseWrapMode 解析折行策略名称，空字符串视为 anywhere。
func ParseWrapMode(v string) (WrapMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "anywhere", "char", "break-all":
		return WrapAnywhere, nil
	case "nowrap", "none":
		return WrapNone, nil
	default:
		return WrapAnywhere, fmt.Errorf("layout: 未知的折行策略 %q", v)
	}
}
