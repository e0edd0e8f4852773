package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
	for _, px := range samples {
		back := px * PxToPt * PtToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到像素的换算。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"36", 36},
		{"36px", 36},
		{"27pt", 36},
		{"1in", 96},
		{"25.4mm", 96},
		{" 12PX ", 12},
	}
	for _, c := range cases {
		l, ok := ParseLength(c.in)
		if !ok {
			t.Fatalf("解析 %q 失败", c.in)
		}
		if got := l.ToPx(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%q 转 px 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
	for _, bad := range []string{"", "px", "abc", "NaN"} {
		if _, ok := ParseLength(bad); ok {
			t.Fatalf("期望 %q 解析失败", bad)
		}
	}
}

func TestLengthPixelsRounds(t *testing.T) {
	l := Length{Value: 10.6, Unit: UnitPX}
	if got := l.Pixels(); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	if UnitToString(UnitPT) != "pt" || UnitToString(UnitNone) != "" {
		t.Fatalf("unexpected unit names")
	}
}
