package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDebugJSON 将排版快照写成带缩进的 JSON，目录不存在时自动创建。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	out := *res
	if out.Lines == nil {
		// 空文本也输出 "lines": []，方便外部工具处理
		out.Lines = []LineSpan{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("layout: 序列化调试 JSON 失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("layout: 创建调试目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
