package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是未指定字体时使用的内置字体。
const Default = "goregular"

var builtin = map[string][]byte{
	"goregular":  goregular.TTF,
	"gobold":     gobold.TTF,
	"goitalic":   goitalic.TTF,
	"gomono":     gomono.TTF,
	"gomonobold": gomonobold.TTF,
}

// IsBuiltin reports whether src refers to a bundled font ("builtin:", "built-in:" or "embed:").
func IsBuiltin(src string) bool {
	_, ok := trimBuiltin(src)
	return ok
}

// Load 返回内置字体的字节数据，src 可写为 "builtin:gomono"、"embed:gomono" 或直接 "gomono"。
func Load(src string) ([]byte, error) {
	name, _ := trimBuiltin(src)
	name = strings.ToLower(strings.TrimSuffix(name, ".ttf"))
	if name == "" {
		name = Default
	}
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("fonts: 找不到内置字体 %s（可用：%s）", src, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names lists the bundled font names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func trimBuiltin(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:", "embed:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.TrimPrefix(src, prefix), true
		}
	}
	return src, false
}

// ReadSource 读取字体数据：内置字体直接返回，其他视为文件路径，相对路径基于 baseDir 解析。
func ReadSource(src, baseDir string) ([]byte, error) {
	if src == "" {
		return Load(Default)
	}
	if IsBuiltin(src) {
		return Load(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return nil, fmt.Errorf("fonts: 未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fonts: 读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
