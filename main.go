package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ByLCY/scroll/binding"
	"github.com/ByLCY/scroll/dsl"
	"github.com/ByLCY/scroll/fonts"
	"github.com/ByLCY/scroll/layout"
	"github.com/ByLCY/scroll/renderer"
	canvasrenderer "github.com/ByLCY/scroll/renderer/canvas"
	"github.com/ByLCY/scroll/renderer/ximage"
	"github.com/ByLCY/scroll/script"
	"github.com/ByLCY/scroll/textarea"
)

type config struct {
	input  string
	output string
	debug  string
	data   string
	width  int
	engine string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/demo.scroll", "编辑脚本路径")
	flag.StringVar(&cfg.output, "out", "output/demo.png", "PNG 输出路径")
	flag.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&cfg.data, "data", "", "绑定到脚本的 JSON 数据（以 @ 开头表示文件）")
	flag.IntVar(&cfg.width, "width", 512, "折行宽度（像素），0 表示只在换行处断行")
	flag.StringVar(&cfg.engine, "engine", "canvas", "默认字体引擎：canvas、opentype 或 freetype")
	watch := flag.Bool("watch", false, "脚本变化时重新生成")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	if *verbose {
		renderer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(cfg); err != nil {
		if !*watch {
			log.Fatalf("生成失败: %v", err)
		}
		log.Printf("生成失败: %v", err)
	} else {
		fmt.Printf("已生成 PNG：%s\n", cfg.output)
	}
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := watchFile(ctx, cfg.input, func() {
		if err := run(cfg); err != nil {
			log.Printf("生成失败: %v", err)
			return
		}
		fmt.Printf("已重新生成 PNG：%s\n", cfg.output)
	})
	if err != nil {
		log.Fatalf("监听脚本失败: %v", err)
	}
}

// run 串联解析、执行与输出。
func run(cfg config) error {
	data, err := binding.LoadData(cfg.data)
	if err != nil {
		return err
	}

	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开脚本 %s: %w", cfg.input, err)
	}
	s, err := dsl.Parse(cfg.input, file)
	file.Close()
	if err != nil {
		return fmt.Errorf("解析脚本失败: %w", err)
	}

	baseDir := filepath.Dir(cfg.input)
	engines, err := newEngines(baseDir)
	if err != nil {
		return err
	}

	store := renderer.NewMemoryTextures()
	area := textarea.New(store, textarea.Options{WrapWidth: cfg.width, Logger: renderer.Logger()})
	defer area.Close()

	env := &script.Env{
		Area:     area,
		Fonts:    engines,
		Engine:   cfg.engine,
		Data:     data,
		Textures: store,
		BaseDir:  baseDir,
	}
	// 脚本未声明字体时使用内置字体
	if err := env.UseFont(renderer.FontSpec{Src: "builtin:" + fonts.Default, Size: script.DefaultFontSize}, ""); err != nil {
		return fmt.Errorf("加载默认字体失败: %w", err)
	}
	if err := script.Run(s, env); err != nil {
		return fmt.Errorf("执行脚本失败: %w", err)
	}

	if cfg.debug != "" {
		block := area.Block()
		if err := layout.WriteDebugJSON(block.Result(area.LayoutOptions()), cfg.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if err := env.Snapshot(absOrCwd(cfg.output)); err != nil {
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}
	return nil
}

func newEngines(baseDir string) (map[string]renderer.Renderer, error) {
	engines := map[string]renderer.Renderer{
		"canvas": canvasrenderer.NewRenderer(baseDir),
	}
	for _, name := range []string{ximage.EngineOpenType, ximage.EngineFreeType} {
		r, err := ximage.New(name, baseDir)
		if err != nil {
			return nil, err
		}
		engines[name] = r
	}
	return engines, nil
}

// absOrCwd 让输出路径相对当前目录，而不是脚本目录。
func absOrCwd(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
