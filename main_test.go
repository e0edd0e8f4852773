package main

import (
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/scroll/layout"
)

func TestRunPipeline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "demo.scroll")
	src := "font size 20\ntype \"hello ${name}\"\nreturn\ntype \"world\"\n"
	if err := os.WriteFile(in, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config{
		input:  in,
		output: filepath.Join(dir, "out", "area.png"),
		debug:  filepath.Join(dir, "out", "layout.json"),
		data:   `{"name":"scroll"}`,
		width:  400,
		engine: "opentype",
	}
	if err := run(cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(cfg.output)
	if err != nil {
		t.Fatalf("png missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}

	raw, err := os.ReadFile(cfg.debug)
	if err != nil {
		t.Fatalf("debug json missing: %v", err)
	}
	var res layout.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("debug json: %v", err)
	}
	if len(res.Lines) != 2 || res.Lines[0].Text != "hello scroll" {
		t.Fatalf("unexpected lines %+v", res.Lines)
	}
	if img.Bounds().Dx() != res.Width || img.Bounds().Dy() != res.Height {
		t.Fatalf("png %v does not match layout %dx%d", img.Bounds(), res.Width, res.Height)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	if err := run(config{input: filepath.Join(dir, "missing.scroll")}); err == nil {
		t.Fatalf("missing script should fail")
	}
	bad := filepath.Join(dir, "bad.scroll")
	if err := os.WriteFile(bad, []byte("dance\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(config{input: bad, output: filepath.Join(dir, "x.png")}); err == nil {
		t.Fatalf("unknown statement should fail")
	}
	if err := run(config{input: bad, data: "{oops"}); err == nil {
		t.Fatalf("bad data should fail")
	}
}
