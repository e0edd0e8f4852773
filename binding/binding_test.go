package binding

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sample = `{"user":{"name":"Ada","tags":["x","y"]},"count":1000000,"ratio":0.5,"none":null}`

func TestInterpolate(t *testing.T) {
	data, err := ParseData([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cases := map[string]string{
		"hi ${user.name}":       "hi Ada",
		"${ user.tags[1] }":     "y",
		"${count} / ${ratio}":   "1000000 / 0.5",
		"[${none}]":             "[]",
		"${user.tags}":          `["x","y"]`,
		"${missing.path} stays": "${missing.path} stays",
		"${user.tags[9]}":       "${user.tags[9]}",
		"no placeholders":       "no placeholders",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${user.name}", nil); got != "${user.name}" {
		t.Fatalf("nil data must keep placeholders, got %q", got)
	}
}

func TestMissing(t *testing.T) {
	data, _ := ParseData([]byte(sample))
	got := Missing("${a} ${user.name} ${b} ${a}", data)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Missing = %v", got)
	}
}

func TestLoadData(t *testing.T) {
	if d, err := LoadData(""); err != nil || d != nil {
		t.Fatalf("empty data: %v %v", d, err)
	}
	if _, err := LoadData("{broken"); err == nil {
		t.Fatalf("invalid JSON should fail")
	}
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadData("@" + path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if v, ok := Lookup(d, "user.name"); !ok || v != "Ada" {
		t.Fatalf("lookup from file: %v %v", v, ok)
	}
	if _, err := LoadData("@" + path + ".missing"); err == nil {
		t.Fatalf("missing file should fail")
	}
}
