package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/config"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/pipeline"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "gedmd")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "gedmd") {
		t.Errorf("cacheDir() = %q, want XDG path", dir)
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != pipeline.FormatSVG {
		t.Errorf("parseFormats(\"\") = %v, want [svg]", got)
	}
	got := parseFormats("dot,svg")
	if len(got) != 2 || got[0] != "dot" || got[1] != "svg" {
		t.Errorf("parseFormats = %v, want [dot svg]", got)
	}
}

func TestLayoutOptions(t *testing.T) {
	cfg := config.Default()
	opts := layoutOptions(cfg)

	if opts.GenerationSpacing != cfg.Layout.GenerationSpacing {
		t.Errorf("GenerationSpacing = %v, want %v", opts.GenerationSpacing, cfg.Layout.GenerationSpacing)
	}
	if opts.NodeWidth != cfg.Layout.NodeWidth {
		t.Errorf("NodeWidth = %v, want %v", opts.NodeWidth, cfg.Layout.NodeWidth)
	}
}

func TestRootCommandStructure(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()

	if root.Use != "gedmd" {
		t.Errorf("root.Use = %q, want gedmd", root.Use)
	}

	want := map[string]bool{
		"convert": false, "canvas": false, "preview": false,
		"cache": false, "completion": false,
	}
	for _, cmd := range root.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing subcommand %s", name)
		}
	}
}
