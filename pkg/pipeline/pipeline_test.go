package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/cache"
	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
)

const fixtureGedcom = `0 HEAD
1 SOUR Test
0 @I1@ INDI
1 NAME Johann /Schmidt/
1 SEX M
1 BIRT
2 DATE 1854
1 FAMS @F1@
0 @I2@ INDI
1 NAME Maria /Weber/
1 SEX F
1 BIRT
2 DATE 1860
1 FAMS @F1@
0 @I3@ INDI
1 NAME Karl /Schmidt/
1 SEX M
1 BIRT
2 DATE 1885
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
0 TRLR
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.ged")
	if err := os.WriteFile(path, []byte(fixtureGedcom), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	return NewRunner(c, nil, logger)
}

func TestExecuteFullRun(t *testing.T) {
	outDir := t.TempDir()
	opts := Options{
		Input:     writeFixture(t),
		OutputDir: outDir,
		Root:      "I3",
		Canvas:    true,
		Notes:     true,
		Index:     true,
		Formats:   []string{FormatDOT},
	}

	result, err := testRunner(t).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Stats.Persons != 3 || result.Stats.Families != 1 {
		t.Errorf("stats = %d persons / %d families, want 3/1", result.Stats.Persons, result.Stats.Families)
	}
	if result.Stats.Clusters != 1 {
		t.Errorf("clusters = %d, want 1", result.Stats.Clusters)
	}

	if _, err := os.Stat(result.CanvasPath); err != nil {
		t.Errorf("canvas file missing: %v", err)
	}
	if filepath.Base(result.CanvasPath) != DefaultCanvasName {
		t.Errorf("canvas name = %s, want %s", filepath.Base(result.CanvasPath), DefaultCanvasName)
	}
	if len(result.NotePaths) != 3 {
		t.Errorf("wrote %d notes, want 3", len(result.NotePaths))
	}
	if _, err := os.Stat(result.IndexPath); err != nil {
		t.Errorf("index file missing: %v", err)
	}
	if dot := string(result.Artifacts[FormatDOT]); !strings.Contains(dot, "digraph G") {
		t.Errorf("dot artifact missing or malformed: %q", dot)
	}
}

func TestExecuteCacheHitsOnSecondRun(t *testing.T) {
	input := writeFixture(t)
	runner := testRunner(t)
	opts := Options{
		Input:     input,
		OutputDir: t.TempDir(),
		Root:      "I3",
		Canvas:    true,
		Formats:   []string{FormatDOT},
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if first.CacheInfo.DecodeHit || first.CacheInfo.CanvasHit {
		t.Error("first run should not hit the cache")
	}

	second, err := runner.Execute(context.Background(), Options{
		Input:     input,
		OutputDir: t.TempDir(),
		Root:      "I3",
		Canvas:    true,
		Formats:   []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if !second.CacheInfo.DecodeHit {
		t.Error("second run should hit the decode cache")
	}
	if !second.CacheInfo.CanvasHit {
		t.Error("second run should hit the canvas cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the render cache")
	}
	if second.TreeHash != first.TreeHash {
		t.Error("tree hash changed between identical runs")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	input := writeFixture(t)
	runner := testRunner(t)
	base := Options{Input: input, OutputDir: t.TempDir(), Root: "I3", Canvas: true}

	if _, err := runner.Execute(context.Background(), base); err != nil {
		t.Fatalf("warmup run error: %v", err)
	}

	refreshed, err := runner.Execute(context.Background(), Options{
		Input: input, OutputDir: t.TempDir(), Root: "I3", Canvas: true, Refresh: true,
	})
	if err != nil {
		t.Fatalf("refresh run error: %v", err)
	}
	if refreshed.CacheInfo.DecodeHit || refreshed.CacheInfo.CanvasHit {
		t.Error("refresh run must not read the cache")
	}
}

func TestExecuteBadRootLeavesNoFile(t *testing.T) {
	outDir := t.TempDir()
	opts := Options{
		Input:     writeFixture(t),
		OutputDir: outDir,
		Root:      "I404",
		Canvas:    true,
	}

	_, err := testRunner(t).Execute(context.Background(), opts)
	if !apperrors.Is(err, apperrors.ErrCodePersonNotFound) {
		t.Fatalf("expected PERSON_NOT_FOUND, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(outDir, DefaultCanvasName)); !os.IsNotExist(statErr) {
		t.Error("failed run left a canvas file behind")
	}
}

func TestExecuteMissingInput(t *testing.T) {
	opts := Options{Input: filepath.Join(t.TempDir(), "nope.ged")}
	_, err := testRunner(t).Execute(context.Background(), opts)
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperrors.Code
	}{
		{"no input", Options{}, apperrors.ErrCodeInvalidPath},
		{"canvas without root", Options{Input: "x.ged", Canvas: true}, apperrors.ErrCodeInvalidSelector},
		{"bad format", Options{Input: "x.ged", Formats: []string{"png"}}, apperrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !apperrors.Is(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "x.ged"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if opts.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", opts.OutputDir)
	}
	if opts.CanvasName != DefaultCanvasName {
		t.Errorf("CanvasName = %q, want %s", opts.CanvasName, DefaultCanvasName)
	}
	if opts.Layout.GenerationSpacing != 350 {
		t.Errorf("layout defaults not applied: %+v", opts.Layout)
	}
}
