package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/cache"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/canvas"
	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/gedcom"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/markdown"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/render"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// Runner executes the pipeline with caching.
//
// The Runner is stateless apart from the cache and logger; it does not
// keep run results, so one Runner can serve many runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil
// keyer falls back to the default keyer, and a nil logger uses the
// package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

func (r *Runner) logger(opts *Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Execute runs the full pipeline: decode, build the tree, then emit
// the outputs the options select.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	decodeStart := time.Now()
	doc, treeHash, decodeHit, err := r.DecodeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Document = doc
	result.TreeHash = treeHash
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.CacheInfo.DecodeHit = decodeHit
	result.Stats.Persons = len(doc.Individuals)
	result.Stats.Families = len(doc.Families)

	logger.Info("decoded GEDCOM",
		"persons", len(doc.Individuals),
		"families", len(doc.Families),
		"cached", decodeHit,
		"duration", result.Stats.DecodeTime)

	tr, err := tree.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	result.Tree = tr
	result.Stats.Clusters = len(tr.Components())
	for _, d := range tr.Dangling {
		logger.Warn("dangling reference", "person", d.From, "ref", d.Ref, "kind", d.Kind)
	}

	// The canvas is assembled fully in memory before the output file
	// is created, so a bad root never leaves a partial file.
	if opts.Canvas {
		canvasStart := time.Now()
		cdoc, report, canvasHit, err := r.CanvasWithCacheInfo(ctx, tr, treeHash, opts)
		if err != nil {
			return nil, fmt.Errorf("canvas: %w", err)
		}
		result.Canvas = cdoc
		result.Stats.CanvasTime = time.Since(canvasStart)
		result.CacheInfo.CanvasHit = canvasHit
		for _, e := range report.SkippedEdges {
			logger.Warn("skipped edge with unplaced endpoint",
				"kind", e.Kind, "from", e.From, "to", e.To)
		}

		path := filepath.Join(opts.OutputDir, opts.CanvasName)
		if err := canvas.WriteFile(cdoc, path); err != nil {
			return nil, err
		}
		result.CanvasPath = path
		logger.Info("wrote canvas",
			"path", path,
			"nodes", len(cdoc.Nodes),
			"edges", len(cdoc.Edges),
			"cached", canvasHit,
			"duration", result.Stats.CanvasTime)
	}

	if opts.Notes || opts.Index {
		notesStart := time.Now()
		if opts.Notes {
			gen, err := markdown.NewGenerator(opts.OutputDir, opts.MediaSubdir)
			if err != nil {
				return nil, err
			}
			paths, failed := gen.WriteAll(tr)
			result.NotePaths = paths
			for _, f := range failed {
				logger.Error("failed to write note", "person", f.PersonID, "err", f.Err)
			}
		}
		if opts.Index {
			path, err := markdown.WriteIndex(tr, opts.OutputDir)
			if err != nil {
				return nil, err
			}
			result.IndexPath = path
		}
		result.Stats.NotesTime = time.Since(notesStart)
		logger.Info("wrote notes",
			"notes", len(result.NotePaths),
			"index", result.IndexPath != "",
			"duration", result.Stats.NotesTime)
	}

	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, tr, treeHash, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit
		logger.Info("rendered previews",
			"formats", opts.Formats,
			"cached", renderHit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// DecodeWithCacheInfo decodes the input file with caching and returns
// the document, its content hash, and whether the cache was hit.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, opts Options) (*gedcom.Document, string, bool, error) {
	data, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return nil, "", false, apperrors.New(apperrors.ErrCodeFileNotFound, "GEDCOM file not found: %s", opts.Input)
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("read %s: %w", opts.Input, err)
	}

	fileHash := cache.Hash(data)
	key := r.Keyer.TreeKey(fileHash, cache.TreeKeyOpts{})

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := gedcom.UnmarshalDocument(cached); err == nil {
				return doc, r.documentHash(doc, fileHash), true, nil
			}
			// Corrupt cache entries fall through to a fresh decode.
		}
	}

	doc, err := gedcom.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, err
	}

	if encoded, err := gedcom.MarshalDocument(doc); err == nil {
		_ = r.Cache.Set(ctx, key, encoded, cache.TTLTree)
	}
	return doc, r.documentHash(doc, fileHash), false, nil
}

// documentHash hashes the decoded document for downstream cache keys.
// Falls back to the raw file hash if encoding fails.
func (r *Runner) documentHash(doc *gedcom.Document, fileHash string) string {
	data, err := gedcom.MarshalDocument(doc)
	if err != nil {
		return fileHash
	}
	return cache.Hash(data)
}

// CanvasWithCacheInfo builds the canvas document with caching.
// On a cache hit the report only carries the cluster count; skipped
// edges were already reported when the document was first built.
func (r *Runner) CanvasWithCacheInfo(ctx context.Context, tr *tree.Tree, treeHash string, opts Options) (*canvas.Document, *canvas.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	key := r.Keyer.CanvasKey(treeHash, opts.CanvasKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := canvas.Unmarshal(data); err == nil {
				return doc, &canvas.Report{Clusters: len(tr.Components())}, true, nil
			}
		}
	}

	doc, report, err := canvas.Build(tr, opts.Root, opts.Layout)
	if err != nil {
		return nil, nil, false, err
	}

	if data, err := canvas.Marshal(doc); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLCanvas)
	}
	return doc, report, false, nil
}

// RenderWithCacheInfo renders the preview artifacts with caching.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tr *tree.Tree, treeHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte)
	allCached := true
	if opts.Refresh {
		allCached = false
	} else {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(treeHash, cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed})
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[format] = data
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered := make(map[string][]byte, len(opts.Formats))
	dot := render.ToDOT(tr, render.Options{Detailed: opts.Detailed})
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			rendered[format] = []byte(dot)
		case FormatSVG:
			svg, err := render.RenderSVG(ctx, dot)
			if err != nil {
				return nil, false, err
			}
			rendered[format] = svg
		}
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(treeHash, cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed})
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}
