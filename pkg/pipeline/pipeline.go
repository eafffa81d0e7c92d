// Package pipeline runs the decode → tree → outputs flow shared by the
// CLI commands.
//
// The stages are:
//
//  1. Decode: parse the GEDCOM file into records
//  2. Tree: build the family graph and its clusters
//  3. Outputs: canvas document, markdown notes, index, and previews
//
// Decoded documents and canvas layouts are cached by content hash, so
// re-running over an unchanged file only redoes the filesystem writes.
// The run operates on an immutable snapshot: the input file is read
// once and never re-read mid-run.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/cache"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/canvas"
	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/gedcom"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// DefaultCanvasName is the canvas filename used when none is given.
const DefaultCanvasName = "FamilyTree.canvas"

// Preview format constants.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported preview formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Options configures a pipeline run.
type Options struct {
	// Input is the GEDCOM file to read.
	Input string `json:"input"`

	// OutputDir receives all generated files. Defaults to ".".
	OutputDir string `json:"output_dir,omitempty"`

	// Root is the person ID the canvas layout starts from.
	// Required when Canvas is set.
	Root string `json:"root,omitempty"`

	// Canvas, Notes, and Index select which outputs to generate.
	Canvas bool `json:"canvas,omitempty"`
	Notes  bool `json:"notes,omitempty"`
	Index  bool `json:"index,omitempty"`

	// CanvasName overrides the canvas filename.
	CanvasName string `json:"canvas_name,omitempty"`

	// MediaSubdir is prefixed to image paths inside notes.
	MediaSubdir string `json:"media_subdir,omitempty"`

	// Formats lists preview artifacts to render ("dot", "svg").
	Formats []string `json:"formats,omitempty"`

	// Detailed adds lifespan and birthplace to preview labels.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Layout carries the canvas spacing constants.
	Layout canvas.Options `json:"layout,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return apperrors.New(apperrors.ErrCodeInvalidPath, "no input file given")
	}
	if o.Canvas && o.Root == "" {
		return apperrors.New(apperrors.ErrCodeInvalidSelector, "canvas output requires a root person")
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid format %q (must be dot or svg)", f)
		}
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.CanvasName == "" {
		o.CanvasName = DefaultCanvasName
	}
	if o.Layout == (canvas.Options{}) {
		o.Layout = canvas.Options{
			NodeWidth:         250,
			NodeHeight:        60,
			ImageHeight:       150,
			GenerationSpacing: 350,
			SiblingSpacing:    110,
			ClusterSpacing:    400,
		}
	}
	o.validated = true
	return nil
}

// CanvasKeyOpts derives the cache key options for the canvas stage.
func (o *Options) CanvasKeyOpts() cache.CanvasKeyOpts {
	return cache.CanvasKeyOpts{
		Root:              o.Root,
		NodeWidth:         o.Layout.NodeWidth,
		NodeHeight:        o.Layout.NodeHeight,
		ImageHeight:       o.Layout.ImageHeight,
		GenerationSpacing: o.Layout.GenerationSpacing,
		SiblingSpacing:    o.Layout.SiblingSpacing,
		ClusterSpacing:    o.Layout.ClusterSpacing,
	}
}

// Result collects the outputs of a pipeline run.
type Result struct {
	Document *gedcom.Document
	Tree     *tree.Tree

	// TreeHash is the content hash of the decoded document.
	TreeHash string

	Canvas     *canvas.Document
	CanvasPath string

	NotePaths []string
	IndexPath string

	// Artifacts holds rendered previews keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Persons  int
	Families int
	Clusters int

	DecodeTime time.Duration
	CanvasTime time.Duration
	NotesTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	DecodeHit bool
	CanvasHit bool
	RenderHit bool
}
