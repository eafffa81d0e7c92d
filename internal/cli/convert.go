package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/pipeline"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// convertCommand creates the convert command: the full GEDCOM to
// Obsidian vault run.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output      string
		rootSel     string
		canvasName  string
		mediaSubdir string
		noCache     bool
		refresh     bool
		noCanvas    bool
		noNotes     bool
		noIndex     bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file.ged]",
		Short: "Convert a GEDCOM file into an Obsidian vault",
		Long: `Convert a GEDCOM file into an Obsidian vault.

Generates one markdown note per person, an alphabetical index, and a
family tree canvas laid out by generation from a root person. The root
is given with --root as a person ID (e.g. I42) or a 1-based index into
the name-sorted person list; without --root an interactive picker opens
when running in a terminal.

Decoded files and canvas layouts are cached locally, so re-running over
an unchanged file only redoes the writes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Input:       args[0],
				OutputDir:   output,
				Canvas:      !noCanvas,
				Notes:       !noNotes,
				Index:       !noIndex,
				CanvasName:  canvasName,
				MediaSubdir: mediaSubdir,
				Refresh:     refresh,
			}
			return c.runConvert(cmd.Context(), opts, rootSel, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory for the vault")
	cmd.Flags().StringVarP(&rootSel, "root", "r", "", "root person: ID or list index")
	cmd.Flags().StringVar(&canvasName, "canvas-name", "", "canvas filename (default FamilyTree.canvas)")
	cmd.Flags().StringVar(&mediaSubdir, "media", "", "subdirectory prefix for image links in notes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache for this run")
	cmd.Flags().BoolVar(&noCanvas, "no-canvas", false, "skip the canvas")
	cmd.Flags().BoolVar(&noNotes, "no-notes", false, "skip the person notes")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "skip the index note")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, opts pipeline.Options, rootSel string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts.Layout = layoutOptions(cfg)
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// The root must be resolved before the pipeline runs, so decode
	// now; the pipeline's own decode then hits the cache.
	if opts.Canvas {
		doc, _, _, err := runner.DecodeWithCacheInfo(ctx, opts)
		if err != nil {
			return err
		}
		tr, err := tree.Build(doc)
		if err != nil {
			return err
		}
		root, err := c.selectRoot(tr, rootSel)
		if err != nil {
			return err
		}
		opts.Root = root
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Converting family tree...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			printWarning("Conversion interrupted")
			return err
		}
		spinner.StopWithError("Conversion failed")
		return err
	}
	spinner.Stop()
	prog.done("conversion finished")

	printSuccess("Converted %s", opts.Input)
	printStats(result.Stats.Persons, result.Stats.Clusters, result.CacheInfo.DecodeHit)
	if result.CanvasPath != "" {
		printFile(result.CanvasPath)
	}
	if len(result.NotePaths) > 0 {
		printDetail("%d notes in %s", len(result.NotePaths), opts.OutputDir)
	}
	if result.IndexPath != "" {
		printFile(result.IndexPath)
	}
	return nil
}
