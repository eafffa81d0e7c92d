package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/pipeline"
	"github.com/AlexKucera/gedcom-to-markdown/pkg/tree"
)

// canvasCommand creates the canvas command for generating only the
// family tree canvas.
func (c *CLI) canvasCommand() *cobra.Command {
	var (
		output     string
		rootSel    string
		canvasName string
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "canvas [file.ged]",
		Short: "Generate the family tree canvas",
		Long: `Generate the family tree canvas without notes or index.

The canvas places the root person at the origin, ancestors in columns
to the right, descendants to the left, and disconnected family clusters
stacked below. Node links point at the note filenames 'convert' writes,
so the canvas can be generated before or after the notes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Input:      args[0],
				OutputDir:  output,
				Canvas:     true,
				CanvasName: canvasName,
				Refresh:    refresh,
			}
			return c.runCanvas(cmd.Context(), opts, rootSel, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&rootSel, "root", "r", "", "root person: ID or list index")
	cmd.Flags().StringVar(&canvasName, "canvas-name", "", "canvas filename (default FamilyTree.canvas)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache for this run")

	return cmd
}

func (c *CLI) runCanvas(ctx context.Context, opts pipeline.Options, rootSel string, noCache bool) error {
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

	spinner := newSpinner(ctx, "Laying out canvas...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Canvas generation failed")
		return err
	}
	spinner.StopWithSuccess("Canvas written")
	printStats(result.Stats.Persons, result.Stats.Clusters, result.CacheInfo.CanvasHit)
	printFile(result.CanvasPath)
	return nil
}
