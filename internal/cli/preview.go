package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlexKucera/gedcom-to-markdown/pkg/pipeline"
)

// previewCommand creates the preview command for rendering the family
// graph as a node-link diagram.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		detailed   bool
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "preview [file.ged]",
		Short: "Render a node-link preview of the family graph",
		Long: `Render a node-link preview of the family graph via Graphviz.

The preview is a quick structural view, independent of the canvas
layout: parent-child links as arrows and couples joined with dashed
lines. Formats: svg (default) and dot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Input:    args[0],
				Formats:  parseFormats(formatsStr),
				Detailed: detailed,
				Refresh:  refresh,
			}
			return c.runPreview(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include lifespan and birthplace in node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache for this run")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
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

	spinner := newSpinner(ctx, "Rendering preview...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Preview failed")
		return err
	}
	spinner.Stop()

	printSuccess("Preview rendered")
	printStats(result.Stats.Persons, result.Stats.Clusters, result.CacheInfo.RenderHit)
	return writeArtifacts(result.Artifacts, opts.Formats, opts.Input, output)
}

// writeArtifacts writes rendered previews to disk. With one format the
// output flag names the file directly; with several it is a base path
// that gets the format as extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
