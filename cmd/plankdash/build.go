package main

import (
	"fmt"

	"github.com/hyperengineering/plankdash/internal/generate"
	"github.com/hyperengineering/plankdash/internal/site"
	"github.com/spf13/cobra"
)

var buildToday string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the snapshot and assemble the static site",
	Long: "Run one generation, then recreate the dist directory with " +
		"index.html, src/ and the snapshot. Prints the dist path.",
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildToday, "today", "",
		"Reference date YYYY-MM-DD (defaults to the current UTC date)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	res, err := gen.Generate(cmd.Context(), generate.Options{Today: buildToday})
	if err != nil {
		return err
	}

	dist, err := site.Build(cfg.Site, res.Output)
	if err != nil {
		return fmt.Errorf("build site: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), dist)
	return nil
}
