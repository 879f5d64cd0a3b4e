package main

import (
	"fmt"

	"github.com/hyperengineering/plankdash/internal/config"
	"github.com/hyperengineering/plankdash/internal/generate"
	"github.com/hyperengineering/plankdash/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	generateToday  string
	generateOutput string
	generateSource string
	generateJSON   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Derive the snapshot once and write it",
	Long: "Read the tracking files, build the day timeline and scores, and " +
		"write the snapshot atomically. Prints the output path.",
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateToday, "today", "",
		"Reference date YYYY-MM-DD (defaults to the current UTC date)")
	generateCmd.Flags().StringVar(&generateOutput, "output", "",
		"Snapshot path (overrides output.path)")
	generateCmd.Flags().StringVar(&generateSource, "source", "",
		"Source directory (skips candidate resolution)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false,
		"Print a JSON run summary instead of the path")
}

// newGenerator wires the publisher configured in cfg into a Generator.
func newGenerator(cfg *config.Config) (*generate.Generator, error) {
	pub, err := snapshot.NewPublisher(cfg.Publish)
	if err != nil {
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	return generate.New(cfg, generate.WithPublisher(pub)), nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	res, err := gen.Generate(cmd.Context(), generate.Options{
		Today:     generateToday,
		SourceDir: generateSource,
		Output:    generateOutput,
	})
	if err != nil {
		return err
	}

	if generateJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"runId":         res.RunID,
			"today":         res.Today,
			"source":        res.SourceDir,
			"output":        res.Output,
			"days":          len(res.Snapshot.Days),
			"currentStreak": res.Snapshot.Summary.CurrentStreak,
			"longestStreak": res.Snapshot.Summary.LongestStreak,
			"warnings":      len(res.Warnings),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Output)
	return nil
}
