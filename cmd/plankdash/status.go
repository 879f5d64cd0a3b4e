package main

import (
	"errors"
	"fmt"

	"github.com/hyperengineering/plankdash/pkg/plankclient"
	"github.com/spf13/cobra"
)

var (
	statusURL  string
	statusJSON bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a running dashboard server",
	Long: "Query a running plankdash server for its health and the streak " +
		"summary of its current snapshot.",
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "",
		"Server base URL (defaults to http://server.host:server.port)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false,
		"Output in JSON format")
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseURL := statusURL
	if baseURL == "" {
		cfg, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		baseURL = "http://" + cfg.ListenAddr()
	}

	client, err := plankclient.New(baseURL)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	snap, err := client.Snapshot(ctx)
	if err != nil && !errors.Is(err, plankclient.ErrNotFound) {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if statusJSON {
		out := map[string]any{"health": health}
		if snap != nil {
			out["dateRange"] = snap.DateRange
			out["summary"] = snap.Summary
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Server:          %s (%s, version %s)\n", baseURL, health.Status, health.Version)
	if snap == nil {
		fmt.Fprintln(w, "Snapshot:        none generated yet")
		return nil
	}
	fmt.Fprintf(w, "Generated:       %s\n", snap.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(w, "Range:           %s .. %s\n", snap.DateRange.Start, snap.DateRange.End)
	fmt.Fprintf(w, "Current streak:  %d\n", snap.Summary.CurrentStreak)
	fmt.Fprintf(w, "Longest streak:  %d\n", snap.Summary.LongestStreak)
	fmt.Fprintf(w, "Total planks:    %d of %d days\n", snap.Summary.TotalPlanks, snap.Summary.TrackedDays)
	return nil
}
