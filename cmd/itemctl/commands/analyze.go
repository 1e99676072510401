package commands

import (
	"context"
	"encoding/json"

	"github.com/ds124wfegd/item-analyzer/internal/appServer"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE...",
	Short: "Run the full analysis for local photos and print the item as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	images, err := localImages(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.Server.AnalyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.AnalyzeTimeout)
		defer cancel()
	}

	deps, err := appServer.NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	resp, err := deps.Service.Analyze(ctx, images)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
