package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/ds124wfegd/item-analyzer/internal/appServer"
	"github.com/spf13/cobra"
)

var composeOutput string

var composeCmd = &cobra.Command{
	Use:   "compose FILE...",
	Short: "Stack photos into the composite JPEG sent to the model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeOutput, "output", "o", "composite.jpg", "output JPEG path")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	images, err := localImages(args)
	if err != nil {
		return err
	}

	comp := appServer.NewCompositor(cfg.Analyze)
	composite, err := comp.Compose(context.Background(), images)
	if err != nil {
		return err
	}
	payload, err := comp.Encode(composite)
	if err != nil {
		return err
	}

	if err := os.WriteFile(composeOutput, payload.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", composeOutput, err)
	}

	b := composite.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d, %d bytes)\n", composeOutput, b.Dx(), b.Dy(), payload.Len())
	return nil
}
