package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ds124wfegd/item-analyzer/config"
	"github.com/ds124wfegd/item-analyzer/internal/appServer"
	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "itemctl",
	Short: "Compose item photos and run the item analysis pipeline locally",
	Long: `itemctl runs the same compositor and extraction client as the HTTP service.
It reads ./config/config.yaml, the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		level := "warn"
		if verbose {
			level = "debug"
		}
		appServer.ConfigureLogging(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	v, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return config.ParseConfig(v)
}

// localImages turns file paths into upload parts, keeping argument order.
func localImages(paths []string) ([]entity.RawImage, error) {
	images := make([]entity.RawImage, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}

		p := path
		images = append(images, entity.RawImage{
			Filename: info.Name(),
			Size:     info.Size(),
			Open:     func() (io.ReadCloser, error) { return os.Open(p) },
		})
	}
	return images, nil
}
