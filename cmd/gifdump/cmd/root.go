package cmd

import (
	"os"

	"github.com/deepteams/gifcore/internal/gifcorelog"
	"github.com/spf13/cobra"
)

const appName = "gifdump"

var log = gifcorelog.New()

// overridesPath is bound to --overrides on the root command so every
// subcommand can read JSON per-run tuning values (currently just the
// downsample factor) via gjson without each subcommand redefining the flag.
var overridesPath string

func Execute() error {
	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        appName + " - animated GIF inspection and rendering tool",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&overridesPath, "overrides", "", "path to a JSON file overriding run options")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			log.SetLevel(gifcorelog.LevelDebug)
		}
		return nil
	}

	rootCmd.AddCommand(defineInfoCommand())
	rootCmd.AddCommand(defineFramesCommand())
	rootCmd.AddCommand(defineRenderCommand())

	return rootCmd.Execute()
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
