package cmd

import (
	"fmt"

	"github.com/deepteams/gifcore"
	"github.com/spf13/cobra"
)

func defineFramesCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "frames <path>",
		Short:        "List each frame's delay (disposal methods are not shown)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runFrames,
	}
}

func runFrames(cmd *cobra.Command, args []string) error {
	opts, err := loadOverrides(overridesPath, defaultRunOptions())
	if err != nil {
		return err
	}

	buf, err := readFile(args[0])
	if err != nil {
		return err
	}

	d := gifcore.NewDecoder(nil, opts.Sample)
	status := d.Read(buf)
	if status == gifcore.StatusFormatError || status == gifcore.StatusOpenError {
		return fmt.Errorf("gifdump: %s is not a readable GIF stream (status %d)", args[0], status)
	}

	n := d.FrameCount()
	for i := 0; i < n; i++ {
		fmt.Printf("frame %4d: delay=%5dms\n", i, d.Delay(i))
	}
	return nil
}
