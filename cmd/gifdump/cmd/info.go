package cmd

import (
	"fmt"

	"github.com/deepteams/gifcore"
	"github.com/spf13/cobra"
)

func defineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "info <path>",
		Short:        "Print stream-level metadata for a GIF file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
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

	log.Infof("parsed %s", args[0])

	fmt.Printf("file:        %s\n", args[0])
	fmt.Printf("size:        %d x %d\n", d.Width(), d.Height())
	fmt.Printf("frames:      %d\n", d.FrameCount())
	loop := d.LoopCount()
	if loop < 0 {
		fmt.Printf("loop count:  forever\n")
	} else {
		fmt.Printf("loop count:  %d\n", loop)
	}
	if status == gifcore.StatusPartialDecode {
		fmt.Printf("note:        stream is truncated; trailing frames were dropped\n")
	}
	return nil
}
