package cmd

import (
	"fmt"
	"image/png"
	"os"
	"strconv"

	"github.com/deepteams/gifcore"
	"github.com/spf13/cobra"
)

func defineRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "render <path> <frame-index> <out.png>",
		Short:        "Composite a single frame and write it out as PNG",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE:         runRender,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	opts, err := loadOverrides(overridesPath, defaultRunOptions())
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("gifdump: invalid frame index %q: %w", args[1], err)
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

	if index < 0 || index >= d.FrameCount() {
		return fmt.Errorf("gifdump: frame index %d out of range (0..%d)", index, d.FrameCount()-1)
	}

	// Composite every frame up to and including index: the compositor
	// carries disposal state forward frame-by-frame, so rendering frame N
	// correctly requires replaying frames 0..N in order.
	for i := 0; i < index; i++ {
		d.Advance()
		d.GetCurrentFrame()
	}
	d.Advance()
	fr, status := d.GetCurrentFrame()
	if fr == nil {
		return fmt.Errorf("gifdump: failed to render frame %d (status %d)", index, status)
	}
	log.Debugf("rendered frame %d with status %d", index, status)

	out, err := os.Create(args[2])
	if err != nil {
		return err
	}
	defer out.Close()

	return png.Encode(out, gifcore.NewImage(fr))
}
