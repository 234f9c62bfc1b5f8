package cmd

import (
	"fmt"
	"os"

	"github.com/MeKo-Tech/widen/internal/pipeline"
	"github.com/MeKo-Tech/widen/internal/utils"
	"github.com/spf13/cobra"
)

func newImageCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Convert a single image",
		Long: `Convert one image onto the 3840x2160 canvas.

Supported formats: JPEG, PNG, BMP, TIFF, WebP

The output is written next to the other results in the output directory,
named after the input with "-10000px" removed and "-4k" appended, unless
--output names the file explicitly. Square images are reported and skipped.

Examples:
  widen image portrait-10000px.jpg
  widen image landscape.png --strategies face,center --debug-dir debug/
  widen image photo.jpg --output out.webp --format webp --json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImage(cmd, args[0])
		},
	}
	addConversionFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "explicit output file path")
	cmd.Flags().Bool("json", false, "print the conversion result as JSON")
	return cmd
}

func (a *app) runImage(cmd *cobra.Command, input string) error {
	if !utils.IsSupportedImage(input) {
		return fmt.Errorf("unsupported file type: %s (supported: %v)", input, utils.SupportedImageExtensions)
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("cannot access %s: %w", input, err)
	}

	cfg := a.config()
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = namingFor(cfg).OutputPath(cfg.Output.Dir, input)
	}

	conv, err := newConverter(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	res, err := conv.Process(cmd.Context(), input, output)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		s, err := pipeline.ToJSON(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	}

	w := cmd.OutOrStdout()
	switch res.Outcome {
	case pipeline.OutcomeSkipped:
		_, err = fmt.Fprintf(w, "Skipped %s: square image (%dx%d)\n", input, res.SourceWidth, res.SourceHeight)
	default:
		_, err = fmt.Fprintf(w, "Wrote %s (%s %dx%d", res.OutputPath, res.Orientation, res.SourceWidth, res.SourceHeight)
		if err == nil && res.Decision != nil {
			_, err = fmt.Fprintf(w, ", crop %s at y=%d", res.Decision.Strategy, res.Decision.CropY)
		}
		if err == nil && res.Layout != nil {
			_, err = fmt.Fprintf(w, ", %s", res.Layout.Branch)
		}
		if err == nil {
			_, err = fmt.Fprintln(w, ")")
		}
	}
	return err
}
