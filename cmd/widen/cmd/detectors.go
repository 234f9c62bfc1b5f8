package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/MeKo-Tech/widen/internal/detector"
	"github.com/MeKo-Tech/widen/internal/models"
	"github.com/spf13/cobra"
)

func newDetectorsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "Show which face and body backends are available",
		Long: `Initialize the configured detector backends once and report their state,
followed by the model files they load and whether those files exist.

A backend that fails here is skipped by the crop cascade at run time.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pcfg, err := a.config().ToPipelineConfig()
			if err != nil {
				return err
			}
			reg := detector.NewRegistry(pcfg.Detector)
			defer func() { _ = reg.Close() }()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ROLE\tBACKEND\tSTATUS")
			for _, s := range reg.Status() {
				status := "available"
				if !s.Available {
					status = "unavailable"
					if s.Err != nil {
						status += ": " + s.Err.Error()
					}
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Role, s.Backend, status)
			}

			_, _ = fmt.Fprintln(tw)
			_, _ = fmt.Fprintf(tw, "MODEL\tBACKEND\tPATH (%s)\n", pcfg.ModelsDir)
			for _, m := range models.ListAvailableModels() {
				path := models.ResolveModelPath(pcfg.ModelsDir, m.Type, m.Filename)
				state := "found"
				if err := models.ValidateModelExists(path); err != nil {
					state = "missing"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s (%s)\n", m.Name, m.Backend, path, state)
			}
			return tw.Flush()
		},
	}
}
