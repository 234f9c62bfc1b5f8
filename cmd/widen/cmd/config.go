package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/widen/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the widen configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		// An existing broken config must not block writing a fresh one.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			name := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				name = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.GenerateDefaultConfigFile(name, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", name)
			return err
		},
	}
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config()
			format, _ := cmd.Flags().GetString("format")

			var out []byte
			var err error
			switch format {
			case "yaml":
				out, err = cfg.ToYAML()
			case "json":
				out, err = json.MarshalIndent(cfg, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unsupported format: %s (must be yaml or json)", format)
			}
			if err != nil {
				return err
			}
			if used := a.loader.GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	showCmd.Flags().String("format", "yaml", "output format: yaml, json")

	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "List the directories searched for widen.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range config.GetConfigSearchPaths() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathsCmd)
	return cmd
}
