package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MeKo-Tech/widen/internal/config"
	"github.com/MeKo-Tech/widen/internal/logging"
	"github.com/MeKo-Tech/widen/internal/models"
	"github.com/MeKo-Tech/widen/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// viperKeyAnnotation marks a flag with the config key it overrides.
const viperKeyAnnotation = "widen_viper_key"

// app holds the state shared by one command tree.
type app struct {
	loader  *config.Loader
	cfgFile string
	cfg     *config.Config
	closer  io.Closer
}

// Execute runs the command tree on the global viper instance.
func Execute() {
	if err := NewRootCommand(config.NewLoader()).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds a fresh command tree reading configuration through
// loader. Tests pass a loader on a private viper instance.
func NewRootCommand(loader *config.Loader) *cobra.Command {
	a := &app{loader: loader}

	rootCmd := &cobra.Command{
		Use:   "widen",
		Short: "Reframe images onto a 3840x2160 canvas",
		Long: `widen converts images of any aspect ratio into 3840x2160 (16:9 4K) frames.

Portrait images are cleaned up (watermark blur, whitespace trim), scaled to
the canvas height and widened with blurred edge panels. Landscape images are
cropped vertically around the subject. By default the crop strategies run in
the order face (anchored at the hair top), body, center; edge-density
cropping is optional and enabled with --strategies. Square images are
skipped.

Examples:
  widen image portrait-10000px.jpg
  widen batch photos/ --recursive --report-format csv
  widen config init
  widen detectors`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closer != nil {
				_ = a.closer.Close()
				a.closer = nil
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "",
		"config file (default is widen.yaml in ., $HOME, $HOME/.config/widen, /etc/widen)")
	flags.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("models-dir", "", "directory containing detector models (env "+models.EnvModelsDir+")")
	flags.Bool("version", false, "print version information and exit")
	bindKey(flags, "verbose", "verbose")
	bindKey(flags, "log-level", "log_level")
	bindKey(flags, "models-dir", "models_dir")

	rootCmd.AddCommand(
		newImageCommand(a),
		newBatchCommand(a),
		newConfigCommand(a),
		newDetectorsCommand(a),
	)
	return rootCmd
}

// bindKey records which config key a flag overrides. The binding itself
// happens in setup, for the flags of the command that actually runs.
func bindKey(fs *pflag.FlagSet, flag, key string) {
	_ = fs.SetAnnotation(flag, viperKeyAnnotation, []string{key})
}

// setup binds the running command's flags, loads the configuration and
// installs the default logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v := a.loader.GetViper()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys, ok := f.Annotations[viperKeyAnnotation]; ok && len(keys) > 0 {
			if err := v.BindPFlag(keys[0], f); err != nil && bindErr == nil {
				bindErr = err
			}
		}
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg

	closer, err := logging.Setup(cfg.LoggingOptions())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.closer = closer
	return nil
}

// config returns the loaded configuration, defaults if setup never ran.
func (a *app) config() *config.Config {
	if a.cfg == nil {
		cfg := config.DefaultConfig()
		a.cfg = &cfg
	}
	return a.cfg
}
