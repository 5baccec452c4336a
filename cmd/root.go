package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/model"
	"github.com/abhisek/earlyedge/internal/model/onnx"
	"github.com/abhisek/earlyedge/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:          "earlyedge",
	Short:        "Learning difficulty screening service",
	Long:         "EarlyEdge scores children's answers on spelling, handwriting, speech, arithmetic, number sense, tracing and letter confusion screens.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides EARLYEDGE_CONFIG env var)")
	rootCmd.PersistentFlags().String("models-dir", "", "Directory holding model artifacts")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding CSV datasets")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration with flags taking priority over the
// environment, which takes priority over the config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("EARLYEDGE_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("models-dir"); v != "" {
		cfg.ModelsDir = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadRegistry loads every enabled screen. The returned cleanup releases
// the onnx runtime when it was initialized.
func loadRegistry(cfg config.Config, logger *log.Logger) (*pipeline.Registry, func(), error) {
	cleanup := func() {}
	var opts pipeline.Options
	if cfg.ONNXLibrary != "" {
		if err := onnx.Init(cfg.ONNXLibrary); err != nil {
			return nil, cleanup, fmt.Errorf("init onnx runtime: %w", err)
		}
		cleanup = func() {
			if err := onnx.Shutdown(); err != nil {
				logger.Printf("onnx shutdown: %v", err)
			}
		}
		opts.Factories = map[string]model.Factory{onnx.TypeName: onnx.Factory()}
	}
	reg, err := pipeline.Load(cfg, logger, opts)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return reg, cleanup, nil
}
