package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/abhisek/earlyedge/internal/config"
	"github.com/abhisek/earlyedge/internal/ui/report"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect model artifacts",
}

var modelsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every enabled screen and report its model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rows := checkModels(cfg)
		fmt.Fprint(cmd.OutOrStdout(), report.Render(rows))
		if n := report.Failed(rows); n > 0 {
			return fmt.Errorf("%d of %d screens failed to load", n, len(rows))
		}
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsCheckCmd)
}

// checkModels loads each enabled screen on its own so one bad artifact
// does not hide the state of the others.
func checkModels(cfg config.Config) []report.Row {
	quiet := log.New(io.Discard, "", 0)
	var rows []report.Row
	for _, name := range config.AllModalities {
		if !cfg.Enabled(name) {
			continue
		}
		one := cfg
		one.Modalities = []string{name}
		reg, cleanup, err := loadRegistry(one, quiet)
		if err != nil {
			rows = append(rows, report.Row{Modality: name, Err: err})
			continue
		}
		m := reg.Modalities()[0].Model()
		rows = append(rows, report.Row{
			Modality:   name,
			Model:      m.Name(),
			Kind:       m.Kind(),
			Features:   m.NumFeatures(),
			Classes:    m.Classes(),
			Calibrated: m.Calibrated(),
		})
		cleanup()
	}
	return rows
}
