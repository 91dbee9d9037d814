package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshift/config"
	"github.com/kilianp07/loadshift/infra/input"
	"github.com/kilianp07/loadshift/infra/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the input tables without solving",
	RunE:  validateInputs,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateInputs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	data, err := input.Load(cfg.Inputs)
	if err != nil {
		return fmt.Errorf("validate inputs: %w", err)
	}
	logg := logger.New("validate")
	logg.Infof("inputs valid: %d zones, %d steps, %d cycles",
		len(data.Params.Zones), data.Grid.Len(), len(data.Grid.Cycles()))
	return nil
}
