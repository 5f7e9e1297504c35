package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	coremon "github.com/kilianp07/v2genv/core/monitoring"
	"github.com/kilianp07/v2genv/pkg/export"
)

var stepCmd = &cobra.Command{
	Use:   "step [actions...]",
	Short: "Reset the environment and apply the given actions in order",
	Example: `  v2genv step 5 -3.5 0
  v2genv step --format csv -- 10 -10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStep,
}

func init() {
	rootCmd.AddCommand(stepCmd)
}

func parseActions(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", a, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func runStep(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	actions, err := parseActions(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, cleanup, err := newService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { coremon.Recover(recover()) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ts, err := svc.Steps(ctx, actions)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), f, ts)
}
