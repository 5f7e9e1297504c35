package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2genv/app/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the price sources, agents and metrics sinks compiled in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := plugins.Available()
		w := cmd.OutOrStdout()
		if format == "json" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		}
		_, err := fmt.Fprintf(w, "pricing: %s\nagents:  %s\nsinks:   %s\n",
			strings.Join(c.Pricing, ", "), strings.Join(c.Agents, ", "), strings.Join(c.Sinks, ", "))
		return err
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
