package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/v2genv/core/pricing"
)

var priceHours int

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Print the prices the configured source yields from the epoch on",
	RunE:  runPrices,
}

func init() {
	pricesCmd.Flags().IntVar(&priceHours, "hours", 24, "number of hourly prices")
	rootCmd.AddCommand(pricesCmd)
}

type hourPrice struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

func runPrices(cmd *cobra.Command, args []string) error {
	if priceHours <= 0 {
		return fmt.Errorf("hours must be positive, got %d", priceHours)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setup(cfg); err != nil {
		return err
	}
	src, err := pricing.New(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("price source: %w", err)
	}
	out := make([]hourPrice, 0, priceHours)
	for i := 0; i < priceHours; i++ {
		at := cfg.Env.Epoch.Add(time.Duration(i) * time.Hour)
		out = append(out, hourPrice{Time: at, Price: src.NextPrice(at)})
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, p := range out {
		if _, err := fmt.Fprintf(w, "%s %.4f\n", p.Time.Format(time.RFC3339), p.Price); err != nil {
			return err
		}
	}
	return nil
}
