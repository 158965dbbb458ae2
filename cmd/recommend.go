package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetops-io/servicesched/config"
	"github.com/fleetops-io/servicesched/core/engine"
	infrafleet "github.com/fleetops-io/servicesched/infra/fleet"
)

var recommendVehicleID string

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print the charge recommendation for one vehicle",
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendVehicleID, "vehicle", "", "vehicle id (required)")
	_ = recommendCmd.MarkFlagRequired("vehicle")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	src := infrafleet.NewFileSource(cfg.Fleet.File)
	vehicles, err := src.Vehicles(context.Background())
	if err != nil {
		return err
	}

	for _, v := range vehicles {
		if v.ID != recommendVehicleID {
			continue
		}
		rec := engine.GetChargeRecommendation(v, cfg.Pricing, time.Now())
		fmt.Printf("vehicle:   %s (SoC %.0f%%)\n", v.ID, v.SoC)
		fmt.Printf("charger:   %s (%.0f kW)\n", rec.Charger, rec.PowerKW)
		fmt.Printf("energy:    %.1f kWh over %d min\n", rec.EnergyKWh, rec.DurationMinutes)
		fmt.Printf("cost now:  $%.2f  off-peak: $%.2f  (saves $%.2f)\n", rec.CostNow, rec.CostOffPeak, rec.Savings)
		fmt.Printf("risk:      %s\n", rec.Risk)
		if rec.ChargeNow {
			fmt.Println("advice:    charge now")
		} else {
			fmt.Printf("advice:    wait for %s\n", rec.RecommendedStart.Format("15:04"))
		}
		fmt.Printf("reason:    %s\n", rec.Reason)
		return nil
	}
	return fmt.Errorf("vehicle %q not found in %s", recommendVehicleID, cfg.Fleet.File)
}
