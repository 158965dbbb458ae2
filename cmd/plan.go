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

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one engine pass and print the ranked queue",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	src := infrafleet.NewFileSource(cfg.Fleet.File)
	vehicles, err := src.Vehicles(context.Background())
	if err != nil {
		return err
	}

	now := time.Now()
	queue := engine.GeneratePriorityQueue(vehicles, cfg.Engine.Thresholds, cfg.Pricing, now)
	bundles := engine.GenerateBundles(queue, cfg.Engine.Thresholds)

	fmt.Printf("%-12s %-14s %8s %8s  %s\n", "VEHICLE", "SERVICE", "URGENCY", "SCORE", "PREDICTED")
	for _, n := range queue {
		fmt.Printf("%-12s %-14s %8.1f %8.1f  %s\n",
			n.VehicleID, n.Service, n.Urgency, n.Composite, n.PredictedDate.Format("2006-01-02 15:04"))
	}
	if len(bundles) > 0 {
		fmt.Println()
		for _, b := range bundles {
			fmt.Printf("bundle %s: %s + %v (saves %d min)\n", b.VehicleID, b.PrimaryService, b.BundledServices, b.TimeSavedMinutes)
		}
	}
	return nil
}
