package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var (
	watchInfrastructureID   string
	watchRequestID          string
	watchDeploymentLocation string
	watchInterval           time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll an infrastructure task until it reaches a terminal state",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInfrastructureID, "infrastructure-id", "", "infrastructure ID (required)")
	watchCmd.Flags().StringVar(&watchRequestID, "request-id", "", "request ID (required)")
	watchCmd.Flags().StringVar(&watchDeploymentLocation, "deployment-location", "{}", "JSON object describing the deployment location (required)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 3*time.Second, "polling interval")
	_ = watchCmd.MarkFlagRequired("infrastructure-id")
	_ = watchCmd.MarkFlagRequired("request-id")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	deploymentLocation, err := parseJSONObject(watchDeploymentLocation)
	if err != nil {
		return fmt.Errorf("--deployment-location: %w", err)
	}

	c := client()
	ctx := cmd.Context()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " waiting for task to finish..."
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		resp, err := c.GetInfrastructureTask(ctx, watchInfrastructureID, watchRequestID, deploymentLocation)
		if err != nil {
			s.Stop()
			return err
		}

		status, _ := resp["status"].(string)
		switch status {
		case "COMPLETE", "FAILED":
			s.Stop()
			ctlclient.PrintTask(resp)
			return nil
		}

		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
