package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var (
	queryInfrastructureID   string
	queryRequestID          string
	queryDeploymentLocation string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the status of an infrastructure task",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryInfrastructureID, "infrastructure-id", "", "infrastructure ID (required)")
	queryCmd.Flags().StringVar(&queryRequestID, "request-id", "", "request ID (required)")
	queryCmd.Flags().StringVar(&queryDeploymentLocation, "deployment-location", "{}", "JSON object describing the deployment location (required)")
	_ = queryCmd.MarkFlagRequired("infrastructure-id")
	_ = queryCmd.MarkFlagRequired("request-id")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	deploymentLocation, err := parseJSONObject(queryDeploymentLocation)
	if err != nil {
		return fmt.Errorf("--deployment-location: %w", err)
	}

	c := client()
	resp, err := c.GetInfrastructureTask(cmd.Context(), queryInfrastructureID, queryRequestID, deploymentLocation)
	if err != nil {
		return err
	}

	ctlclient.PrintTask(resp)
	return nil
}
