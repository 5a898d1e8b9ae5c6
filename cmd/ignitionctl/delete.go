package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var (
	deleteInfrastructureID     string
	deleteDeploymentLocation   string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a provisioned infrastructure instance",
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteInfrastructureID, "infrastructure-id", "", "infrastructure ID to delete (required)")
	deleteCmd.Flags().StringVar(&deleteDeploymentLocation, "deployment-location", "{}", "JSON object describing the deployment location (required)")
	_ = deleteCmd.MarkFlagRequired("infrastructure-id")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	deploymentLocation, err := parseJSONObject(deleteDeploymentLocation)
	if err != nil {
		return fmt.Errorf("--deployment-location: %w", err)
	}

	c := client()
	resp, err := c.DeleteInfrastructure(cmd.Context(), deleteInfrastructureID, deploymentLocation)
	if err != nil {
		return err
	}

	ctlclient.PrintCreateOrDelete(resp)
	return nil
}
