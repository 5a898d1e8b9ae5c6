package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var (
	findTemplate           string
	findTemplateType       string
	findInstanceName       string
	findDeploymentLocation string
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find an existing infrastructure instance by name",
	RunE:  runFind,
}

func init() {
	findCmd.Flags().StringVar(&findTemplate, "template", "", "template document (required)")
	findCmd.Flags().StringVar(&findTemplateType, "template-type", "", "template type (required)")
	findCmd.Flags().StringVar(&findInstanceName, "instance-name", "", "instance name to search for (required)")
	findCmd.Flags().StringVar(&findDeploymentLocation, "deployment-location", "{}", "JSON object describing the deployment location (required)")
	_ = findCmd.MarkFlagRequired("template")
	_ = findCmd.MarkFlagRequired("template-type")
	_ = findCmd.MarkFlagRequired("instance-name")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	deploymentLocation, err := parseJSONObject(findDeploymentLocation)
	if err != nil {
		return fmt.Errorf("--deployment-location: %w", err)
	}

	c := client()
	resp, err := c.FindInfrastructure(cmd.Context(), findTemplate, findTemplateType, findInstanceName, deploymentLocation)
	if err != nil {
		return err
	}

	ctlclient.PrintFindResult(resp)
	return nil
}
