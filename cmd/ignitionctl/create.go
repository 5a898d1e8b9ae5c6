package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var (
	createTemplate           string
	createTemplateType       string
	createProperties         string
	createSystemProperties   string
	createDeploymentLocation string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create infrastructure from a template",
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createTemplate, "template", "", "template document (required)")
	createCmd.Flags().StringVar(&createTemplateType, "template-type", "", "template type (required)")
	createCmd.Flags().StringVar(&createProperties, "properties", "", "JSON object of template properties")
	createCmd.Flags().StringVar(&createSystemProperties, "system-properties", "{}", "JSON object of system properties (required)")
	createCmd.Flags().StringVar(&createDeploymentLocation, "deployment-location", "{}", "JSON object describing the deployment location (required)")
	_ = createCmd.MarkFlagRequired("template")
	_ = createCmd.MarkFlagRequired("template-type")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	properties, err := parseJSONObject(createProperties)
	if err != nil {
		return fmt.Errorf("--properties: %w", err)
	}
	systemProperties, err := parseJSONObject(createSystemProperties)
	if err != nil {
		return fmt.Errorf("--system-properties: %w", err)
	}
	deploymentLocation, err := parseJSONObject(createDeploymentLocation)
	if err != nil {
		return fmt.Errorf("--deployment-location: %w", err)
	}

	c := client()
	resp, err := c.CreateInfrastructure(cmd.Context(), createTemplate, createTemplateType, systemProperties, properties, deploymentLocation)
	if err != nil {
		return err
	}

	ctlclient.PrintCreateOrDelete(resp)
	return nil
}
