// Command ignitionctl is the command-line client for ignitiond: it
// issues create/delete/query/find requests over HTTP and renders the
// responses as tables.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"ignition/internal/ctlclient"
)

var version = "dev"

var serverAddr string

var rootCmd = &cobra.Command{
	Use:   "ignitionctl",
	Short: "Command-line client for the infrastructure-driver service",
	Long: `ignitionctl talks to a running ignitiond over HTTP, issuing
create, delete, query, and find infrastructure requests and rendering
the responses as tables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "ignitiond base URL")
}

func client() *ctlclient.Client {
	return ctlclient.New(serverAddr)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
