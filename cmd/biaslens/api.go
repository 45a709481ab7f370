package main

import (
	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running biaslens server via HTTP.

These commands require a running server (biaslens serve).
Use --server to specify a custom server URL. Authenticated commands read
the session token from the BIASLENS_TOKEN environment variable.

Examples:
  biaslens api health                     # Check server health
  biaslens api analyze "some text"        # Analyze text for bias
  biaslens api analyses list              # List stored analyses`,
}

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "Stored analysis history commands",
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Account and session commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8000", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Analysis commands at top level of api
	apiCmd.AddCommand((&endpoints.AnalyzeEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.AnalyzeLLMEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.AnalyzeSimpleEndpoint{}).Command(getServerURL))

	// Auth as subcommand group
	authCmd.AddCommand((&endpoints.RegisterEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.LoginEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.LogoutEndpoint{}).Command(getServerURL))

	// Analysis history as subcommand group
	analysesCmd.AddCommand((&endpoints.ListAnalysesEndpoint{}).Command(getServerURL))
	analysesCmd.AddCommand((&endpoints.GetAnalysisEndpoint{}).Command(getServerURL))
	analysesCmd.AddCommand((&endpoints.DeleteAnalysisEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(authCmd)
	apiCmd.AddCommand(analysesCmd)
	rootCmd.AddCommand(apiCmd)
}
