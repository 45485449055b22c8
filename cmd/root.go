package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the agentdesk application
var rootCmd = &cobra.Command{
	Use:   "agentdesk",
	Short: "MCP server for scheduling, vendor and knowledge tools",
	Long: `agentdesk serves Model Context Protocol tools to AI agents: calendar
availability and bookings through Cal.com, a user's vendors and transactions
from the Teleperson CRM, website contextualization, and answers from a
vendor knowledge base.

It can run as:
  - An MCP server over stdio, SSE or streamable HTTP (serve)
  - A one-shot availability check (check-availability)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "agentdesk version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckAvailabilityCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
