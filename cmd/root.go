// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "o1x3",
	Short: "Keeps the profile README's open source section fresh.",
	Long: `o1x3 maintains the generated sections of a GitHub profile README:
merged pull requests to external repositories and the most-used languages
across owned repositories, rendered as Markdown and patched in between
marker comments.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Pick up GITHUB_TOKEN from a local .env when present, so local runs
	// behave like CI.
	cobra.OnInitialize(func() { _ = godotenv.Load() })

	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
