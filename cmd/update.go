// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/o1x3/o1x3/internal/gateway"
	"github.com/o1x3/o1x3/internal/readme"
	"github.com/o1x3/o1x3/internal/render"
	"github.com/o1x3/o1x3/internal/usecase"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches merged external PRs and top languages, then patches the README",
	Long: `Collects the user's merged pull requests against repositories they do
not own, ranks their most-used languages by byte share, renders both as
Markdown, and replaces the marker-bounded sections of the README.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		debugLog := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			debugLog.SetOutput(os.Stderr) // If verbose, log to standard error.
		}
		progress := log.New(os.Stdout, "", 0)
		errLog := log.New(os.Stderr, "", 0)

		// Get other flags.
		username, _ := cmd.Flags().GetString("username")
		readmePath, _ := cmd.Flags().GetString("readme")
		style, _ := cmd.Flags().GetString("style")
		languages, _ := cmd.Flags().GetString("languages")

		cfg, err := render.ParseConfig(style, languages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// An empty token still works, at the platform's anonymous rate limit.
		token := os.Getenv("GITHUB_TOKEN")

		// Inject dependencies and run the pipeline.
		githubGateway, err := gateway.NewGitHubGateway(token, debugLog, errLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		collector := usecase.NewCollector(githubGateway, progress)
		contributions, err := collector.Collect(ctx, username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect contributions: %v\n", err)
			os.Exit(1)
		}

		aggregator := usecase.NewLanguageAggregator(githubGateway, progress)
		shares, err := aggregator.TopLanguages(ctx, username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate languages: %v\n", err)
			os.Exit(1)
		}

		err = readme.Patch(readmePath, func(content string) string {
			if cfg.Style == render.StyleTable {
				// The richer layout owns two independent marker pairs.
				content = readme.ReplaceSection(content, readme.SectionStart, readme.SectionEnd,
					render.Contributions(contributions, cfg.Style))
				content = readme.ReplaceSection(content, readme.LanguagesStart, readme.LanguagesEnd,
					render.Languages(shares, cfg.Languages))
			} else {
				content = readme.ReplaceSection(content, readme.SectionStart, readme.SectionEnd,
					render.Section(shares, contributions, cfg))
			}
			return readme.UpdateTimestamp(content, time.Now())
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to update %s: %v\n", readmePath, err)
			os.Exit(1)
		}
		progress.Printf("Updated %s", readmePath)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("username", "u", "", "GitHub user whose contributions are collected (required)")
	updateCmd.MarkFlagRequired("username")
	updateCmd.Flags().String("readme", "README.md", "Path of the README to patch")
	updateCmd.Flags().String("style", "flat", `Contributions layout: "flat" or "table"`)
	updateCmd.Flags().String("languages", "inline", `Language layout: "inline" or "bars"`)
}
