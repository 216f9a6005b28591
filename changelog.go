package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bicommit/internal/config"
	"bicommit/internal/core"
	"bicommit/internal/git"
	"bicommit/internal/tui"
)

var (
	changelogCountFlag   int
	changelogGrepFlag    string
	changelogAuthorFlag  string
	changelogSinceFlag   string
	changelogUntilFlag   string
	changelogAPIKeyFlag  string
	changelogModelFlag   string
	changelogBaseURLFlag string
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Summarize recent commits into a bilingual changelog",
	Run:   runChangelog,
}

var (
	logCountFlag  int
	logGrepFlag   string
	logAuthorFlag string
	logSinceFlag  string
	logUntilFlag  string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the commit log",
	Run:   runLog,
}

func init() {
	changelogCmd.Flags().IntVarP(&changelogCountFlag, "count", "n", 10, "Number of commits to summarize")
	changelogCmd.Flags().StringVar(&changelogGrepFlag, "grep", "", "Only commits containing this text")
	changelogCmd.Flags().StringVar(&changelogAuthorFlag, "author", "", "Only commits by this author")
	changelogCmd.Flags().StringVar(&changelogSinceFlag, "since", "", "Commits since date (e.g. '2024-01-01' or '1 week ago')")
	changelogCmd.Flags().StringVar(&changelogUntilFlag, "until", "", "Commits until date")
	changelogCmd.Flags().StringVar(&changelogAPIKeyFlag, "api-key", "", "API key for the AI service (overrides config and env)")
	changelogCmd.Flags().StringVar(&changelogModelFlag, "model", "", "AI model to use (overrides config)")
	changelogCmd.Flags().StringVar(&changelogBaseURLFlag, "base-url", "", "Custom API base URL")

	logCmd.Flags().IntVarP(&logCountFlag, "count", "n", 10, "Number of commits to show")
	logCmd.Flags().StringVar(&logGrepFlag, "grep", "", "Only commits containing this text")
	logCmd.Flags().StringVar(&logAuthorFlag, "author", "", "Only commits by this author")
	logCmd.Flags().StringVar(&logSinceFlag, "since", "", "Commits since date")
	logCmd.Flags().StringVar(&logUntilFlag, "until", "", "Commits until date")
}

func runChangelog(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	commits, err := git.GetCommits(git.LogOptions{
		Count:  changelogCountFlag,
		Grep:   changelogGrepFlag,
		Author: changelogAuthorFlag,
		Since:  changelogSinceFlag,
		Until:  changelogUntilFlag,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to read commit log")
		os.Exit(1)
	}
	if len(commits) == 0 {
		fmt.Println("No commits found")
		return
	}

	c, err := newCore(cfg, changelogAPIKeyFlag, changelogModelFlag, changelogBaseURLFlag)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize AI client")
		os.Exit(1)
	}

	changelogCtx := core.ChangelogContext{
		TotalCommits: len(commits),
		DateRange:    dateRange(commits),
	}

	spinner := tui.NewSpinner()
	spinner.Start("Generating changelog...")
	summary, err := c.GenerateChangelog(context.Background(), commits, changelogCtx)
	spinner.Stop()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate changelog")
		os.Exit(1)
	}

	fmt.Println(summary.FormatDisplay())
}

// dateRange spans oldest to newest commit; git log is newest first.
func dateRange(commits []git.CommitInfo) string {
	if len(commits) == 0 {
		return ""
	}
	newest := commits[0].Time
	oldest := commits[len(commits)-1].Time
	return fmt.Sprintf("%s ~ %s", oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
}

func runLog(cmd *cobra.Command, args []string) {
	commits, err := git.GetCommits(git.LogOptions{
		Count:  logCountFlag,
		Grep:   logGrepFlag,
		Author: logAuthorFlag,
		Since:  logSinceFlag,
		Until:  logUntilFlag,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to read commit log")
		os.Exit(1)
	}
	if len(commits) == 0 {
		fmt.Println("No commits found")
		return
	}

	fmt.Printf("Changelog (%d commits)\n\n", len(commits))
	for _, c := range commits {
		fmt.Printf("%s %s - %s (%s)\n", c.ShortID, c.Time.Format("2006-01-02 15:04"), c.Summary, c.Author)
	}
}
