package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bicommit/internal/config"
	"bicommit/internal/core"
	"bicommit/internal/git"
	"bicommit/internal/tui"
	"bicommit/internal/utils"
)

var (
	commitAPIKeyFlag  string
	commitModelFlag   string
	commitBaseURLFlag string
	commitAutoFlag    bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate and apply an AI commit message",
	Run:   runCommit,
}

func init() {
	commitCmd.Flags().StringVar(&commitAPIKeyFlag, "api-key", "", "API key for the AI service (overrides config and env)")
	commitCmd.Flags().StringVar(&commitModelFlag, "model", "", "AI model to use (overrides config)")
	commitCmd.Flags().StringVar(&commitBaseURLFlag, "base-url", "", "Custom API base URL")
	commitCmd.Flags().BoolVarP(&commitAutoFlag, "auto", "a", false, "Commit without confirmation")
}

func runCommit(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	status, err := git.GetStatus()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get git status")
		os.Exit(1)
	}
	if status.IsClean() {
		log.Info().Msg("No changes to commit")
		return
	}

	if cfg.Commit.AutoStage {
		if err := git.Add(); err != nil {
			log.Error().Err(err).Msg("Failed to stage changes")
			os.Exit(1)
		}
	}

	diff, err := git.GetCombinedDiff()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get diff")
		os.Exit(1)
	}
	if diff == "" {
		log.Info().Msg("No changes detected")
		return
	}

	c, err := newCore(cfg, commitAPIKeyFlag, commitModelFlag, commitBaseURLFlag)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize AI client")
		os.Exit(1)
	}

	branch, err := git.GetBranchName()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to resolve branch name")
	}
	added, removed := git.CountChangedLines(diff)

	commitCtx := core.CommitContext{
		BranchName:   branch,
		FileCount:    status.TotalChanges(),
		AddedLines:   added,
		RemovedLines: removed,
	}

	for {
		message, err := generate(c, diff, commitCtx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate commit message")
			os.Exit(1)
		}

		again, err := handleCommitMessage(message)
		if err != nil {
			log.Error().Err(err).Msg("Failed to handle commit message")
			os.Exit(1)
		}
		if !again {
			return
		}
		log.Info().Msg("Regenerating commit message...")
	}
}

func generate(c *core.Core, diff string, commitCtx core.CommitContext) (string, error) {
	spinner := tui.NewSpinner()
	spinner.Start("Generating commit message...")
	commit, err := c.GenerateCommit(context.Background(), diff, commitCtx)
	spinner.Stop()
	if err != nil {
		return "", err
	}
	return commit.FormatConventional(), nil
}

// handleCommitMessage shows the confirmation menu and performs the chosen
// action. It reports true when the user asked for a regeneration.
func handleCommitMessage(message string) (bool, error) {
	if commitAutoFlag {
		return false, applyCommit(message)
	}

	if !utils.IsTTY() {
		fmt.Printf("Generated commit message:\n\n%s\n\n", message)
		fmt.Println("Run with --auto to apply this commit automatically in non-interactive environments.")
		return false, nil
	}

	action, err := tui.Confirm(message)
	if err != nil {
		return false, err
	}

	switch action {
	case tui.CommitThis:
		return false, applyCommit(message)
	case tui.CopyToClipboard:
		if err := clipboard.WriteAll(message); err != nil {
			return false, fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		log.Info().Msg("Commit message copied to clipboard.")
		return false, nil
	case tui.Regenerate:
		return true, nil
	default:
		log.Info().Msg("Commit aborted.")
		return false, nil
	}
}

func applyCommit(message string) error {
	if err := git.Commit(message); err != nil {
		return err
	}
	log.Info().Msg("Commit successfully created!")
	return nil
}
