package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bicommit/internal/clients/anthropic"
	"bicommit/internal/clients/openai"
	"bicommit/internal/config"
	"bicommit/internal/core"
	"bicommit/internal/git"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "bicommit",
	Short: "Generate bilingual AI commit messages and changelogs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
	Run: runStatus,
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show raw AI responses and other diagnostics")

	rootCmd.AddCommand(commitCmd, changelogCmd, logCmd, diffCmd, statusCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// newCore builds the generation pipeline from config plus command-line
// overrides. Flag values win over the config file.
func newCore(cfg config.Config, apiKeyFlag, modelFlag, baseURLFlag string) (*core.Core, error) {
	apiKey := apiKeyFlag
	if apiKey == "" {
		apiKey = cfg.GetAPIKey()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key provided; set %s or use --api-key", cfg.AI.APIKeyEnv)
	}

	model := modelFlag
	if model == "" {
		model = cfg.AI.Model
	}

	baseURL := baseURLFlag
	if baseURL == "" {
		baseURL = cfg.AI.BaseURL
	}

	var provider core.Provider
	switch cfg.AI.Provider {
	case "openai":
		provider = openai.NewClient(apiKey, model, baseURL)
	case "anthropic":
		provider = anthropic.NewClient(apiKey, model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AI.Provider)
	}

	return core.New(provider, cfg.AI.MaxTokens), nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository status",
	Run:   runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	if !git.IsRepository() {
		fmt.Println("Not a Git repository ✗")
		fmt.Println("Tip: Run 'git init' to initialize a Git repository")
		os.Exit(1)
	}

	status, err := git.GetStatus()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get git status")
		os.Exit(1)
	}

	fmt.Println("Git repository detected ✓")
	if status.IsClean() {
		fmt.Println("Working tree clean ✓")
	} else {
		fmt.Println("Uncommitted changes detected ✗")
		fmt.Println()
		printFileSection("Modified files", "M", status.ModifiedFiles)
		printFileSection("New files", "A", status.NewFiles)
		printFileSection("Deleted files", "D", status.DeletedFiles)
		printFileSection("Renamed files", "R", status.RenamedFiles)
		fmt.Printf("Total uncommitted changes: %d\n", status.TotalChanges())
	}

	branch, err := git.GetBranchName()
	if err == nil && branch != "" {
		fmt.Printf("\nCurrent branch: %s\n", branch)
	}
}

func printFileSection(title, marker string, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, file := range files {
		fmt.Printf("  %s %s\n", marker, file)
	}
	fmt.Println()
}

var diffStagedFlag bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show git diff",
	Run: func(cmd *cobra.Command, args []string) {
		var diff string
		var err error
		if diffStagedFlag {
			diff, err = git.GetDiff(true)
		} else {
			diff, err = git.GetCombinedDiff()
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to get diff")
			os.Exit(1)
		}
		if diff == "" {
			fmt.Println("No changes to show")
			return
		}
		fmt.Println(diff)
	},
}

var (
	initLocalFlag bool
	initForceFlag bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := config.Init(initLocalFlag, initForceFlag)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create config file")
			os.Exit(1)
		}
		fmt.Printf("✓ Configuration file created at: %s\n\n", path)
		fmt.Println("Next steps:")
		fmt.Println("  1. Edit the config file to set your API provider and model")
		fmt.Println("  2. Set your API key in the configured environment variable:")
		fmt.Println("     export OPENAI_API_KEY=\"your-api-key\"")
		fmt.Println("     # or")
		fmt.Println("     export ANTHROPIC_API_KEY=\"your-api-key\"")
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffStagedFlag, "staged", false, "Show staged changes only")
	initCmd.Flags().BoolVar(&initLocalFlag, "local", false, "Create config in current directory instead of home")
	initCmd.Flags().BoolVar(&initForceFlag, "force", false, "Force overwrite existing config")
}
