package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/transfer"
)

var (
	verbosity int
	dryRun    bool

	rootCmd = &cobra.Command{
		Use:   "monja",
		Short: "A layered dotfiles synchronizer",
		Long: `monja keeps your dotfiles in a plain repo of layered sets and copies
them in and out of your home directory, letting git handle versioning
and history. Later sets override earlier ones, so machine- or
role-specific sets can sit on top of a common base.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without executing them")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newSetCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadProfile assembles the runtime profile from the standard locations:
// the profile document in the config dir, the home directory as the
// local root, and the data dir for the index generations.
func loadProfile() (*config.Profile, error) {
	cfg, err := config.LoadProfileConfig(paths.ProfileConfigPath())
	if err != nil {
		return nil, err
	}
	localRoot, err := homeRoot()
	if err != nil {
		return nil, err
	}
	return config.NewProfile(cfg, localRoot, paths.DataDir())
}

func homeRoot() (paths.AbsolutePath, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return paths.AbsolutePath{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return paths.ForExistingPath(home)
}

// newTransfer builds the rsync transfer, verbose whenever -v is given.
func newTransfer() transfer.Transfer {
	return transfer.Rsync{Verbose: verbosity >= 1}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("monja version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion script",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}
