package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/monja/pkg/operations"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
	"github.com/arthur-debert/monja/pkg/style"
)

var (
	initRepoDir string
	initSetName string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up monja for this machine",
	Long: `Create the profile, the repo directory with a first set, a starter
ignore file and a repo README. Point --repo-dir at an existing clone to
adopt a repo that already has sets.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		localRoot, err := homeRoot()
		if err != nil {
			return err
		}

		repoDir := initRepoDir
		if repoDir == "" {
			repoDir = paths.DefaultRepoDir()
		}
		if !filepath.IsAbs(repoDir) {
			repoDir = localRoot.Join(repoDir)
		}
		if !dryRun {
			if err := os.MkdirAll(repoDir, 0755); err != nil {
				return fmt.Errorf("cannot create repo directory: %w", err)
			}
		}
		repoRoot, err := paths.ForExistingPath(repoDir)
		if err != nil && !dryRun {
			return err
		}

		// Record the repo dir relative to home when it lives under it,
		// which keeps the profile portable between machines.
		relRepoDir := repoDir
		if rel, relErr := filepath.Rel(localRoot.String(), repoDir); relErr == nil && filepath.IsLocal(rel) {
			relRepoDir = rel
		}

		spec := operations.InitSpec{
			ProfileConfigPath: paths.ProfileConfigPath(),
			LocalRoot:         localRoot,
			RepoRoot:          repoRoot,
			DataRoot:          paths.DataDir(),
			RelativeRepoDir:   relRepoDir,
			InitialSetName:    repo.SetName(initSetName),
		}
		result, err := operations.Init(spec, operations.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderInit(result, dryRun))
		return nil
	},
}

var newSetCmd = &cobra.Command{
	Use:   "new-set <name> [<file>...]",
	Short: "Create a set, optionally seeding it with local files",
	Long: `Create a set in the repo and append it to your target sets. When files
are given they are moved in right away and the set's shortcut is derived
from their common parent directory, so they keep their local locations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		files, err := resolveLocalFiles(profile, args[1:])
		if err != nil {
			return err
		}
		result, err := operations.NewSet(profile, paths.ProfileConfigPath(), repo.SetName(args[0]), files, operations.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderNewSet(result, dryRun))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initRepoDir, "repo-dir", "", "Repo location (default: the monja data dir)")
	initCmd.Flags().StringVar(&initSetName, "set", "base", "Name of the initial set")
}
