package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/operations"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
	"github.com/arthur-debert/monja/pkg/style"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Layer the target sets onto your local files",
	Long: `Copy files from every target set to their local locations. When a file
exists in more than one set, the set listed last in the profile wins.
The ownership of each pulled file is recorded, which is what push and
clean act on later.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		result, err := operations.Pull(cmd.Context(), profile, newTransfer(), operations.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderPull(result, dryRun))
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Copy locally changed tracked files back into their sets",
	Long: `Copy every tracked local file back to the set that owns it. Push refuses
to run when the recorded ownership no longer matches the repo, for
example after a set was renamed or a file moved between sets; the
conflicting files are listed instead so you can repair them with put.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		result, err := operations.Push(cmd.Context(), profile, newTransfer(), operations.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderPush(result, dryRun))
		return nil
	},
}

var putNoIndex bool

var putCmd = &cobra.Command{
	Use:   "put <set> <file>...",
	Short: "Copy local files directly into a set",
	Long: `Copy the given files into a set, bypassing the push consistency gate,
and record the new ownership. This is both how new files enter the repo
and how drifted files that block push get repaired.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		files, err := resolveLocalFiles(profile, args[1:])
		if err != nil {
			return err
		}
		result, err := operations.Put(profile, files, repo.SetName(args[0]), !putNoIndex, operations.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderPut(result, dryRun))
		return nil
	},
}

var cleanFull bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove local files that lost ownership",
	Long: `Delete local files whose owning set stopped providing them since the
previous pull. With --full, instead recompute local state from scratch
and delete everything untracked or inconsistent; that is a much bigger
hammer, check  ` + "`monja status`" + ` first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		mode := operations.CleanIndex
		if cleanFull {
			mode = operations.CleanFull
		}
		result, err := operations.Clean(profile, mode, operations.Options{DryRun: dryRun})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderClean(result, dryRun))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show how local files relate to the repo",
	Long: `Classify every local file against the repo: waiting to be pushed,
untracked, inconsistent with the recorded ownership, or stale since the
last pull. An optional path limits the report to that subtree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := loadProfile()
		if err != nil {
			return err
		}
		var scope paths.LocalFilePath
		if len(args) == 1 {
			scoped, err := resolveLocalFiles(profile, args[:1])
			if err != nil {
				return err
			}
			scope = scoped[0]
		}
		result, err := operations.Status(profile, scope)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), style.RenderStatus(result))
		return nil
	},
}

// resolveLocalFiles validates CLI path arguments against the local root,
// resolving relative ones against the current directory.
func resolveLocalFiles(profile *config.Profile, args []string) ([]paths.LocalFilePath, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine current directory: %w", err)
	}
	baseDir, err := paths.ForExistingPath(cwd)
	if err != nil {
		return nil, err
	}

	out := make([]paths.LocalFilePath, 0, len(args))
	for _, arg := range args {
		p, err := paths.NewLocalFilePath(profile.LocalRoot, arg, baseDir)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func init() {
	putCmd.Flags().BoolVar(&putNoIndex, "no-index", false, "Copy into the set without recording ownership")
	cleanCmd.Flags().BoolVar(&cleanFull, "full", false, "Delete everything untracked or inconsistent, not just stale files")
}
