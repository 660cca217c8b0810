package operations

import (
	"context"
	"sort"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/local"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
	"github.com/arthur-debert/monja/pkg/transfer"
)

// PullResult reports what a pull placed locally, grouped by winning set
// in target order, plus the files that lost ownership since the previous
// pull and can be cleaned.
type PullResult struct {
	FilesPulled    []SetFiles
	CleanableFiles []paths.LocalFilePath
}

// Pull layers the target sets onto the local tree and rotates the index
// generations: the computed ownership becomes "current", the pre-pull
// current becomes "previous".
func Pull(ctx context.Context, profile *config.Profile, t transfer.Transfer, opts Options) (*PullResult, error) {
	logger := logging.GetLogger("pull")

	repoState, errs := repo.InitializeFullState(profile.RepoRoot, profile.Special)
	if len(errs) > 0 {
		return nil, &RepoStateError{Errs: errs}
	}

	winners, missingErr := mergeLayers(repoState, profile.Config.TargetSets)
	if missingErr != nil {
		return nil, missingErr
	}

	bySet := groupWinners(winners)
	updated := index.New()
	for localPath, record := range winners {
		updated.Set(localPath, record.OwningSet)
	}

	if !opts.DryRun {
		for _, name := range profile.Config.TargetSets {
			records, ok := bySet[name]
			if !ok {
				// No files won for this set; nothing to transfer.
				continue
			}
			set, _ := repoState.Set(name)

			// With shortcut foo/bar and file baz, the transfer is
			// repo/set/baz -> local/foo/bar/baz: source is the set root,
			// dest is the shortcut mount, the listed path is baz.
			files := make([]string, len(records))
			for i, r := range records {
				files[i] = r.PathInSet
			}
			sort.Strings(files)

			if err := t.Copy(ctx, set.Root.String(), set.Shortcut.AbsUnder(profile.LocalRoot), files); err != nil {
				return nil, err
			}
		}
	}

	// The pre-pull current generation becomes the new previous one.
	prev, err := index.Load(profile.DataRoot, index.Current)
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := updated.Save(profile.DataRoot, index.Current); err != nil {
			return nil, err
		}
		if err := prev.Save(profile.DataRoot, index.Previous); err != nil {
			return nil, err
		}
	}

	cleanable, err := cleanableFiles(profile, prev, updated)
	if err != nil {
		return nil, err
	}

	pulled := make(map[repo.SetName][]paths.LocalFilePath, len(bySet))
	for name, records := range bySet {
		for _, r := range records {
			pulled[name] = append(pulled[name], r.LocalPath)
		}
	}

	logger.Info().
		Int("sets", len(bySet)).
		Int("files", len(winners)).
		Int("cleanable", len(cleanable)).
		Bool("dryRun", opts.DryRun).
		Msg("Pull finished")

	return &PullResult{
		FilesPulled:    groupInOrder(profile.Config.TargetSets, pulled),
		CleanableFiles: cleanable,
	}, nil
}

// cleanableFiles diffs two index generations, keeping only entries that
// are still on disk and not covered by the ignore file.
func cleanableFiles(profile *config.Profile, old, current *index.FileIndex) ([]paths.LocalFilePath, error) {
	matcher, err := local.LoadIgnore(profile.LocalRoot)
	if err != nil {
		return nil, err
	}
	unignored, err := local.UnignoredSet(profile.LocalRoot, profile.RepoRoot, profile.Special, matcher)
	if err != nil {
		return nil, err
	}
	return index.DiffRemoved(old, current, func(p paths.LocalFilePath) bool {
		return unignored[p]
	}), nil
}
