package operations

import (
	"context"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/local"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
	"github.com/arthur-debert/monja/pkg/transfer"
)

// PushResult reports what was copied back into the repo, grouped by
// owning set.
type PushResult struct {
	FilesPushed []SetFiles

	// Untracked surfaces files with no index entry. They are not pushed,
	// but the partition is reported rather than swallowed.
	Untracked []paths.LocalFilePath
}

// Push copies locally-changed tracked files back into their owning sets.
// It is gated on consistency: if any indexed file's set is gone from the
// repo, or no longer tracks that file, nothing is transferred and both
// violation partitions are returned in full. A partial push would
// silently desynchronize the index from reality.
func Push(ctx context.Context, profile *config.Profile, t transfer.Transfer, opts Options) (*PushResult, error) {
	logger := logging.GetLogger("push")

	repoState, errs := repo.InitializeFullState(profile.RepoRoot, profile.Special)
	if len(errs) > 0 {
		return nil, &RepoStateError{Errs: errs}
	}

	idx, err := index.Load(profile.DataRoot, index.Current)
	if err != nil {
		return nil, err
	}
	matcher, err := local.LoadIgnore(profile.LocalRoot)
	if err != nil {
		return nil, err
	}

	state, err := local.RetrieveState(profile.LocalRoot, profile.RepoRoot, idx, repoState, profile.Special, matcher)
	if err != nil {
		return nil, err
	}

	if !state.IsConsistent() {
		return nil, &ConsistencyError{
			MissingSets:  state.MissingSets,
			MissingFiles: state.MissingFiles,
		}
	}

	grouped := groupInOrder(profile.Config.TargetSets, state.ToPush)
	if !opts.DryRun {
		for _, group := range grouped {
			// The gate guarantees the set exists and tracks every file.
			set, _ := repoState.Set(group.Set)

			files := make([]string, 0, len(group.Files))
			for _, p := range group.Files {
				sub, ok := set.Shortcut.StripFrom(p)
				if !ok {
					// Cannot happen for a tracked file; the record was
					// derived from the shortcut in the first place.
					continue
				}
				files = append(files, sub)
			}

			if err := t.Copy(ctx, set.Shortcut.AbsUnder(profile.LocalRoot), set.Root.String(), files); err != nil {
				return nil, err
			}
		}
	}

	logger.Info().
		Int("sets", len(grouped)).
		Int("untracked", len(state.Untracked)).
		Bool("dryRun", opts.DryRun).
		Msg("Push finished")

	return &PushResult{FilesPushed: grouped, Untracked: sortedFiles(state.Untracked)}, nil
}
