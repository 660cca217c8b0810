package operations

import (
	"os"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/local"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// CleanMode selects what counts as stale.
type CleanMode int

const (
	// CleanIndex deletes exactly the diff between the two persisted
	// index generations. Fast: no repo walk.
	CleanIndex CleanMode = iota

	// CleanFull recomputes local state and deletes everything untracked
	// or inconsistent. Authoritative but walks both trees.
	CleanFull
)

// CleanResult lists the files deleted (or, under dry-run, the files that
// would have been).
type CleanResult struct {
	FilesCleaned []paths.LocalFilePath
}

// Clean removes stale local files. Each deletion failure aborts the
// remainder of the batch rather than being skipped.
func Clean(profile *config.Profile, mode CleanMode, opts Options) (*CleanResult, error) {
	switch mode {
	case CleanFull:
		return fullClean(profile, opts)
	default:
		return indexClean(profile, opts)
	}
}

func indexClean(profile *config.Profile, opts Options) (*CleanResult, error) {
	logger := logging.GetLogger("clean")

	curr, err := index.Load(profile.DataRoot, index.Current)
	if err != nil {
		return nil, err
	}
	prev, err := index.Load(profile.DataRoot, index.Previous)
	if err != nil {
		return nil, err
	}

	toClean, err := cleanableFiles(profile, prev, curr)
	if err != nil {
		return nil, err
	}

	if err := removeAll(profile, toClean, opts); err != nil {
		return nil, err
	}

	logger.Info().Int("files", len(toClean)).Bool("dryRun", opts.DryRun).Msg("Index clean finished")
	return &CleanResult{FilesCleaned: toClean}, nil
}

func fullClean(profile *config.Profile, opts Options) (*CleanResult, error) {
	logger := logging.GetLogger("clean")

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

	var toClean []paths.LocalFilePath
	toClean = append(toClean, state.Untracked...)
	for _, files := range state.MissingSets {
		toClean = append(toClean, files...)
	}
	for _, files := range state.MissingFiles {
		toClean = append(toClean, files...)
	}
	toClean = sortedFiles(toClean)

	if err := removeAll(profile, toClean, opts); err != nil {
		return nil, err
	}

	logger.Info().Int("files", len(toClean)).Bool("dryRun", opts.DryRun).Msg("Full clean finished")
	return &CleanResult{FilesCleaned: toClean}, nil
}

func removeAll(profile *config.Profile, files []paths.LocalFilePath, opts Options) error {
	if opts.DryRun {
		return nil
	}
	for _, f := range files {
		if err := os.Remove(f.Abs(profile.LocalRoot)); err != nil {
			return errors.Wrap(err, errors.ErrFileRemove, "failed to remove file").
				WithDetail("path", f.Rel())
		}
	}
	return nil
}
