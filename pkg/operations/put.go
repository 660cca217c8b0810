package operations

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// FileSets pairs one local file with a list of set names.
type FileSets struct {
	File paths.LocalFilePath
	Sets []repo.SetName
}

// PutResult reports a put plus the follow-up facts the user needs:
// whether the destination set is targeted at all, which higher-precedence
// sets would shadow each file on the next pull, and which files remain
// untracked by any targeted set even after the operation.
type PutResult struct {
	OwningSet repo.SetName
	Files     []paths.LocalFilePath

	SetIsTargeted    bool
	FilesInLaterSets []FileSets
	Untracked        []paths.LocalFilePath
}

// Put copies local files directly into the destination set, bypassing
// the index and the consistency gate. With updateIndex it also records
// the new ownership in the current generation, which is exactly the
// repair for drift that blocks push.
func Put(profile *config.Profile, files []paths.LocalFilePath, owningSet repo.SetName, updateIndex bool, opts Options) (*PutResult, error) {
	logger := logging.GetLogger("put")

	repoState, errs := repo.InitializeFullState(profile.RepoRoot, profile.Special)
	if len(errs) > 0 {
		return nil, &RepoStateError{Errs: errs}
	}

	dest, ok := repoState.Set(owningSet)
	if !ok {
		return nil, errors.Newf(errors.ErrSetNotFound, "set %q not found in repo", owningSet)
	}

	idx := index.New()
	if updateIndex {
		loaded, err := index.Load(profile.DataRoot, index.Current)
		if err != nil {
			return nil, err
		}
		idx = loaded
	}

	owningRank := targetRank(profile.Config.TargetSets, owningSet)

	tracked := make(map[paths.LocalFilePath]bool)
	later := make(map[paths.LocalFilePath][]repo.SetName)
	result := make([]paths.LocalFilePath, 0, len(files))
	for _, path := range files {
		if !opts.DryRun {
			if err := copyToSet(profile, dest, path); err != nil {
				return nil, err
			}
		}

		for name, set := range repoState.Sets {
			// The loaded repo does not yet reflect the file we just
			// placed, so the destination set counts as tracking it,
			// provided that set is targeted at all.
			isDest := owningRank >= 0 && name == owningSet
			if !isDest && !set.TracksFile(path) {
				continue
			}

			tracked[path] = true

			if rank := targetRank(profile.Config.TargetSets, name); rank > owningRank && name != owningSet {
				later[path] = append(later[path], name)
			}
		}

		result = append(result, path)

		if updateIndex {
			idx.Set(path, owningSet)
		}
	}

	if updateIndex && !opts.DryRun {
		if err := idx.Save(profile.DataRoot, index.Current); err != nil {
			return nil, err
		}
	}

	var untracked []paths.LocalFilePath
	for _, p := range result {
		if !tracked[p] {
			untracked = append(untracked, p)
		}
	}

	laterList := make([]FileSets, 0, len(later))
	for p, sets := range later {
		sort.Slice(sets, func(i, j int) bool { return sets[i] < sets[j] })
		laterList = append(laterList, FileSets{File: p, Sets: sets})
	}
	sort.Slice(laterList, func(i, j int) bool { return laterList[i].File.Rel() < laterList[j].File.Rel() })

	logger.Info().
		Str("set", owningSet.String()).
		Int("files", len(result)).
		Bool("indexUpdated", updateIndex && !opts.DryRun).
		Bool("dryRun", opts.DryRun).
		Msg("Put finished")

	return &PutResult{
		OwningSet:        owningSet,
		Files:            result,
		SetIsTargeted:    owningRank >= 0,
		FilesInLaterSets: laterList,
		Untracked:        untracked,
	}, nil
}

// targetRank returns the position of a set in the target order, or -1
// when the set is not targeted. Untargeted ranks sort below every
// targeted one, so a targeted set always shadows an untargeted
// destination.
func targetRank(targets []repo.SetName, name repo.SetName) int {
	for i, t := range targets {
		if t == name {
			return i
		}
	}
	return -1
}

// copyToSet places one local file at its repo-side location in the set,
// creating intermediate directories.
func copyToSet(profile *config.Profile, set *repo.Set, path paths.LocalFilePath) error {
	src := path.Abs(profile.LocalRoot)
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return errors.Newf(errors.ErrInvalidInput, "not a regular file: %s", src)
	}

	dst, err := set.RepoPathFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create destination directory in set").
			WithDetail("path", filepath.Dir(dst))
	}

	return copyFile(src, dst, info.Mode())
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot open source file").
			WithDetail("path", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return errors.Wrap(err, errors.ErrFileCreate, "cannot create file in set").
			WithDetail("path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrap(err, errors.ErrFileWrite, "cannot copy file into set").
			WithDetail("path", dst)
	}
	return out.Close()
}
