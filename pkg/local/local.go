// Package local walks the local tree and classifies every discovered
// file against the file index and the repo state. The classification is
// read-only and side-effect-free; push's consistency gate and status both
// call it.
package local

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// State holds the four disjoint partitions of locally-discovered files.
// ToPush, MissingSets and MissingFiles are grouped by the set name the
// index recorded for each file.
type State struct {
	// ToPush: indexed, set exists, set still tracks the path.
	ToPush map[repo.SetName][]paths.LocalFilePath

	// MissingSets: indexed, but the recorded set is absent from the repo.
	MissingSets map[repo.SetName][]paths.LocalFilePath

	// MissingFiles: indexed, set exists, but no longer tracks the path.
	MissingFiles map[repo.SetName][]paths.LocalFilePath

	// Untracked: no index entry at all.
	Untracked []paths.LocalFilePath
}

// IsConsistent reports whether push may proceed: nothing the index
// records contradicts the repo.
func (s *State) IsConsistent() bool {
	return len(s.MissingSets) == 0 && len(s.MissingFiles) == 0
}

// Walk returns every file under localRoot, relative to it, in walk
// order. It skips directories themselves, everything under repoRoot,
// reserved filenames, and anything the ignore matcher claims. Hidden
// files are included unless the ignore file says otherwise. The first
// walk error aborts: a partial picture of local state is worse than none.
func Walk(localRoot, repoRoot paths.AbsolutePath, special paths.SpecialFiles, matcher IgnoreMatcher) ([]paths.LocalFilePath, error) {
	var files []paths.LocalFilePath

	err := filepath.WalkDir(localRoot.String(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(err, errors.ErrLocalWalk, "error walking local files").
				WithDetail("path", path)
		}

		rel, relErr := filepath.Rel(localRoot.String(), path)
		if relErr != nil {
			return errors.Wrap(relErr, errors.ErrLocalWalk, "cannot relativize local path").
				WithDetail("path", path)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == repoRoot.String() {
				return filepath.SkipDir
			}
			if rel != "." && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if strings.HasPrefix(path, repoRoot.String()+string(filepath.Separator)) {
			return nil
		}
		if special.IsSpecial(path) {
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}

		local, err := paths.NewLocalRelPath(rel)
		if err != nil {
			return err
		}
		files = append(files, local)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// RetrieveState walks the local tree once and classifies every file
// against the index and the repo state. Neither input is mutated.
func RetrieveState(localRoot, repoRoot paths.AbsolutePath, idx *index.FileIndex, repoState *repo.State, special paths.SpecialFiles, matcher IgnoreMatcher) (*State, error) {
	logger := logging.GetLogger("local")

	files, err := Walk(localRoot, repoRoot, special, matcher)
	if err != nil {
		return nil, err
	}

	state := &State{
		ToPush:       make(map[repo.SetName][]paths.LocalFilePath),
		MissingSets:  make(map[repo.SetName][]paths.LocalFilePath),
		MissingFiles: make(map[repo.SetName][]paths.LocalFilePath),
	}

	for _, localPath := range files {
		setName, ok := idx.Lookup(localPath)
		if !ok {
			state.Untracked = append(state.Untracked, localPath)
			continue
		}

		set, ok := repoState.Set(setName)
		if !ok {
			state.MissingSets[setName] = append(state.MissingSets[setName], localPath)
			continue
		}

		if !set.TracksFile(localPath) {
			state.MissingFiles[setName] = append(state.MissingFiles[setName], localPath)
			continue
		}

		state.ToPush[setName] = append(state.ToPush[setName], localPath)
	}

	logger.Debug().
		Int("toPush", len(state.ToPush)).
		Int("missingSets", len(state.MissingSets)).
		Int("missingFiles", len(state.MissingFiles)).
		Int("untracked", len(state.Untracked)).
		Msg("Local state classified")
	return state, nil
}

// UnignoredSet returns the walk result as a membership set, used to keep
// the index diff honest about what is actually still on disk and not
// ignored.
func UnignoredSet(localRoot, repoRoot paths.AbsolutePath, special paths.SpecialFiles, matcher IgnoreMatcher) (map[paths.LocalFilePath]bool, error) {
	files, err := Walk(localRoot, repoRoot, special, matcher)
	if err != nil {
		return nil, err
	}
	set := make(map[paths.LocalFilePath]bool, len(files))
	for _, f := range files {
		set[f] = true
	}
	return set, nil
}
