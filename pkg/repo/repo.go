// Package repo loads the repo-side state: the immediate subdirectories of
// the repo root become sets, each set's files are mapped to the local
// destinations its shortcut declares. The state is rebuilt from scratch on
// every operation and never persisted.
package repo

import (
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
)

// SetName identifies a set. Case-sensitive, structural equality; must be
// a valid path segment in both trees. The empty name is rejected at
// profile-load time.
type SetName string

func (n SetName) String() string {
	return string(n)
}

// FileRecord maps one repo file to its local destination.
type FileRecord struct {
	OwningSet SetName

	// PathInSet is the slash-separated path relative to the set
	// directory.
	PathInSet string

	// LocalPath is shortcut + PathInSet.
	LocalPath paths.LocalFilePath
}

// Set is one layered collection of files under the repo root.
type Set struct {
	Name     SetName
	Shortcut paths.SetShortcut
	Root     paths.AbsolutePath

	// Files is keyed by local destination path.
	Files map[paths.LocalFilePath]FileRecord
}

// TracksFile reports whether the set maps anything to the given local
// path.
func (s *Set) TracksFile(p paths.LocalFilePath) bool {
	_, ok := s.Files[p]
	return ok
}

// RepoPathFor returns the absolute repo-side path a local file maps to
// inside this set. It fails when the local path does not live under the
// set's shortcut.
func (s *Set) RepoPathFor(p paths.LocalFilePath) (string, error) {
	sub, ok := s.Shortcut.StripFrom(p)
	if !ok {
		return "", errors.Newf(errors.ErrSetInvalid,
			"local path %q is not under the shortcut of set %q", p.Rel(), s.Name).
			WithDetail("shortcut", s.Shortcut.Rel())
	}
	return s.Root.Join(filepath.FromSlash(sub)), nil
}

// State is the full repo snapshot for one invocation.
type State struct {
	Sets map[SetName]*Set
}

// Set returns the named set, if present.
func (st *State) Set(name SetName) (*Set, bool) {
	s, ok := st.Sets[name]
	return s, ok
}

// InitializeFullState walks the repo root and builds the state for every
// set. Errors are accumulated, not short-circuited: every set is
// attempted so one misconfigured set does not hide problems in another.
// The state is returned only when the error list is empty.
func InitializeFullState(repoRoot paths.AbsolutePath, special paths.SpecialFiles) (*State, []error) {
	logger := logging.GetLogger("repo")

	entries, err := os.ReadDir(repoRoot.String())
	if err != nil {
		return nil, []error{errors.Wrap(err, errors.ErrRepoLoad, "cannot read repo root").
			WithDetail("path", repoRoot.String())}
	}

	var errs []error
	candidates := make([]SetName, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !utf8.ValidString(name) {
			errs = append(errs, errors.Newf(errors.ErrSetInvalid,
				"set directory name is not valid UTF-8: %q", name))
			continue
		}
		candidates = append(candidates, SetName(name))
	}

	sets := make(map[SetName]*Set, len(candidates))
	for _, name := range candidates {
		set, setErrs := loadSet(repoRoot, name, special)
		if len(setErrs) > 0 {
			errs = append(errs, setErrs...)
			continue
		}
		sets[name] = set
		logger.Trace().
			Str("set", name.String()).
			Str("shortcut", set.Shortcut.Rel()).
			Int("files", len(set.Files)).
			Msg("Loaded set")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	logger.Debug().Int("sets", len(sets)).Msg("Repo state initialized")
	return &State{Sets: sets}, nil
}

// loadSet builds a single set: its shortcut from the optional set config,
// then a full walk of its directory recording files only. Walk errors are
// collected and the walk continues.
func loadSet(repoRoot paths.AbsolutePath, name SetName, special paths.SpecialFiles) (*Set, []error) {
	setDir := repoRoot.Join(name.String())

	cfg, err := LoadSetConfig(setDir)
	if err != nil {
		return nil, []error{err}
	}
	shortcut, err := paths.NewSetShortcut(cfg.Shortcut)
	if err != nil {
		return nil, []error{errors.Wrapf(err, errors.ErrSetInvalid,
			"set %q has an invalid shortcut", name)}
	}

	root, err := paths.ForExistingPath(setDir)
	if err != nil {
		return nil, []error{errors.Wrapf(err, errors.ErrSetAccess,
			"cannot resolve directory of set %q", name)}
	}

	var errs []error
	files := make(map[paths.LocalFilePath]FileRecord)
	walkErr := filepath.WalkDir(root.String(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrRepoWalk,
				"error walking set %q", name))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if special.IsSpecial(path) {
			return nil
		}

		pathInSet, err := filepath.Rel(root.String(), path)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrRepoWalk,
				"cannot relativize %q in set %q", path, name))
			return nil
		}
		pathInSet = filepath.ToSlash(pathInSet)

		localPath, err := shortcut.JoinLocal(pathInSet)
		if err != nil {
			errs = append(errs, err)
			return nil
		}

		files[localPath] = FileRecord{
			OwningSet: name,
			PathInSet: pathInSet,
			LocalPath: localPath,
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, errors.Wrapf(walkErr, errors.ErrRepoWalk,
			"error walking set %q", name))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &Set{
		Name:     name,
		Shortcut: shortcut,
		Root:     root,
		Files:    files,
	}, nil
}
