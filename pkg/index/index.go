// Package index persists the local-path -> owning-set mapping monja
// records on every pull. Two generations exist on disk: current (as of
// the last pull) and previous (the pull before that). This is a
// two-generation ring, not a history log.
package index

import (
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// Kind selects one of the two persisted generations.
type Kind int

const (
	Current Kind = iota
	Previous
)

// FileName returns the on-disk name of the generation inside the data
// directory.
func (k Kind) FileName() string {
	if k == Previous {
		return paths.IndexPreviousName
	}
	return paths.IndexCurrentName
}

func (k Kind) String() string {
	return k.FileName()
}

// FileIndex maps local file paths to the set that owns them. Entries
// exist only for files, never directories.
type FileIndex struct {
	mapping map[paths.LocalFilePath]repo.SetName
}

// New returns an empty index.
func New() *FileIndex {
	return &FileIndex{mapping: make(map[paths.LocalFilePath]repo.SetName)}
}

// Load reads a generation from the data directory. A missing file is the
// empty index, not an error (first run).
func Load(dataRoot string, kind Kind) (*FileIndex, error) {
	path := filepath.Join(dataRoot, kind.FileName())

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrIndexRead, "cannot read %s", kind).
			WithDetail("path", path)
	}

	var wire map[string]string
	if err := toml.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIndexParse, "cannot parse %s", kind).
			WithDetail("path", path)
	}

	idx := New()
	for rel, setName := range wire {
		local, err := paths.NewLocalRelPath(rel)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIndexParse,
				"%s contains an invalid path: %s", kind, rel)
		}
		idx.mapping[local] = repo.SetName(setName)
	}
	return idx, nil
}

// Save writes the index as the given generation, unconditionally.
func (idx *FileIndex) Save(dataRoot string, kind Kind) error {
	if err := os.MkdirAll(dataRoot, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create data directory").
			WithDetail("path", dataRoot)
	}

	wire := make(map[string]string, len(idx.mapping))
	for local, setName := range idx.mapping {
		wire[local.Rel()] = setName.String()
	}
	data, err := toml.Marshal(wire)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot serialize %s", kind)
	}

	path := filepath.Join(dataRoot, kind.FileName())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIndexWrite, "cannot write %s", kind).
			WithDetail("path", path)
	}
	return nil
}

// Lookup returns the owning set recorded for the path.
func (idx *FileIndex) Lookup(p paths.LocalFilePath) (repo.SetName, bool) {
	name, ok := idx.mapping[p]
	return name, ok
}

// Tracks reports whether the path has an entry.
func (idx *FileIndex) Tracks(p paths.LocalFilePath) bool {
	_, ok := idx.mapping[p]
	return ok
}

// Set records ownership of a local path. A path maps to at most one set;
// a second call overwrites.
func (idx *FileIndex) Set(p paths.LocalFilePath, owner repo.SetName) {
	idx.mapping[p] = owner
}

// Len returns the number of entries.
func (idx *FileIndex) Len() int {
	return len(idx.mapping)
}

// Paths returns the indexed local paths, sorted.
func (idx *FileIndex) Paths() []paths.LocalFilePath {
	out := make([]paths.LocalFilePath, 0, len(idx.mapping))
	for p := range idx.mapping {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rel() < out[j].Rel() })
	return out
}

// DiffRemoved returns, sorted by path, every entry of old that is absent
// from new and for which keep returns true. Callers pass a keep predicate
// that checks on-disk presence and the ignore rules, so ignored or
// already-deleted files are never reported as cleanable.
func DiffRemoved(old, new *FileIndex, keep func(paths.LocalFilePath) bool) []paths.LocalFilePath {
	var removed []paths.LocalFilePath
	for p := range old.mapping {
		if new.Tracks(p) {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		removed = append(removed, p)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Rel() < removed[j].Rel() })
	return removed
}
