// Package paths provides the path-safety layer for monja.
// Every path that crosses a component boundary is one of three newtypes:
// AbsolutePath (canonicalized, verified to exist), LocalFilePath (a
// normalized descendant of the local root, stored root-relative), and
// SetShortcut (a validated relative mount point for a set). The
// constructors are the only way to build them, so traversal outside the
// declared roots is rejected before any component sees the path.
package paths

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/monja/pkg/errors"
)

// AbsolutePath is a filesystem path verified, at construction, to exist
// and to be canonicalized (absolute, symlinks resolved). Immutable once
// built.
type AbsolutePath struct {
	path string
}

// ForExistingPath canonicalizes the given path. It fails if the path does
// not exist.
func ForExistingPath(p string) (AbsolutePath, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return AbsolutePath{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot make path absolute: %s", p)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return AbsolutePath{}, errors.Wrapf(err, errors.ErrFileNotFound, "path does not exist: %s", p)
	}
	return AbsolutePath{path: resolved}, nil
}

func (p AbsolutePath) String() string {
	return p.path
}

// Join resolves elements under this path. The result is not validated;
// use ForExistingPath if the joined path must exist.
func (p AbsolutePath) Join(elem ...string) string {
	return filepath.Join(append([]string{p.path}, elem...)...)
}

// IsZero reports whether the path was never constructed.
func (p AbsolutePath) IsZero() bool {
	return p.path == ""
}

// LocalFilePath is a path guaranteed to be a normalized descendant of the
// local root. It is stored relative to the local root, slash-separated.
// The empty value denotes the local root itself, which is valid as a
// scope filter but never as a file.
type LocalFilePath struct {
	rel string
}

// NewLocalFilePath resolves input against the local root. A relative
// input is resolved logically (no filesystem access) against baseDir; an
// absolute input is used as-is. The result must not escape localRoot.
func NewLocalFilePath(localRoot AbsolutePath, input string, baseDir AbsolutePath) (LocalFilePath, error) {
	var candidate string
	if filepath.IsAbs(input) {
		candidate = filepath.Clean(input)
	} else {
		candidate = filepath.Join(baseDir.String(), input)
	}

	rel, err := filepath.Rel(localRoot.String(), candidate)
	if err != nil || escapesUpward(filepath.ToSlash(rel)) {
		return LocalFilePath{}, errors.Newf(errors.ErrOutsideRoot,
			"path is not inside the local root: %s", input)
	}
	if rel == "." {
		return LocalFilePath{}, nil
	}
	return LocalFilePath{rel: filepath.ToSlash(rel)}, nil
}

// NewLocalRelPath builds a LocalFilePath from a path already known to be
// relative to the local root, such as a walker result or a persisted
// index key. The path is normalized; anything that would climb out of the
// root is rejected.
func NewLocalRelPath(rel string) (LocalFilePath, error) {
	if filepath.IsAbs(rel) {
		return LocalFilePath{}, errors.Newf(errors.ErrPathNotRelative,
			"expected a root-relative path: %s", rel)
	}
	cleaned := path.Clean(filepath.ToSlash(rel))
	if cleaned == "." {
		return LocalFilePath{}, nil
	}
	if escapesUpward(cleaned) {
		return LocalFilePath{}, errors.Newf(errors.ErrOutsideRoot,
			"path is not inside the local root: %s", rel)
	}
	return LocalFilePath{rel: cleaned}, nil
}

// Rel returns the slash-separated path relative to the local root.
func (p LocalFilePath) Rel() string {
	return p.rel
}

// Abs resolves the path under the given local root.
func (p LocalFilePath) Abs(localRoot AbsolutePath) string {
	return filepath.Join(localRoot.String(), filepath.FromSlash(p.rel))
}

// IsChildOf reports whether p is other or lives below it. The empty
// path (the local root) contains everything.
func (p LocalFilePath) IsChildOf(other LocalFilePath) bool {
	if other.rel == "" {
		return true
	}
	return p.rel == other.rel || strings.HasPrefix(p.rel, other.rel+"/")
}

func (p LocalFilePath) String() string {
	return p.rel
}

// SetShortcut describes where, under the local root, a set's contents are
// mounted. The empty shortcut mounts the set at the local root.
type SetShortcut struct {
	rel string
}

// NewSetShortcut validates a raw shortcut value from a set's config.
// Absolute paths are not relative mount points; values that collapse to
// nothing after `.`/`..` resolution (`..`, `../..`, `.`) are the
// traversal signature and are rejected outright.
func NewSetShortcut(raw string) (SetShortcut, error) {
	if raw == "" {
		return SetShortcut{}, nil
	}
	if filepath.IsAbs(raw) {
		return SetShortcut{}, errors.Newf(errors.ErrPathNotRelative,
			"shortcut must be a relative path: %s", raw)
	}
	cleaned := path.Clean(filepath.ToSlash(raw))
	if cleaned == "." || escapesUpward(cleaned) {
		return SetShortcut{}, errors.Newf(errors.ErrPathTraversal,
			"shortcut escapes the local root: %s", raw)
	}
	return SetShortcut{rel: cleaned}, nil
}

// Rel returns the slash-separated shortcut, empty for root-mounted sets.
func (s SetShortcut) Rel() string {
	return s.rel
}

// IsEmpty reports whether the set mounts at the local root.
func (s SetShortcut) IsEmpty() bool {
	return s.rel == ""
}

// JoinLocal derives the local path of a file from its path within the
// set: local_path = shortcut + path_in_set.
func (s SetShortcut) JoinLocal(pathInSet string) (LocalFilePath, error) {
	return NewLocalRelPath(path.Join(s.rel, filepath.ToSlash(pathInSet)))
}

// AbsUnder resolves the shortcut's mount directory under the local root.
func (s SetShortcut) AbsUnder(localRoot AbsolutePath) string {
	return filepath.Join(localRoot.String(), filepath.FromSlash(s.rel))
}

// StripFrom returns the set-relative subpath of a local file mounted
// under this shortcut. The second return is false when the file does not
// live under the shortcut at all.
func (s SetShortcut) StripFrom(p LocalFilePath) (string, bool) {
	if s.rel == "" {
		return p.Rel(), p.Rel() != ""
	}
	if !strings.HasPrefix(p.Rel(), s.rel+"/") {
		return "", false
	}
	return strings.TrimPrefix(p.Rel(), s.rel+"/"), true
}

// escapesUpward reports whether a cleaned slash path climbs out of its
// base.
func escapesUpward(cleaned string) bool {
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
