package paths

import "path/filepath"

// Reserved filenames. These are excluded from every walk in both trees;
// the repo loader must never record them as set files and the local
// classifier must never classify them.
const (
	// ProfileConfigName is the profile document in the monja config dir
	ProfileConfigName = "monja-profile.toml"

	// SetConfigName is the optional per-set config inside a set directory
	SetConfigName = ".monja-set.toml"

	// DirConfigName is reserved for future per-directory configuration
	DirConfigName = ".monja-dir.toml"

	// IndexCurrentName is the current file-index generation
	IndexCurrentName = "monja-index.toml"

	// IndexPreviousName is the previous file-index generation
	IndexPreviousName = "monja-index-prev.toml"

	// IgnoreFileName is the gitignore-style local ignore file
	IgnoreFileName = ".monjaignore"
)

// SpecialFiles is the immutable set of reserved filenames. It is built
// once and passed to every walk rather than consulted as global state.
type SpecialFiles struct {
	names map[string]struct{}
}

// DefaultSpecialFiles returns the reserved filenames monja itself
// creates and reads.
func DefaultSpecialFiles() SpecialFiles {
	names := make(map[string]struct{})
	for _, n := range []string{
		SetConfigName,
		DirConfigName,
		ProfileConfigName,
		IndexCurrentName,
		IndexPreviousName,
		IgnoreFileName,
	} {
		names[n] = struct{}{}
	}
	return SpecialFiles{names: names}
}

// IsSpecial reports whether the path's base name is reserved.
func (s SpecialFiles) IsSpecial(path string) bool {
	_, ok := s.names[filepath.Base(path)]
	return ok
}
