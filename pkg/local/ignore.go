package local

import (
	"os"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/paths"
)

// IgnoreMatcher answers "is this root-relative path ignored". It is the
// only thing the walker knows about ignore semantics; the gitignore
// pattern language itself is delegated.
type IgnoreMatcher interface {
	MatchesPath(path string) bool
}

// matchNothing is used when no ignore file exists.
type matchNothing struct{}

func (matchNothing) MatchesPath(string) bool { return false }

// LoadIgnore compiles the .monjaignore file at the local root. An absent
// file ignores nothing.
func LoadIgnore(localRoot paths.AbsolutePath) (IgnoreMatcher, error) {
	path := localRoot.Join(paths.IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return matchNothing{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot stat ignore file").
			WithDetail("path", path)
	}

	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "cannot compile ignore file").
			WithDetail("path", path)
	}
	return gi, nil
}
