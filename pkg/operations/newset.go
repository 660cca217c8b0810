package operations

import (
	"path"
	"strings"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// NewSetResult describes a freshly created set.
type NewSetResult struct {
	Name     repo.SetName
	Shortcut paths.SetShortcut

	// Put holds the result of moving the initial files in, nil when the
	// set was created empty.
	Put *PutResult
}

// NewSet creates a set in the repo, appends it to the profile's target
// sets, and optionally seeds it with files. When initial files are given
// the set's shortcut is derived from them so the files keep their
// position under the local root.
func NewSet(profile *config.Profile, profileConfigPath string, name repo.SetName, initialFiles []paths.LocalFilePath, opts Options) (*NewSetResult, error) {
	logger := logging.GetLogger("newset")

	shortcut, err := commonShortcut(initialFiles)
	if err != nil {
		return nil, err
	}

	result := &NewSetResult{Name: name, Shortcut: shortcut}
	if opts.DryRun {
		return result, nil
	}

	if err := repo.CreateEmptySet(profile.RepoRoot, name); err != nil {
		return nil, err
	}
	if !shortcut.IsEmpty() {
		cfg := repo.SetConfig{Shortcut: shortcut.Rel()}
		if err := cfg.Save(profile.RepoRoot.Join(name.String())); err != nil {
			return nil, err
		}
	}

	cfg := profile.Config
	cfg.TargetSets = append(cfg.TargetSets, name)
	if err := cfg.Save(profileConfigPath); err != nil {
		return nil, err
	}
	profile.Config = cfg

	logger.Info().
		Str("set", name.String()).
		Str("shortcut", shortcut.Rel()).
		Msg("Created set")

	if len(initialFiles) > 0 {
		putResult, err := Put(profile, initialFiles, name, true, opts)
		if err != nil {
			return nil, err
		}
		result.Put = putResult
	}
	return result, nil
}

// commonShortcut derives the shortcut for a new set from its initial
// files: the deepest directory containing all of them. Filenames never
// contribute, so a single file yields its parent directory.
func commonShortcut(files []paths.LocalFilePath) (paths.SetShortcut, error) {
	if len(files) == 0 {
		return paths.SetShortcut{}, nil
	}
	prefix := parentDir(files[0])
	for _, f := range files[1:] {
		prefix = commonPrefix(prefix, parentDir(f))
		if prefix == "" {
			break
		}
	}
	if prefix == "" {
		return paths.SetShortcut{}, nil
	}
	shortcut, err := paths.NewSetShortcut(prefix)
	if err != nil {
		return paths.SetShortcut{}, errors.Wrap(err, errors.ErrInternal, "derived shortcut is invalid")
	}
	return shortcut, nil
}

func parentDir(p paths.LocalFilePath) string {
	dir := path.Dir(p.Rel())
	if dir == "." {
		return ""
	}
	return dir
}

// commonPrefix returns the longest shared leading segment run of two
// slash paths.
func commonPrefix(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return strings.Join(as[:n], "/")
}
