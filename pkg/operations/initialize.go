package operations

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// InitSpec describes a first-time setup.
type InitSpec struct {
	// ProfileConfigPath is where the profile will be written. Plain
	// string: it must not exist yet.
	ProfileConfigPath string

	LocalRoot paths.AbsolutePath
	RepoRoot  paths.AbsolutePath
	DataRoot  string

	// RelativeRepoDir is what gets recorded in the profile, usually the
	// repo root relative to the local root.
	RelativeRepoDir string

	InitialSetName repo.SetName
}

// InitResult returns the created profile. Profile is nil on dry-run.
type InitResult struct {
	Profile           *config.Profile
	ProfileConfigPath string
}

// Init creates the profile, the initial set, a default ignore file and a
// repo README. Existing ignore/README files are left alone.
func Init(spec InitSpec, opts Options) (*InitResult, error) {
	logger := logging.GetLogger("init")

	if _, err := os.Stat(spec.ProfileConfigPath); err == nil {
		return nil, errors.New(errors.ErrAlreadyExists, "monja has already been initialized").
			WithDetail("path", spec.ProfileConfigPath)
	}
	if spec.InitialSetName == "" {
		return nil, errors.New(errors.ErrInvalidInput, "initial set name cannot be empty")
	}

	if opts.DryRun {
		return &InitResult{ProfileConfigPath: spec.ProfileConfigPath}, nil
	}

	if err := os.MkdirAll(filepath.Dir(spec.ProfileConfigPath), 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create profile directory")
	}
	profileCfg := config.ProfileConfig{
		RepoDir:    spec.RelativeRepoDir,
		TargetSets: []repo.SetName{spec.InitialSetName},
	}
	if err := profileCfg.Save(spec.ProfileConfigPath); err != nil {
		return nil, err
	}

	setDir := spec.RepoRoot.Join(spec.InitialSetName.String())
	if err := os.MkdirAll(setDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create initial set").
			WithDetail("path", setDir)
	}
	if err := os.WriteFile(filepath.Join(setDir, paths.SetConfigName), []byte(initialSetConfig), 0644); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write initial set config")
	}

	ignorePath := spec.LocalRoot.Join(paths.IgnoreFileName)
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(ignorePath, []byte(defaultIgnore), 0644); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write ignore file")
		}
	}

	readmePath := spec.RepoRoot.Join("README.md")
	if _, err := os.Stat(readmePath); os.IsNotExist(err) {
		if err := os.WriteFile(readmePath, []byte(repoReadme), 0644); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write repo README")
		}
	}

	profile, err := config.NewProfile(profileCfg, spec.LocalRoot, spec.DataRoot)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("profile", spec.ProfileConfigPath).
		Str("set", spec.InitialSetName.String()).
		Msg("Initialized")
	return &InitResult{Profile: profile, ProfileConfigPath: spec.ProfileConfigPath}, nil
}

const initialSetConfig = `# Use a shortcut to reduce the amount of initial folder nesting!
# shortcut = '.config'
`

// Ignore files keep local-only noise out of the repo and protect it from
// clean. Hidden files are included in walks by default, hence the
// leading catch-all with carve-outs.
const defaultIgnore = `.*
!.config/
# it's recommended to put this in sets, since certain machines may have a different set
!.monjaignore

Desktop/
Documents/
Downloads/
Music/
Pictures/
Public/
Videos/
`

const repoReadme = `## monja
This repo uses [monja](https://github.com/arthur-debert/monja) for managing dotfiles.

To use the dotfiles in this repo:
1. Install monja
2. Clone this repo. The default path is ` + "`$XDG_DATA_HOME/monja/repo`" + `, but anywhere works.
3. Create a profile (see below)
4. Run ` + "`monja pull`" + `. Keep in mind this can overwrite existing files.

### Profiles
A profile mainly specifies the set of directories found at the root of this repo (called sets).
It lives in ` + "`$XDG_CONFIG_HOME/monja/monja-profile.toml`" + `. Sample:

` + "```toml" + `
# this can be an absolute path or a path relative to $HOME
repo-dir = '.local/share/monja/repo'

# these are layered on top of each other. if a file is in multiple sets, the later one wins.
target-sets = [
    'foo',
    'bar',
    'baz',
]
` + "```" + `
`
