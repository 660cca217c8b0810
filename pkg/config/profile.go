// Package config loads and persists the monja profile: the repo
// location and the ordered list of target sets that defines both pull
// precedence and push scope.
package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// ProfileConfig is the monja-profile.toml document.
type ProfileConfig struct {
	// RepoDir is the repo root, absolute or relative to the local root.
	RepoDir string `toml:"repo-dir"`

	// TargetSets is ordered: later sets win overlapping local paths on
	// pull, and only these sets are in scope for pull.
	TargetSets []repo.SetName `toml:"target-sets"`
}

// Validate rejects profiles the engine cannot act on. The empty set name
// would silently double as a missing-set marker, so it is reserved and
// refused here at the boundary.
func (c ProfileConfig) Validate() error {
	if c.RepoDir == "" {
		return errors.New(errors.ErrConfigValid, "profile must specify repo-dir")
	}
	for _, name := range c.TargetSets {
		if name == "" {
			return errors.New(errors.ErrConfigValid, "target-sets must not contain an empty set name")
		}
	}
	return nil
}

// LoadProfileConfig reads and validates a profile document. The path
// points at the file, not its directory, since a profile may live inside
// the repo.
func LoadProfileConfig(configPath string) (ProfileConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return ProfileConfig{}, errors.Wrap(err, errors.ErrConfigLoad, "cannot read profile").
			WithDetail("path", configPath)
	}

	var cfg ProfileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return ProfileConfig{}, errors.Wrap(err, errors.ErrConfigParse, "cannot parse profile").
			WithDetail("path", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return ProfileConfig{}, err
	}
	return cfg, nil
}

// Save writes the profile document.
func (c ProfileConfig) Save(configPath string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize profile")
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write profile").
			WithDetail("path", configPath)
	}
	return nil
}

// Profile is the runtime context every operation receives: the three
// roots plus the loaded config and the reserved-filename set.
type Profile struct {
	LocalRoot paths.AbsolutePath
	RepoRoot  paths.AbsolutePath

	// DataRoot holds the index generations. Not an AbsolutePath because
	// it may not exist yet on a first run.
	DataRoot string

	Config  ProfileConfig
	Special paths.SpecialFiles
}

// NewProfile resolves the repo root from the config: relative repo-dir
// values are anchored at the local root.
func NewProfile(cfg ProfileConfig, localRoot paths.AbsolutePath, dataRoot string) (*Profile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repoDir := cfg.RepoDir
	if !filepath.IsAbs(repoDir) {
		repoDir = localRoot.Join(repoDir)
	}
	repoRoot, err := paths.ForExistingPath(repoDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "repo-dir does not exist").
			WithDetail("repoDir", cfg.RepoDir)
	}

	return &Profile{
		LocalRoot: localRoot,
		RepoRoot:  repoRoot,
		DataRoot:  dataRoot,
		Config:    cfg,
		Special:   paths.DefaultSpecialFiles(),
	}, nil
}
