package repo

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/paths"
)

// SetConfig is the optional per-set document (.monja-set.toml). An absent
// file means the zero config: the set mounts at the local root.
type SetConfig struct {
	Shortcut string `toml:"shortcut,omitempty"`
}

// LoadSetConfig reads a set's config from its directory. A missing file
// is not an error.
func LoadSetConfig(setDir string) (SetConfig, error) {
	data, err := os.ReadFile(filepath.Join(setDir, paths.SetConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return SetConfig{}, nil
		}
		return SetConfig{}, errors.Wrap(err, errors.ErrConfigLoad, "cannot read set config").
			WithDetail("path", setDir)
	}

	var cfg SetConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return SetConfig{}, errors.Wrap(err, errors.ErrConfigParse, "cannot parse set config").
			WithDetail("path", setDir)
	}
	return cfg, nil
}

// Save writes the set config into the set's directory.
func (c SetConfig) Save(setDir string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize set config")
	}
	path := filepath.Join(setDir, paths.SetConfigName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write set config").
			WithDetail("path", path)
	}
	return nil
}

// CreateEmptySet creates the directory for a new set under the repo
// root. It fails if a set of that name already exists.
func CreateEmptySet(repoRoot paths.AbsolutePath, name SetName) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "set name cannot be empty")
	}
	setDir := repoRoot.Join(name.String())
	if _, err := os.Stat(setDir); err == nil {
		return errors.Newf(errors.ErrAlreadyExists, "set %q already exists", name).
			WithDetail("path", setDir)
	}
	if err := os.MkdirAll(setDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create set %q", name).
			WithDetail("path", setDir)
	}
	return nil
}
