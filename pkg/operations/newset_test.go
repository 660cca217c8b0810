package operations_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/operations"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
	"github.com/arthur-debert/monja/pkg/testutil"
)

func TestNewSetEmpty(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	profile := env.Profile("base")
	env.CreateSet("base", "")
	profilePath := saveProfile(t, env, profile)

	result, err := operations.NewSet(profile, profilePath, "extra", nil, operations.Options{})
	require.NoError(t, err)
	assert.True(t, result.Shortcut.IsEmpty())
	assert.Nil(t, result.Put)

	info, err := os.Stat(env.RepoRoot.Join("extra"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// the set was appended to the target order
	cfg, err := config.LoadProfileConfig(profilePath)
	require.NoError(t, err)
	assert.Equal(t, []repo.SetName{"base", "extra"}, cfg.TargetSets)
}

func TestNewSetWithInitialFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	profile := env.Profile()
	profilePath := saveProfile(t, env, profile)

	env.WriteLocalFile(".config/nvim/init.lua", "init\n")
	env.WriteLocalFile(".config/nvim/lua/keys.lua", "keys\n")

	files := []paths.LocalFilePath{
		env.LocalPath(".config/nvim/init.lua"),
		env.LocalPath(".config/nvim/lua/keys.lua"),
	}
	result, err := operations.NewSet(profile, profilePath, "nvim", files, operations.Options{})
	require.NoError(t, err)

	// the shortcut is the deepest directory shared by the files, so the
	// set stores them without the leading nesting
	assert.Equal(t, ".config/nvim", result.Shortcut.Rel())
	assert.Equal(t, "init\n", env.ReadSetFile("nvim", "init.lua"))
	assert.Equal(t, "keys\n", env.ReadSetFile("nvim", "lua/keys.lua"))

	// ownership is recorded right away
	curr, err := index.Load(env.DataRoot, index.Current)
	require.NoError(t, err)
	owner, ok := curr.Lookup(env.LocalPath(".config/nvim/init.lua"))
	require.True(t, ok)
	assert.Equal(t, "nvim", owner.String())

	require.NotNil(t, result.Put)
	assert.Len(t, result.Put.Files, 2)
}

func TestNewSetDuplicate(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	profile := env.Profile("base")
	env.CreateSet("base", "")
	profilePath := saveProfile(t, env, profile)

	_, err := operations.NewSet(profile, profilePath, "base", nil, operations.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestNewSetDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	profile := env.Profile()
	profilePath := saveProfile(t, env, profile)

	env.WriteLocalFile(".config/app/conf", "x\n")
	result, err := operations.NewSet(profile, profilePath, "app",
		[]paths.LocalFilePath{env.LocalPath(".config/app/conf")}, operations.Options{DryRun: true})
	require.NoError(t, err)

	// the derived shortcut is reported but nothing was created
	assert.Equal(t, ".config/app", result.Shortcut.Rel())
	_, statErr := os.Stat(env.RepoRoot.Join("app"))
	assert.True(t, os.IsNotExist(statErr))
}

func saveProfile(t *testing.T, env *testutil.TestEnvironment, profile *config.Profile) string {
	t.Helper()
	dir := filepath.Join(env.DataRoot, "..", "config")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, paths.ProfileConfigName)
	require.NoError(t, profile.Config.Save(path))
	return path
}
