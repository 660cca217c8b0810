package operations_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/operations"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
	"github.com/arthur-debert/monja/pkg/testutil"
)

func TestPullLayersLastSetWins(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".gitconfig", "[user]\nname = base\n")
	env.WriteSetFile("base", ".bashrc", "base bashrc\n")
	env.CreateSet("work", "")
	env.WriteSetFile("work", ".gitconfig", "[user]\nname = work\n")

	profile := env.Profile("base", "work")
	tr := &testutil.CopyTransfer{}

	result, err := operations.Pull(context.Background(), profile, tr, operations.Options{})
	require.NoError(t, err)

	// work is listed later, so its .gitconfig wins
	assert.Equal(t, "[user]\nname = work\n", env.ReadLocalFile(".gitconfig"))
	assert.Equal(t, "base bashrc\n", env.ReadLocalFile(".bashrc"))

	// the winning ownership is what gets indexed
	curr, err := index.Load(env.DataRoot, index.Current)
	require.NoError(t, err)
	owner, ok := curr.Lookup(env.LocalPath(".gitconfig"))
	require.True(t, ok)
	assert.Equal(t, "work", owner.String())
	owner, ok = curr.Lookup(env.LocalPath(".bashrc"))
	require.True(t, ok)
	assert.Equal(t, "base", owner.String())

	// result groups follow target order and losing claims are absent
	require.Len(t, result.FilesPulled, 2)
	assert.Equal(t, repo.SetName("base"), result.FilesPulled[0].Set)
	require.Len(t, result.FilesPulled[0].Files, 1)
	assert.Equal(t, ".bashrc", result.FilesPulled[0].Files[0].Rel())
	assert.Equal(t, repo.SetName("work"), result.FilesPulled[1].Set)
	assert.Empty(t, result.CleanableFiles)
}

func TestPullOrderFlipChangesWinner(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("a", "")
	env.WriteSetFile("a", "conf", "from a\n")
	env.CreateSet("b", "")
	env.WriteSetFile("b", "conf", "from b\n")

	_, err := operations.Pull(context.Background(), env.Profile("a", "b"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	assert.Equal(t, "from b\n", env.ReadLocalFile("conf"))

	_, err = operations.Pull(context.Background(), env.Profile("b", "a"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	assert.Equal(t, "from a\n", env.ReadLocalFile("conf"))
}

func TestPullShrinkingTargetsRevertsOwnership(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("set1", "")
	env.WriteSetFile("set1", "a", "x")
	env.CreateSet("set2", "")
	env.WriteSetFile("set2", "a", "y")

	ctx := context.Background()
	_, err := operations.Pull(ctx, env.Profile("set1", "set2"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	assert.Equal(t, "y", env.ReadLocalFile("a"))

	// dropping set2 hands the path back to set1
	_, err = operations.Pull(ctx, env.Profile("set1"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	assert.Equal(t, "x", env.ReadLocalFile("a"))

	curr, err := index.Load(env.DataRoot, index.Current)
	require.NoError(t, err)
	owner, ok := curr.Lookup(env.LocalPath("a"))
	require.True(t, ok)
	assert.Equal(t, "set1", owner.String())
}

func TestPullShortcutPlacement(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("configs", ".config")
	env.WriteSetFile("configs", "nvim/init.lua", "vim.opt.number = true\n")

	tr := &testutil.CopyTransfer{}
	_, err := operations.Pull(context.Background(), env.Profile("configs"), tr, operations.Options{})
	require.NoError(t, err)

	assert.Equal(t, "vim.opt.number = true\n", env.ReadLocalFile(".config/nvim/init.lua"))

	// transfer gets the set root as source, the mount as dest, and
	// set-relative paths in the list
	require.Len(t, tr.Calls, 1)
	assert.Equal(t, env.RepoRoot.Join("configs"), tr.Calls[0].SourceDir)
	assert.Equal(t, env.LocalRoot.Join(".config"), tr.Calls[0].DestDir)
	assert.Equal(t, []string{"nvim/init.lua"}, tr.Calls[0].Files)
}

func TestPullMissingTargetSets(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.CreateSet("present", "")

	_, err := operations.Pull(context.Background(), env.Profile("present", "gone", "also-gone"),
		&testutil.CopyTransfer{}, operations.Options{})

	var missing *operations.MissingSetsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []repo.SetName{"gone", "also-gone"}, missing.Sets)
}

func TestPullRotatesGenerations(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("a", "")
	env.WriteSetFile("a", "one", "1\n")
	env.CreateSet("b", "")
	env.WriteSetFile("b", "two", "2\n")

	ctx := context.Background()
	_, err := operations.Pull(ctx, env.Profile("a", "b"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	// second pull drops set b from the targets
	result, err := operations.Pull(ctx, env.Profile("a"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	prev, err := index.Load(env.DataRoot, index.Previous)
	require.NoError(t, err)
	curr, err := index.Load(env.DataRoot, index.Current)
	require.NoError(t, err)
	assert.True(t, prev.Tracks(env.LocalPath("two")))
	assert.False(t, curr.Tracks(env.LocalPath("two")))

	// the orphaned file is still on disk and reported cleanable
	require.Len(t, result.CleanableFiles, 1)
	assert.Equal(t, "two", result.CleanableFiles[0].Rel())
	assert.True(t, env.LocalFileExists("two"))
}

func TestPullDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".bashrc", "x\n")

	tr := &testutil.CopyTransfer{}
	result, err := operations.Pull(context.Background(), env.Profile("base"), tr, operations.Options{DryRun: true})
	require.NoError(t, err)

	// the full result is computed, but nothing touched disk
	require.Len(t, result.FilesPulled, 1)
	assert.Empty(t, tr.Calls)
	assert.False(t, env.LocalFileExists(".bashrc"))

	curr, err := index.Load(env.DataRoot, index.Current)
	require.NoError(t, err)
	assert.Equal(t, 0, curr.Len())
}

func TestPushRoundTrip(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".bashrc", "original\n")

	ctx := context.Background()
	profile := env.Profile("base")
	_, err := operations.Pull(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	env.WriteLocalFile(".bashrc", "edited locally\n")

	result, err := operations.Push(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	assert.Equal(t, "edited locally\n", env.ReadSetFile("base", ".bashrc"))
	require.Len(t, result.FilesPushed, 1)
	assert.Equal(t, repo.SetName("base"), result.FilesPushed[0].Set)
}

func TestPushBlockedByMissingSet(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".bashrc", "x\n")
	env.WriteLocalFile(".bashrc", "x\n")
	env.WriteLocalFile(".vimrc", "x\n")

	idx := index.New()
	idx.Set(env.LocalPath(".bashrc"), "base")
	idx.Set(env.LocalPath(".vimrc"), "deleted-set")
	require.NoError(t, idx.Save(env.DataRoot, index.Current))

	tr := &testutil.CopyTransfer{}
	_, err := operations.Push(context.Background(), env.Profile("base"), tr, operations.Options{})

	var consistency *operations.ConsistencyError
	require.ErrorAs(t, err, &consistency)
	require.Len(t, consistency.MissingSets, 1)
	assert.Len(t, consistency.MissingSets[repo.SetName("deleted-set")], 1)
	// the gate is total: even the healthy file was not transferred
	assert.Empty(t, tr.Calls)
}

func TestPushBlockedByMissingFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteLocalFile(".bashrc", "x\n")

	idx := index.New()
	idx.Set(env.LocalPath(".bashrc"), "base")
	require.NoError(t, idx.Save(env.DataRoot, index.Current))

	_, err := operations.Push(context.Background(), env.Profile("base"), &testutil.CopyTransfer{}, operations.Options{})

	var consistency *operations.ConsistencyError
	require.ErrorAs(t, err, &consistency)
	assert.Len(t, consistency.MissingFiles[repo.SetName("base")], 1)
}

func TestPushReportsUntracked(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteLocalFile("stray.txt", "x\n")

	result, err := operations.Push(context.Background(), env.Profile("base"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	assert.Empty(t, result.FilesPushed)
	require.Len(t, result.Untracked, 1)
	assert.Equal(t, "stray.txt", result.Untracked[0].Rel())
}

func TestPushDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".bashrc", "original\n")
	env.WriteLocalFile(".bashrc", "edited\n")

	idx := index.New()
	idx.Set(env.LocalPath(".bashrc"), "base")
	require.NoError(t, idx.Save(env.DataRoot, index.Current))

	tr := &testutil.CopyTransfer{}
	result, err := operations.Push(context.Background(), env.Profile("base"), tr, operations.Options{DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.FilesPushed, 1)
	assert.Empty(t, tr.Calls)
	assert.Equal(t, "original\n", env.ReadSetFile("base", ".bashrc"))
}

func TestPutRepairsMissingFileDrift(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".bashrc", "x\n")
	env.WriteLocalFile(".bashrc", "x\n")
	env.WriteLocalFile(".vimrc", "set nu\n")

	// .vimrc is indexed to base but the set no longer carries it
	idx := index.New()
	idx.Set(env.LocalPath(".bashrc"), "base")
	idx.Set(env.LocalPath(".vimrc"), "base")
	require.NoError(t, idx.Save(env.DataRoot, index.Current))

	ctx := context.Background()
	profile := env.Profile("base")

	var consistency *operations.ConsistencyError
	_, err := operations.Push(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.ErrorAs(t, err, &consistency)

	// put the file back into the set, then push goes through
	putResult, err := operations.Put(profile, []paths.LocalFilePath{env.LocalPath(".vimrc")}, "base", true, operations.Options{})
	require.NoError(t, err)
	assert.Equal(t, "set nu\n", env.ReadSetFile("base", ".vimrc"))
	assert.True(t, putResult.SetIsTargeted)
	assert.Empty(t, putResult.Untracked)

	_, err = operations.Push(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
}

func TestPutReassignsToDifferentSet(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".vimrc", "set nu\n")
	env.CreateSet("extras", "")
	env.WriteSetFile("extras", "placeholder", "p\n")

	ctx := context.Background()
	profile := env.Profile("base", "extras")
	_, err := operations.Pull(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	// the file disappears from its owning set, breaking push
	require.NoError(t, env.RemoveSetFile("base", ".vimrc"))
	var consistency *operations.ConsistencyError
	_, err = operations.Push(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.ErrorAs(t, err, &consistency)

	// reassigning it to another existing set repairs the drift
	_, err = operations.Put(profile, []paths.LocalFilePath{env.LocalPath(".vimrc")}, "extras", true, operations.Options{})
	require.NoError(t, err)

	_, err = operations.Push(ctx, profile, &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	assert.Equal(t, "set nu\n", env.ReadSetFile("extras", ".vimrc"))
}

func TestPutIntoUnknownSet(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteLocalFile("f", "x\n")

	_, err := operations.Put(env.Profile(), []paths.LocalFilePath{env.LocalPath("f")}, "nope", false, operations.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrSetNotFound))
}

func TestPutReportsShadowingSets(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.CreateSet("work", "")
	env.WriteSetFile("work", ".gitconfig", "work version\n")
	env.WriteLocalFile(".gitconfig", "mine\n")

	result, err := operations.Put(env.Profile("base", "work"),
		[]paths.LocalFilePath{env.LocalPath(".gitconfig")}, "base", false, operations.Options{})
	require.NoError(t, err)

	// work is listed after base, so its copy shadows the one just put
	require.Len(t, result.FilesInLaterSets, 1)
	assert.Equal(t, ".gitconfig", result.FilesInLaterSets[0].File.Rel())
	assert.Equal(t, []repo.SetName{"work"}, result.FilesInLaterSets[0].Sets)
}

func TestPutIntoUntargetedSet(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.CreateSet("archive", "")
	env.WriteLocalFile("old.conf", "x\n")

	result, err := operations.Put(env.Profile("base"),
		[]paths.LocalFilePath{env.LocalPath("old.conf")}, "archive", false, operations.Options{})
	require.NoError(t, err)

	assert.False(t, result.SetIsTargeted)
	// no targeted set tracks it, so it stays untracked
	require.Len(t, result.Untracked, 1)
	assert.Equal(t, "old.conf", result.Untracked[0].Rel())
	assert.Equal(t, "x\n", env.ReadSetFile("archive", "old.conf"))
}

func TestPutDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteLocalFile(".bashrc", "x\n")

	result, err := operations.Put(env.Profile("base"),
		[]paths.LocalFilePath{env.LocalPath(".bashrc")}, "base", true, operations.Options{DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)

	// neither the set nor the index was touched
	_, statErr := os.Stat(env.RepoRoot.Join("base", ".bashrc"))
	assert.True(t, os.IsNotExist(statErr))
	curr, err := index.Load(env.DataRoot, index.Current)
	require.NoError(t, err)
	assert.Equal(t, 0, curr.Len())
}

func TestCleanIndexMode(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("a", "")
	env.WriteSetFile("a", "keep", "k\n")
	env.CreateSet("b", "")
	env.WriteSetFile("b", "orphan", "o\n")

	ctx := context.Background()
	_, err := operations.Pull(ctx, env.Profile("a", "b"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	_, err = operations.Pull(ctx, env.Profile("a"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	result, err := operations.Clean(env.Profile("a"), operations.CleanIndex, operations.Options{})
	require.NoError(t, err)

	require.Len(t, result.FilesCleaned, 1)
	assert.Equal(t, "orphan", result.FilesCleaned[0].Rel())
	assert.False(t, env.LocalFileExists("orphan"))
	assert.True(t, env.LocalFileExists("keep"))

	// a second clean finds nothing left to do
	again, err := operations.Clean(env.Profile("a"), operations.CleanIndex, operations.Options{})
	require.NoError(t, err)
	assert.Empty(t, again.FilesCleaned)
}

func TestCleanRespectsIgnoreFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("a", "")
	env.WriteSetFile("a", "precious", "p\n")

	ctx := context.Background()
	_, err := operations.Pull(ctx, env.Profile("a"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	// the user starts ignoring the file, then it loses ownership
	env.WriteLocalFile(paths.IgnoreFileName, "precious\n")
	require.NoError(t, env.RemoveSetFile("a", "precious"))
	_, err = operations.Pull(ctx, env.Profile("a"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	result, err := operations.Clean(env.Profile("a"), operations.CleanIndex, operations.Options{})
	require.NoError(t, err)
	assert.Empty(t, result.FilesCleaned)
	assert.True(t, env.LocalFileExists("precious"))
}

func TestCleanFullMode(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".bashrc", "x\n")
	env.WriteLocalFile(".bashrc", "x\n")
	env.WriteLocalFile("untracked.tmp", "x\n")
	env.WriteLocalFile("stale.conf", "x\n")

	idx := index.New()
	idx.Set(env.LocalPath(".bashrc"), "base")
	idx.Set(env.LocalPath("stale.conf"), "gone-set")
	require.NoError(t, idx.Save(env.DataRoot, index.Current))

	result, err := operations.Clean(env.Profile("base"), operations.CleanFull, operations.Options{})
	require.NoError(t, err)

	require.Len(t, result.FilesCleaned, 2)
	assert.Equal(t, "stale.conf", result.FilesCleaned[0].Rel())
	assert.Equal(t, "untracked.tmp", result.FilesCleaned[1].Rel())
	assert.True(t, env.LocalFileExists(".bashrc"))
	assert.False(t, env.LocalFileExists("untracked.tmp"))
	assert.False(t, env.LocalFileExists("stale.conf"))
}

func TestCleanDryRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteLocalFile("untracked.tmp", "x\n")

	result, err := operations.Clean(env.Profile("base"), operations.CleanFull, operations.Options{DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.FilesCleaned, 1)
	assert.True(t, env.LocalFileExists("untracked.tmp"))
}

func TestStatusScoping(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("base", "")
	env.WriteSetFile("base", ".config/app/settings", "x\n")
	env.WriteLocalFile(".config/app/settings", "x\n")
	env.WriteLocalFile(".config/other/file", "x\n")
	env.WriteLocalFile("outside.txt", "x\n")

	idx := index.New()
	idx.Set(env.LocalPath(".config/app/settings"), "base")
	require.NoError(t, idx.Save(env.DataRoot, index.Current))

	full, err := operations.Status(env.Profile("base"), paths.LocalFilePath{})
	require.NoError(t, err)
	require.Len(t, full.ToPush, 1)
	assert.Len(t, full.Untracked, 2)

	scoped, err := operations.Status(env.Profile("base"), env.LocalPath(".config/app"))
	require.NoError(t, err)
	require.Len(t, scoped.ToPush, 1)
	assert.Empty(t, scoped.Untracked)
}

func TestStatusReportsOldFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.CreateSet("a", "")
	env.WriteSetFile("a", "keep", "k\n")
	env.CreateSet("b", "")
	env.WriteSetFile("b", "orphan", "o\n")

	ctx := context.Background()
	_, err := operations.Pull(ctx, env.Profile("a", "b"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)
	_, err = operations.Pull(ctx, env.Profile("a"), &testutil.CopyTransfer{}, operations.Options{})
	require.NoError(t, err)

	result, err := operations.Status(env.Profile("a"), paths.LocalFilePath{})
	require.NoError(t, err)
	require.Len(t, result.OldFilesSinceLastPull, 1)
	assert.Equal(t, "orphan", result.OldFilesSinceLastPull[0].Rel())
}
