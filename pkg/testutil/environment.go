// Package testutil provides test environments and fixtures shared by the
// package test suites.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// TestEnvironment is an isolated local root, repo and data dir under a
// temp directory, with a ready-made profile.
type TestEnvironment struct {
	LocalRoot paths.AbsolutePath
	RepoRoot  paths.AbsolutePath
	DataRoot  string

	t *testing.T
}

// NewTestEnvironment creates the local/repo/data directories and points
// the monja dir overrides at them, so operations under test never touch
// the real home.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tempDir := t.TempDir()
	localDir := filepath.Join(tempDir, "home")
	repoDir := filepath.Join(tempDir, "repo")
	dataDir := filepath.Join(tempDir, "data")
	for _, dir := range []string{localDir, repoDir, dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", localDir)
	t.Setenv("MONJA_DATA_DIR", dataDir)
	t.Setenv("MONJA_CONFIG_DIR", filepath.Join(tempDir, "config"))

	localRoot, err := paths.ForExistingPath(localDir)
	if err != nil {
		t.Fatalf("Failed to resolve local root: %v", err)
	}
	repoRoot, err := paths.ForExistingPath(repoDir)
	if err != nil {
		t.Fatalf("Failed to resolve repo root: %v", err)
	}

	return &TestEnvironment{
		LocalRoot: localRoot,
		RepoRoot:  repoRoot,
		DataRoot:  dataDir,
		t:         t,
	}
}

// Profile builds a profile targeting the given sets, in order.
func (env *TestEnvironment) Profile(targetSets ...repo.SetName) *config.Profile {
	env.t.Helper()

	cfg := config.ProfileConfig{
		RepoDir:    env.RepoRoot.String(),
		TargetSets: targetSets,
	}
	profile, err := config.NewProfile(cfg, env.LocalRoot, env.DataRoot)
	if err != nil {
		env.t.Fatalf("Failed to build profile: %v", err)
	}
	return profile
}

// CreateSet creates a set directory, with a shortcut when non-empty.
func (env *TestEnvironment) CreateSet(name repo.SetName, shortcut string) {
	env.t.Helper()

	setDir := env.RepoRoot.Join(name.String())
	if err := os.MkdirAll(setDir, 0755); err != nil {
		env.t.Fatalf("Failed to create set %s: %v", name, err)
	}
	if shortcut != "" {
		cfg := repo.SetConfig{Shortcut: shortcut}
		if err := cfg.Save(setDir); err != nil {
			env.t.Fatalf("Failed to save set config for %s: %v", name, err)
		}
	}
}

// WriteSetFile writes a file inside a set, creating parent directories.
func (env *TestEnvironment) WriteSetFile(set repo.SetName, pathInSet, content string) {
	env.t.Helper()
	env.writeFile(env.RepoRoot.Join(set.String(), filepath.FromSlash(pathInSet)), content)
}

// WriteLocalFile writes a file under the local root, creating parent
// directories.
func (env *TestEnvironment) WriteLocalFile(rel, content string) {
	env.t.Helper()
	env.writeFile(filepath.Join(env.LocalRoot.String(), filepath.FromSlash(rel)), content)
}

// ReadLocalFile reads a file under the local root.
func (env *TestEnvironment) ReadLocalFile(rel string) string {
	env.t.Helper()

	data, err := os.ReadFile(filepath.Join(env.LocalRoot.String(), filepath.FromSlash(rel)))
	if err != nil {
		env.t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// ReadSetFile reads a file inside a set.
func (env *TestEnvironment) ReadSetFile(set repo.SetName, pathInSet string) string {
	env.t.Helper()

	data, err := os.ReadFile(env.RepoRoot.Join(set.String(), filepath.FromSlash(pathInSet)))
	if err != nil {
		env.t.Fatalf("Failed to read %s from set %s: %v", pathInSet, set, err)
	}
	return string(data)
}

// RemoveSetFile deletes a file from a set.
func (env *TestEnvironment) RemoveSetFile(set repo.SetName, pathInSet string) error {
	env.t.Helper()
	return os.Remove(env.RepoRoot.Join(set.String(), filepath.FromSlash(pathInSet)))
}

// LocalFileExists reports whether a file exists under the local root.
func (env *TestEnvironment) LocalFileExists(rel string) bool {
	env.t.Helper()

	_, err := os.Stat(filepath.Join(env.LocalRoot.String(), filepath.FromSlash(rel)))
	return err == nil
}

// LocalPath converts a root-relative slash path into a LocalFilePath,
// failing the test on invalid input.
func (env *TestEnvironment) LocalPath(rel string) paths.LocalFilePath {
	env.t.Helper()

	p, err := paths.NewLocalRelPath(rel)
	if err != nil {
		env.t.Fatalf("Invalid local path %q: %v", rel, err)
	}
	return p
}

func (env *TestEnvironment) writeFile(path, content string) {
	env.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("Failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write %s: %v", path, err)
	}
}
