// Package operations orchestrates the reconciliation engine: push, pull,
// put, clean, status, init and new-set. The operations themselves stay
// thin; the repo loader, local classifier, index and merge step do the
// real work. Dry-run skips every filesystem-mutating step while still
// computing and returning the full would-be result, so reporting logic
// is shared between real and simulated runs.
package operations

import (
	"sort"

	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// Options apply to every operation.
type Options struct {
	DryRun bool
}

// SetFiles groups local paths under the set name they belong to, used
// for result reporting.
type SetFiles struct {
	Set   repo.SetName
	Files []paths.LocalFilePath
}

// groupInOrder flattens a by-set map into a slice ordered by the
// profile's declared target order; sets the profile does not target come
// last, sorted by name, so nothing non-empty is ever dropped from a
// report. Files within a set are sorted by path.
func groupInOrder(targets []repo.SetName, bySet map[repo.SetName][]paths.LocalFilePath) []SetFiles {
	seen := make(map[repo.SetName]bool, len(targets))
	var out []SetFiles

	appendSet := func(name repo.SetName) {
		files, ok := bySet[name]
		if !ok || seen[name] {
			return
		}
		seen[name] = true
		sorted := make([]paths.LocalFilePath, len(files))
		copy(sorted, files)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rel() < sorted[j].Rel() })
		out = append(out, SetFiles{Set: name, Files: sorted})
	}

	for _, name := range targets {
		appendSet(name)
	}
	for _, name := range sortedSetNames(bySet) {
		appendSet(name)
	}
	return out
}

// sortedFiles returns a copy of files sorted by path.
func sortedFiles(files []paths.LocalFilePath) []paths.LocalFilePath {
	out := make([]paths.LocalFilePath, len(files))
	copy(out, files)
	sort.Slice(out, func(i, j int) bool { return out[i].Rel() < out[j].Rel() })
	return out
}

// filterScope keeps only files at or below the scope path. The empty
// scope is the local root and keeps everything.
func filterScope(files []paths.LocalFilePath, scope paths.LocalFilePath) []paths.LocalFilePath {
	var out []paths.LocalFilePath
	for _, f := range files {
		if f.IsChildOf(scope) {
			out = append(out, f)
		}
	}
	return out
}

// filterScopeGroups applies filterScope inside each group, dropping
// groups that become empty.
func filterScopeGroups(groups []SetFiles, scope paths.LocalFilePath) []SetFiles {
	var out []SetFiles
	for _, g := range groups {
		files := filterScope(g.Files, scope)
		if len(files) > 0 {
			out = append(out, SetFiles{Set: g.Set, Files: files})
		}
	}
	return out
}
