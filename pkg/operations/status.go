package operations

import (
	"github.com/arthur-debert/monja/pkg/config"
	"github.com/arthur-debert/monja/pkg/index"
	"github.com/arthur-debert/monja/pkg/local"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// StatusResult is the full classification of the local tree, scoped to a
// location, plus the index-generation diff. Every non-empty partition is
// surfaced; status never mutates anything.
type StatusResult struct {
	ToPush       []SetFiles
	MissingSets  []SetFiles
	MissingFiles []SetFiles
	Untracked    []paths.LocalFilePath

	// OldFilesSinceLastPull are previous-generation entries that lost
	// ownership: what clean (index mode) would delete.
	OldFilesSinceLastPull []paths.LocalFilePath
}

// Status reports local state relative to the repo, limited to files at
// or below scope (the empty scope is the whole local root).
func Status(profile *config.Profile, scope paths.LocalFilePath) (*StatusResult, error) {
	repoState, errs := repo.InitializeFullState(profile.RepoRoot, profile.Special)
	if len(errs) > 0 {
		return nil, &RepoStateError{Errs: errs}
	}

	curr, err := index.Load(profile.DataRoot, index.Current)
	if err != nil {
		return nil, err
	}
	prev, err := index.Load(profile.DataRoot, index.Previous)
	if err != nil {
		return nil, err
	}
	matcher, err := local.LoadIgnore(profile.LocalRoot)
	if err != nil {
		return nil, err
	}

	state, err := local.RetrieveState(profile.LocalRoot, profile.RepoRoot, curr, repoState, profile.Special, matcher)
	if err != nil {
		return nil, err
	}

	old, err := cleanableFiles(profile, prev, curr)
	if err != nil {
		return nil, err
	}

	targets := profile.Config.TargetSets
	return &StatusResult{
		ToPush:                filterScopeGroups(groupInOrder(targets, state.ToPush), scope),
		MissingSets:           filterScopeGroups(groupInOrder(targets, state.MissingSets), scope),
		MissingFiles:          filterScopeGroups(groupInOrder(targets, state.MissingFiles), scope),
		Untracked:             filterScope(sortedFiles(state.Untracked), scope),
		OldFilesSinceLastPull: filterScope(old, scope),
	}, nil
}
