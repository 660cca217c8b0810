package operations

import (
	"github.com/arthur-debert/monja/pkg/logging"
	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// mergeLayers resolves ownership across the target sets. Sets are folded
// in declared order and a later layer overwrites any prior claim on the
// same local path, which is the whole layering contract: last listed set
// wins. If any target set is missing from the repo, the merge aborts
// with the complete list of missing names and no partial result.
func mergeLayers(state *repo.State, targets []repo.SetName) (map[paths.LocalFilePath]repo.FileRecord, *MissingSetsError) {
	var missing []repo.SetName
	for _, name := range targets {
		if _, ok := state.Set(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingSetsError{Sets: missing}
	}

	acc := make(map[paths.LocalFilePath]repo.FileRecord)
	for rank, name := range targets {
		set, _ := state.Set(name)
		mergeLayer(acc, set, rank)
	}
	return acc, nil
}

// mergeLayer folds one set into the accumulator. Overwrite-on-insert is
// the override rule, stated here once rather than left as an accident of
// map semantics.
func mergeLayer(acc map[paths.LocalFilePath]repo.FileRecord, set *repo.Set, rank int) {
	logger := logging.GetLogger("merge")

	overridden := 0
	for localPath, record := range set.Files {
		if _, taken := acc[localPath]; taken {
			overridden++
		}
		acc[localPath] = record
	}

	logger.Trace().
		Str("set", set.Name.String()).
		Int("rank", rank).
		Int("files", len(set.Files)).
		Int("overridden", overridden).
		Msg("Merged layer")
}

// groupWinners regroups the merged mapping by owning set for the per-set
// transfer step.
func groupWinners(acc map[paths.LocalFilePath]repo.FileRecord) map[repo.SetName][]repo.FileRecord {
	bySet := make(map[repo.SetName][]repo.FileRecord)
	for _, record := range acc {
		bySet[record.OwningSet] = append(bySet[record.OwningSet], record)
	}
	return bySet
}
