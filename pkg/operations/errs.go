package operations

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/arthur-debert/monja/pkg/paths"
	"github.com/arthur-debert/monja/pkg/repo"
)

// RepoStateError carries every error the repo loader accumulated. One
// bad set must not mask problems in the others, so the whole list is
// kept and combined only for display.
type RepoStateError struct {
	Errs []error
}

func (e *RepoStateError) Error() string {
	return fmt.Sprintf("unable to initialize repo state: %v", multierr.Combine(e.Errs...))
}

func (e *RepoStateError) Unwrap() error {
	return multierr.Combine(e.Errs...)
}

// MissingSetsError aborts a pull when target sets are absent from the
// repo. Every missing name is listed, not just the first found.
type MissingSetsError struct {
	Sets []repo.SetName
}

func (e *MissingSetsError) Error() string {
	names := make([]string, len(e.Sets))
	for i, s := range e.Sets {
		names[i] = s.String()
	}
	return fmt.Sprintf("sets needed by the profile are missing from the repo: %s",
		strings.Join(names, ", "))
}

// ConsistencyError blocks a push. Both partitions are returned verbatim
// so the caller can report exactly which sets and files disagree with
// the repo; nothing is auto-resolved.
type ConsistencyError struct {
	MissingSets  map[repo.SetName][]paths.LocalFilePath
	MissingFiles map[repo.SetName][]paths.LocalFilePath
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"local state disagrees with the repo (%d set(s) missing, %d set(s) with missing files); push aborted",
		len(e.MissingSets), len(e.MissingFiles))
}

// sortedSetNames returns map keys in a stable order for reporting.
func sortedSetNames[V any](m map[repo.SetName]V) []repo.SetName {
	names := make([]repo.SetName, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
