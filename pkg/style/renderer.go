package style

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/monja/pkg/operations"
	"github.com/arthur-debert/monja/pkg/paths"
)

// RenderPull summarizes a pull per set, in target order.
func RenderPull(result *operations.PullResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString(Title(verb("Pulled", dryRun)) + "\n")

	if len(result.FilesPulled) == 0 {
		b.WriteString(Muted("nothing to pull") + "\n")
	}
	for _, group := range result.FilesPulled {
		b.WriteString(renderSetFiles(group, StatusSynced))
	}

	if len(result.CleanableFiles) > 0 {
		b.WriteString("\n" + Title("Cleanable") + " " +
			Muted("(files that lost ownership; run `monja clean` to remove)") + "\n")
		for _, f := range result.CleanableFiles {
			b.WriteString(Indent(Sprint(StatusStyle(StatusStale), f.Rel()), 1) + "\n")
		}
	}
	return b.String()
}

// RenderPush summarizes a push per set.
func RenderPush(result *operations.PushResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString(Title(verb("Pushed", dryRun)) + "\n")

	if len(result.FilesPushed) == 0 {
		b.WriteString(Muted("nothing to push") + "\n")
	}
	for _, group := range result.FilesPushed {
		b.WriteString(renderSetFiles(group, StatusSynced))
	}

	if len(result.Untracked) > 0 {
		b.WriteString("\n" + Title("Untracked") + " " +
			Muted("(not pushed; use `monja put` to add them to a set)") + "\n")
		b.WriteString(renderFileList(result.Untracked, StatusUntracked))
	}
	return b.String()
}

// RenderPut summarizes a put and its caveats.
func RenderPut(result *operations.PutResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString(Title(verb("Put", dryRun)) + " " +
		Muted(fmt.Sprintf("into set %s", Bold(result.OwningSet.String()))) + "\n")
	b.WriteString(renderFileList(result.Files, StatusSynced))

	if !result.SetIsTargeted {
		b.WriteString("\n" + Sprint(ErrorStyle,
			fmt.Sprintf("warning: set %q is not in your target-sets; these files will not be pulled", result.OwningSet)) + "\n")
	}
	for _, fs := range result.FilesInLaterSets {
		names := make([]string, len(fs.Sets))
		for i, s := range fs.Sets {
			names[i] = s.String()
		}
		b.WriteString(Sprint(StatusStyle(StatusPending),
			fmt.Sprintf("note: %s also exists in later set(s) %s, which will win on the next pull",
				fs.File.Rel(), strings.Join(names, ", "))) + "\n")
	}
	if len(result.Untracked) > 0 {
		b.WriteString(Muted("still untracked by any targeted set:") + "\n")
		b.WriteString(renderFileList(result.Untracked, StatusUntracked))
	}
	return b.String()
}

// RenderClean lists what was removed.
func RenderClean(result *operations.CleanResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString(Title(verb("Cleaned", dryRun)) + " " +
		Muted(Count(len(result.FilesCleaned), "file")) + "\n")
	b.WriteString(renderFileList(result.FilesCleaned, StatusStale))
	return b.String()
}

// RenderStatus lays out every non-empty partition.
func RenderStatus(result *operations.StatusResult) string {
	var b strings.Builder

	writeGroups := func(title string, groups []operations.SetFiles, status Status) {
		if len(groups) == 0 {
			return
		}
		b.WriteString(Title(title) + "\n")
		for _, g := range groups {
			b.WriteString(renderSetFiles(g, status))
		}
		b.WriteString("\n")
	}

	writeGroups("To push", result.ToPush, StatusPending)
	writeGroups("Missing sets", result.MissingSets, StatusBroken)
	writeGroups("Missing from set", result.MissingFiles, StatusBroken)

	if len(result.Untracked) > 0 {
		b.WriteString(Title("Untracked") + "\n")
		b.WriteString(renderFileList(result.Untracked, StatusUntracked))
		b.WriteString("\n")
	}
	if len(result.OldFilesSinceLastPull) > 0 {
		b.WriteString(Title("Cleanable since last pull") + "\n")
		b.WriteString(renderFileList(result.OldFilesSinceLastPull, StatusStale))
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return Muted("everything in sync") + "\n"
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderInit confirms first-time setup.
func RenderInit(result *operations.InitResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString(Title(verb("Initialized", dryRun)) + "\n")
	b.WriteString(Indent(Muted("profile: ")+result.ProfileConfigPath, 1) + "\n")
	if result.Profile != nil {
		b.WriteString(Indent(Muted("repo:    ")+result.Profile.RepoRoot.String(), 1) + "\n")
	}
	return b.String()
}

// RenderNewSet confirms set creation.
func RenderNewSet(result *operations.NewSetResult, dryRun bool) string {
	var b strings.Builder
	b.WriteString(Title(verb("Created set", dryRun)) + " " + Bold(result.Name.String()) + "\n")
	if !result.Shortcut.IsEmpty() {
		b.WriteString(Indent(Muted("shortcut: ")+result.Shortcut.Rel(), 1) + "\n")
	}
	if result.Put != nil {
		b.WriteString(renderFileList(result.Put.Files, StatusSynced))
	}
	return b.String()
}

// RenderError renders a top-level failure, expanding the structured
// engine errors into their full detail lists.
func RenderError(err error) string {
	var b strings.Builder

	switch e := err.(type) {
	case *operations.ConsistencyError:
		b.WriteString(Sprint(ErrorStyle, "push blocked: local state disagrees with the repo") + "\n")
		for _, group := range consistencyGroups(e) {
			b.WriteString(renderSetFiles(group, StatusBroken))
		}
		b.WriteString(Muted("use `monja put <set> <file>...` to re-add files, or `monja clean --full` to drop them") + "\n")
	case *operations.MissingSetsError:
		b.WriteString(Sprint(ErrorStyle, e.Error()) + "\n")
	case *operations.RepoStateError:
		b.WriteString(Sprint(ErrorStyle, "the repo could not be loaded:") + "\n")
		for _, sub := range e.Errs {
			b.WriteString(Indent(sub.Error(), 1) + "\n")
		}
	default:
		b.WriteString(Sprint(ErrorStyle, err.Error()) + "\n")
	}
	return b.String()
}

func consistencyGroups(e *operations.ConsistencyError) []operations.SetFiles {
	var out []operations.SetFiles
	for set, files := range e.MissingSets {
		out = append(out, operations.SetFiles{Set: set, Files: files})
	}
	for set, files := range e.MissingFiles {
		out = append(out, operations.SetFiles{Set: set, Files: files})
	}
	return out
}

func renderSetFiles(group operations.SetFiles, status Status) string {
	var b strings.Builder
	b.WriteString(Indent(Bold(group.Set.String()), 1) + " " +
		Muted(fmt.Sprintf("(%s)", Count(len(group.Files), "file"))) + "\n")
	for _, f := range group.Files {
		b.WriteString(Indent(Sprint(StatusStyle(status), f.Rel()), 2) + "\n")
	}
	return b.String()
}

func renderFileList(files []paths.LocalFilePath, status Status) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(Indent(Sprint(StatusStyle(status), f.Rel()), 1) + "\n")
	}
	return b.String()
}

func verb(v string, dryRun bool) string {
	if dryRun {
		return v + " (dry-run)"
	}
	return v
}
