// Package transfer invokes the external file-copy tool. The engine only
// ever sees the Transfer interface: a source directory, a destination
// directory, and a relative file list; success is the child's exit
// status, nothing else.
package transfer

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/arthur-debert/monja/pkg/errors"
	"github.com/arthur-debert/monja/pkg/logging"
)

// Transfer copies the listed files (paths relative to sourceDir) from
// sourceDir into destDir, creating destination directories as needed.
type Transfer interface {
	Copy(ctx context.Context, sourceDir, destDir string, files []string) error
}

// Rsync runs one rsync child process per call, feeding the file list on
// stdin. Checksum mode is used because size+mtime alone can miss changes
// between sets that carry same-sized variants of a file; rsync still
// compares sizes first, so the common case stays fast.
type Rsync struct {
	// Verbose adds -v to the child's arguments.
	Verbose bool
}

func (r Rsync) Copy(ctx context.Context, sourceDir, destDir string, files []string) error {
	logger := logging.GetLogger("transfer")

	args := []string{"-a", "--files-from=-", "--checksum", "--mkpath"}
	if r.Verbose {
		args = append(args, "-v")
	}
	// The trailing separator works with --mkpath to ensure the
	// destination directory itself gets created.
	args = append(args, sourceDir, destDir+"/")

	cmd := exec.CommandContext(ctx, "rsync", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, errors.ErrTransfer, "cannot open rsync stdin")
	}

	logger.Debug().
		Str("source", sourceDir).
		Str("dest", destDir).
		Int("files", len(files)).
		Msg("Starting rsync")
	logger.Trace().Str("fileList", quoteList(files)).Msg("rsync file list")

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, errors.ErrTransfer, "cannot start rsync")
	}

	writeErr := writeFileList(stdin, files)

	if err := cmd.Wait(); err != nil {
		return errors.Wrap(err, errors.ErrTransfer, "rsync exited unsuccessfully").
			WithDetail("source", sourceDir).
			WithDetail("dest", destDir)
	}
	if writeErr != nil {
		return errors.Wrap(writeErr, errors.ErrTransfer, "cannot write rsync file list")
	}

	logger.Debug().Str("source", sourceDir).Msg("rsync finished")
	return nil
}

// writeFileList streams the newline-delimited list and closes the pipe,
// which signals EOF to the child.
func writeFileList(stdin io.WriteCloser, files []string) error {
	defer func() { _ = stdin.Close() }()
	for _, f := range files {
		if _, err := io.WriteString(stdin, f+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// quoteList is a debugging aid for trace logs.
func quoteList(files []string) string {
	return strings.Join(files, ", ")
}
