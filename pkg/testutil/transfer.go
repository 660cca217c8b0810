package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// CopyTransfer is an in-process stand-in for the rsync transfer. It
// records every call so tests can assert on what would have been synced.
type CopyTransfer struct {
	Calls []TransferCall
}

// TransferCall captures one Copy invocation.
type TransferCall struct {
	SourceDir string
	DestDir   string
	Files     []string
}

// Copy copies each listed file from sourceDir to destDir, creating
// parent directories as it goes.
func (c *CopyTransfer) Copy(ctx context.Context, sourceDir, destDir string, files []string) error {
	c.Calls = append(c.Calls, TransferCall{SourceDir: sourceDir, DestDir: destDir, Files: files})

	for _, f := range files {
		src := filepath.Join(sourceDir, filepath.FromSlash(f))
		dst := filepath.Join(destDir, filepath.FromSlash(f))
		if err := copyFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
