// Package fileops provides the file copy primitive and the size-and-time
// comparison used to decide whether a copy is needed at all.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/joe/stage-builds/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (32KB)
	BufferSize = 32 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
)

// Comparison describes how a candidate local file relates to the source file
// it might stand in for.
type Comparison struct {
	SameSize bool
	SameTime bool
	Older    bool
}

// Compare relates a source file's size and modification time to a local
// candidate's. Modification times must match exactly.
func Compare(sourceSize int64, sourceTime time.Time, candidateSize int64, candidateTime time.Time) Comparison {
	return Comparison{
		SameSize: sourceSize == candidateSize,
		SameTime: sourceTime.Equal(candidateTime),
		Older:    candidateTime.Before(sourceTime),
	}
}

// Reusable reports whether the candidate can stand in for the source without
// copying. Content is never read; size plus exact modification time is the
// whole test.
func (c Comparison) Reusable() bool {
	return c.SameSize && c.SameTime
}

// FileOps provides file operations with dependency injection for filesystem
// access. This allows for testing without actual filesystem I/O.
type FileOps struct {
	FS filesystem.FileSystem
}

// NewFileOps creates a new FileOps instance with the given filesystem.
func NewFileOps(fs filesystem.FileSystem) *FileOps {
	return &FileOps{FS: fs}
}

// NewRealFileOps creates a new FileOps instance using the real filesystem.
func NewRealFileOps() *FileOps {
	return &FileOps{FS: filesystem.NewRealFileSystem()}
}

// CopyFile copies src to dst, creating the destination directory as needed
// and overwriting any existing file at dst. The written copy keeps the
// source's modification time; resumed runs depend on that to recognize
// already-completed files. On failure the partial destination file is
// removed.
func (fo *FileOps) CopyFile(src, dst string) (int64, error) {
	sourceFile, err := fo.FS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	// Get source file info
	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	// Create destination directory if it doesn't exist
	dstDir := filepath.Dir(dst)

	err = fo.FS.MkdirAll(dstDir, DefaultDirPermissions)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	// Create destination file
	destFile, err := fo.FS.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	// Track whether copy completed successfully
	copyCompleted := false

	defer func() {
		_ = destFile.Close()
		// If copy failed, delete the partial file
		if !copyCompleted {
			_ = fo.FS.Remove(dst)
		}
	}()

	written, err := copyLoop(sourceFile, destFile)
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	// Close the file before setting modification time
	// This is important for network filesystems like SMB
	err = destFile.Close()
	if err != nil {
		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	// Preserve modification time
	err = fo.FS.Chtimes(dst, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	// Mark copy as completed successfully
	copyCompleted = true

	return written, nil
}

// copyLoop performs the actual buffered copy.
func copyLoop(sourceFile, destFile filesystem.File) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, err := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if err != nil {
				return written, fmt.Errorf("failed to write to destination: %w", err)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
