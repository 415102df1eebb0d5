package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kr/fs"
)

// FileScanner is an iterator over files in a directory tree.
// It provides a simple Next pattern for traversing directory contents.
type FileScanner interface {
	// Next advances to the next file and returns its info.
	// Returns (FileInfo{}, false) when done or on error.
	// Check Err() after Next() returns false to distinguish between end-of-scan and error.
	Next() (FileInfo, bool)

	// Err returns any error that occurred during scanning.
	// Should be checked after Next() returns false.
	Err() error
}

// FileInfo contains metadata about a file.
// This is our own type (not os.FileInfo) to make it easier to work with.
type FileInfo struct {
	// RelativePath is the path relative to the scan root
	RelativePath string

	// Size is the file size in bytes
	Size int64

	// ModTime is the modification time
	ModTime time.Time

	// IsDir indicates if this is a directory
	IsDir bool
}

// walkScanner implements FileScanner on a kr/fs walker, so it traverses any
// FileSystem implementation through the same code path.
type walkScanner struct {
	walker     *fs.Walker
	root       string
	skipHidden bool
	err        error
}

// NewScanner returns an iterator over the tree rooted at root, yielding
// entries incrementally rather than collecting the tree up front. When
// skipHidden is true, any directory whose name starts with a dot is skipped
// along with its entire subtree. Scanning stops at the first error.
func NewScanner(fsys FileSystem, root string, skipHidden bool) FileScanner {
	return &walkScanner{
		walker:     fs.WalkFS(root, fsys),
		root:       root,
		skipHidden: skipHidden,
	}
}

// Next advances to the next file and returns its info.
func (s *walkScanner) Next() (FileInfo, bool) {
	if s.err != nil {
		return FileInfo{}, false
	}

	for s.walker.Step() {
		err := s.walker.Err()
		if err != nil {
			s.err = fmt.Errorf("failed to scan %s: %w", s.walker.Path(), err)

			return FileInfo{}, false
		}

		path := s.walker.Path()

		// Skip the root directory itself
		if path == s.root {
			continue
		}

		info := s.walker.Stat()

		if s.skipHidden && info.IsDir() && strings.HasPrefix(info.Name(), ".") {
			s.walker.SkipDir()

			continue
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			s.err = fmt.Errorf("failed to get relative path for %s: %w", path, err)

			return FileInfo{}, false
		}

		return FileInfo{
			RelativePath: relPath,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			IsDir:        info.IsDir(),
		}, true
	}

	return FileInfo{}, false
}

// Err returns any error that occurred during scanning.
func (s *walkScanner) Err() error {
	return s.err
}
