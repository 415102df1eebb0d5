// Package depot models the versioned directory layout shared by the depot
// and stage roots: one subdirectory per build version, newest version wins.
package depot

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joe/stage-builds/pkg/filesystem"
)

// Version identifies one build version directory. It is immutable once
// constructed.
type Version struct {
	// Tag is the lowercased directory name, used as the version's identity
	// so comparisons behave the same on case-insensitive filesystems.
	Tag string

	// Name is the directory name as it appears on disk.
	Name string

	// Location is the full path of the version directory.
	Location string

	// Created orders versions newest-first. The directory's modification
	// time stands in for its creation time; CreateDestination stamps it
	// explicitly so the ordering survives out-of-order staging runs.
	Created time.Time
}

// Enumerable is the source-side capability: walking a version's file tree.
type Enumerable interface {
	Files() filesystem.FileScanner
}

// Lookup is the destination-side capability: finding one file by its path
// relative to the version root.
type Lookup interface {
	Lookup(relPath string) (os.FileInfo, bool, error)
}

// Source wraps a Version with file enumeration.
type Source struct {
	Version

	fsys filesystem.FileSystem
}

// NewSource creates the enumerable role for a version.
func NewSource(version Version, fsys filesystem.FileSystem) *Source {
	return &Source{Version: version, fsys: fsys}
}

// Files returns an iterator over the version's tree. Directories whose name
// starts with a dot are skipped along with their subtrees.
func (s *Source) Files() filesystem.FileScanner {
	return filesystem.NewScanner(s.fsys, s.Location, true)
}

// Destination wraps a Version with point lookup.
type Destination struct {
	Version

	fsys filesystem.FileSystem
}

// NewDestination creates the lookup role for a version.
func NewDestination(version Version, fsys filesystem.FileSystem) *Destination {
	return &Destination{Version: version, fsys: fsys}
}

// Lookup reports whether relPath exists under the version, returning its
// file info when present. A missing file is not an error.
func (d *Destination) Lookup(relPath string) (os.FileInfo, bool, error) {
	info, err := d.fsys.Stat(d.fsys.Join(d.Location, relPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to look up %s under %s: %w", relPath, d.Name, err)
	}

	return info, true, nil
}
