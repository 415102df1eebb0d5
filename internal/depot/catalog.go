package depot

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/joe/stage-builds/pkg/filesystem"
)

// Catalog lists the version subdirectories of one root, newest first. The
// listing is computed on first use and cached, so a Catalog is a single
// point-in-time snapshot of the root.
type Catalog struct {
	fsys   filesystem.FileSystem
	root   string
	accept func(tag string) bool

	once     sync.Once
	versions []Version
	err      error
}

// NewCatalog creates a catalog over root. The accept predicate receives the
// lowercased directory name and filters which subdirectories count as
// versions; nil accepts everything.
func NewCatalog(fsys filesystem.FileSystem, root string, accept func(tag string) bool) *Catalog {
	return &Catalog{fsys: fsys, root: root, accept: accept}
}

// List returns the versions under the root, sorted newest first by Created.
func (c *Catalog) List() ([]Version, error) {
	c.once.Do(func() {
		c.versions, c.err = c.scan()
	})

	if c.err != nil {
		return nil, c.err
	}

	return c.versions, nil
}

func (c *Catalog) scan() ([]Version, error) {
	entries, err := c.fsys.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions under %s: %w", c.root, err)
	}

	versions := make([]Version, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		// Dot directories hold tooling state, never build versions.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		tag := strings.ToLower(entry.Name())
		if c.accept != nil && !c.accept(tag) {
			continue
		}

		versions = append(versions, Version{
			Tag:      tag,
			Name:     entry.Name(),
			Location: c.fsys.Join(c.root, entry.Name()),
			Created:  entry.ModTime(),
		})
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Created.After(versions[j].Created)
	})

	return versions, nil
}
