package depot

import (
	"errors"
	"fmt"

	"github.com/joe/stage-builds/pkg/fileops"
	"github.com/joe/stage-builds/pkg/filesystem"
)

// ErrNoVersions is returned by BestSource when the depot holds no versions
// that pass the name filter. Callers treat it as "nothing to do", not as a
// failure.
var ErrNoVersions = errors.New("no versions available")

// Repository pairs the depot catalog with the stage catalog and selects the
// versions a staging run works with.
type Repository struct {
	fsys         filesystem.FileSystem
	stageRoot    string
	sources      *Catalog
	destinations *Catalog
}

// NewRepository creates a repository over the two roots. The accept
// predicate applies to both catalogs.
func NewRepository(fsys filesystem.FileSystem, depotRoot, stageRoot string, accept func(tag string) bool) *Repository {
	return &Repository{
		fsys:         fsys,
		stageRoot:    stageRoot,
		sources:      NewCatalog(fsys, depotRoot, accept),
		destinations: NewCatalog(fsys, stageRoot, accept),
	}
}

// Sources returns the depot versions, newest first.
func (r *Repository) Sources() ([]Version, error) {
	return r.sources.List()
}

// Destinations returns the already staged versions, newest first.
func (r *Repository) Destinations() ([]Version, error) {
	return r.destinations.List()
}

// BestSource returns the newest depot version, or ErrNoVersions when the
// depot is empty.
func (r *Repository) BestSource() (Version, error) {
	versions, err := r.sources.List()
	if err != nil {
		return Version{}, err
	}

	if len(versions) == 0 {
		return Version{}, ErrNoVersions
	}

	return versions[0], nil
}

// BestCache returns the newest staged version whose tag differs from the
// source's, to serve as a local copy source. The source's own stage
// directory never qualifies, even partially staged from an earlier run.
func (r *Repository) BestCache(source Version) (Version, bool, error) {
	versions, err := r.destinations.List()
	if err != nil {
		return Version{}, false, err
	}

	for _, version := range versions {
		if version.Tag != source.Tag {
			return version, true, nil
		}
	}

	return Version{}, false, nil
}

// CreateDestination ensures the stage directory for the source version
// exists and stamps its timestamp with the source's, keeping version
// ordering stable across out-of-order runs. Creating an existing
// destination is not an error, which is what makes interrupted runs
// resumable.
func (r *Repository) CreateDestination(source Version) (Version, error) {
	location := r.fsys.Join(r.stageRoot, source.Name)

	err := r.fsys.MkdirAll(location, fileops.DefaultDirPermissions)
	if err != nil {
		return Version{}, fmt.Errorf("failed to create stage directory %s: %w", location, err)
	}

	err = r.fsys.Chtimes(location, source.Created, source.Created)
	if err != nil {
		return Version{}, fmt.Errorf("failed to stamp stage directory %s: %w", location, err)
	}

	return Version{
		Tag:      source.Tag,
		Name:     source.Name,
		Location: location,
		Created:  source.Created,
	}, nil
}
