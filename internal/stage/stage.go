// Package stage implements the differential staging pipeline: enumerate a
// depot version, classify every file against the destination and an optional
// cache version, and copy only what is missing.
package stage

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joe/stage-builds/internal/depot"
	"github.com/joe/stage-builds/internal/filter"
	"github.com/joe/stage-builds/pkg/fileops"
	"github.com/joe/stage-builds/pkg/filesystem"
	"github.com/joe/stage-builds/pkg/workqueue"
)

// Exported constants.
const (
	// DefaultWorkers is the drain fan-out used when none is configured.
	DefaultWorkers = 4
	// DefaultInterval is the progress publish interval used when none is
	// configured.
	DefaultInterval = time.Second
)

// Class is the outcome of discriminating one file.
type Class int

// Classification outcomes, mutually exclusive per file.
const (
	// LocalReuse means the destination already has the file; nothing is
	// copied.
	LocalReuse Class = iota
	// CacheCopy means the file is copied from another staged version on
	// the same volume.
	CacheCopy
	// RemoteCopy means the file is copied from the depot.
	RemoteCopy
)

// String returns the class name used in logs.
func (c Class) String() string {
	switch c {
	case LocalReuse:
		return "local-reuse"
	case CacheCopy:
		return "cache-copy"
	case RemoteCopy:
		return "remote-copy"
	default:
		return "unknown"
	}
}

// Config carries a session's collaborators and tuning. FS, Source and Dest
// are required; everything else has a usable zero value.
type Config struct {
	FS     filesystem.FileSystem
	Source depot.Version
	Dest   depot.Version

	// Cache is the staged version files may be copied from locally.
	// Nil when no other version is staged.
	Cache *depot.Version

	// Filter restricts which source files are staged. Files it rejects are
	// never counted as found. Nil stages everything.
	Filter filter.FileFilter

	// Workers bounds the drain fan-out of each queue.
	Workers int

	// Interval is how often progress is published.
	Interval time.Duration

	Sink   ProgressSink
	Clock  TimeProvider
	Logger *zap.Logger
}

// Session stages one depot version into its destination directory.
type Session struct {
	fsys     filesystem.FileSystem
	ops      *fileops.FileOps
	source   *depot.Source
	dest     *depot.Destination
	cache    *depot.Destination
	filter   filter.FileFilter
	tracker  *Tracker
	sink     ProgressSink
	clock    TimeProvider
	interval time.Duration
	workers  int
	log      *zap.Logger
}

// NewSession creates a session from the config, applying defaults for any
// optional collaborator left unset.
func NewSession(cfg Config) *Session {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}

	if cfg.Clock == nil {
		cfg.Clock = &RealTimeProvider{}
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	session := &Session{
		fsys:     cfg.FS,
		ops:      fileops.NewFileOps(cfg.FS),
		source:   depot.NewSource(cfg.Source, cfg.FS),
		dest:     depot.NewDestination(cfg.Dest, cfg.FS),
		filter:   cfg.Filter,
		tracker:  NewTracker(cfg.Clock),
		sink:     cfg.Sink,
		clock:    cfg.Clock,
		interval: cfg.Interval,
		workers:  cfg.Workers,
		log:      cfg.Logger,
	}

	if cfg.Cache != nil {
		session.cache = depot.NewDestination(*cfg.Cache, cfg.FS)
	}

	return session
}

// Run drives the session to completion: the source walk, the discrimination
// drain and the two copy drains run concurrently and are joined at the end.
// The first failure among them fails the run; the remaining activities still
// drain to exhaustion rather than being cancelled, so Run returns only once
// no work is in flight. The returned Progress holds the final counters even
// when err is non-nil.
func (s *Session) Run() (Progress, error) {
	discriminations := workqueue.NewTaskQueue()
	localCopies := workqueue.NewTaskQueue()
	remoteCopies := workqueue.NewTaskQueue()

	s.log.Info("staging started",
		zap.String("source", s.source.Location),
		zap.String("dest", s.dest.Location),
		zap.Int("workers", s.workers))

	var group errgroup.Group

	group.Go(func() error {
		return s.enumerate(discriminations, localCopies, remoteCopies)
	})
	group.Go(func() error {
		return s.discriminate(discriminations, localCopies, remoteCopies)
	})
	group.Go(func() error {
		return localCopies.Drain(s.workers) //nolint:wrapcheck // Drain reports copy task errors which carry their own context
	})
	group.Go(func() error {
		return remoteCopies.Drain(s.workers) //nolint:wrapcheck // Drain reports copy task errors which carry their own context
	})

	done := make(chan struct{})
	rendered := make(chan struct{})

	go s.displayLoop(done, rendered)

	err := group.Wait()

	close(done)
	<-rendered

	final := s.tracker.Snapshot()

	if err != nil {
		s.log.Error("staging failed", zap.Error(err))

		return final, err
	}

	s.log.Info("staging finished",
		zap.Int64("files", final.FilesFound),
		zap.Int64("bytes", final.BytesFound),
		zap.Int64("reused", final.FilesReusedLocal),
		zap.Int64("cached", final.FilesCopiedCached),
		zap.Int64("remote", final.FilesCopiedRemote))

	return final, nil
}

// enumerate walks the source tree and pushes one discrimination item per
// file. The discrimination queue closes when the walk ends, complete or not.
func (s *Session) enumerate(discriminations, localCopies, remoteCopies *workqueue.TaskQueue) error {
	defer discriminations.Close()

	scanner := s.source.Files()

	for {
		entry, ok := scanner.Next()
		if !ok {
			break
		}

		if entry.IsDir {
			continue
		}

		if s.filter != nil && !s.filter.ShouldInclude(entry.RelativePath) {
			continue
		}

		err := discriminations.Push(s.discriminationTask(entry, localCopies, remoteCopies))
		if err != nil {
			return fmt.Errorf("failed to queue discrimination of %s: %w", entry.RelativePath, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to enumerate %s: %w", s.source.Name, err)
	}

	return nil
}

// discriminate drains the discrimination queue. Both copy queues close when
// it returns, complete or not; the copy drains would otherwise wait forever
// on a producer that is gone.
func (s *Session) discriminate(discriminations, localCopies, remoteCopies *workqueue.TaskQueue) error {
	defer localCopies.Close()
	defer remoteCopies.Close()

	err := discriminations.Drain(s.workers)

	// Found totals only settle once every discrimination item has run.
	s.tracker.EnumerationDone()

	return err //nolint:wrapcheck // Drain reports discrimination errors which carry their own context
}

// discriminationTask classifies one file and schedules its copy if one is
// needed. Each file is classified independently; order never matters.
func (s *Session) discriminationTask(entry filesystem.FileInfo, localCopies, remoteCopies *workqueue.TaskQueue) workqueue.Task {
	return func() error {
		s.tracker.FileFound(entry.Size)

		destInfo, inDest, err := s.dest.Lookup(entry.RelativePath)
		if err != nil {
			return err //nolint:wrapcheck // Lookup errors already name the path and version
		}

		if inDest && fileops.Compare(entry.Size, entry.ModTime, destInfo.Size(), destInfo.ModTime()).Reusable() {
			s.tracker.FileReused(entry.Size)
			s.log.Debug("classified file",
				zap.String("path", entry.RelativePath),
				zap.Stringer("class", LocalReuse))

			return nil
		}

		if s.cache != nil {
			cacheInfo, inCache, err := s.cache.Lookup(entry.RelativePath)
			if err != nil {
				return err //nolint:wrapcheck // Lookup errors already name the path and version
			}

			if inCache && fileops.Compare(entry.Size, entry.ModTime, cacheInfo.Size(), cacheInfo.ModTime()).Reusable() {
				s.log.Debug("classified file",
					zap.String("path", entry.RelativePath),
					zap.Stringer("class", CacheCopy))

				return localCopies.Push(s.copyTask(s.cache.Location, entry, CacheCopy)) //nolint:wrapcheck // Push only fails on lifecycle misuse
			}
		}

		s.log.Debug("classified file",
			zap.String("path", entry.RelativePath),
			zap.Stringer("class", RemoteCopy))

		return remoteCopies.Push(s.copyTask(s.source.Location, entry, RemoteCopy)) //nolint:wrapcheck // Push only fails on lifecycle misuse
	}
}

// copyTask copies one file from fromRoot into the destination, bumping the
// class's counters when the copy lands.
func (s *Session) copyTask(fromRoot string, entry filesystem.FileInfo, class Class) workqueue.Task {
	return func() error {
		if class == CacheCopy {
			s.tracker.CachedCopyStarted(entry.RelativePath)
		} else {
			s.tracker.RemoteCopyStarted(entry.RelativePath)
		}

		src := s.fsys.Join(fromRoot, entry.RelativePath)
		dst := s.fsys.Join(s.dest.Location, entry.RelativePath)

		written, err := s.ops.CopyFile(src, dst)
		if err != nil {
			return fmt.Errorf("failed to stage %s: %w", entry.RelativePath, err)
		}

		if class == CacheCopy {
			s.tracker.CachedCopyDone(written)
		} else {
			s.tracker.RemoteCopyDone(written)
		}

		return nil
	}
}

// displayLoop publishes snapshots at the configured interval until done
// closes, then publishes one final snapshot so the surface shows the settled
// totals. Publish errors are dropped.
func (s *Session) displayLoop(done <-chan struct{}, rendered chan<- struct{}) {
	defer close(rendered)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			_ = s.sink.Publish(s.tracker.Snapshot())

			return
		case <-ticker.C():
			_ = s.sink.Publish(s.tracker.Snapshot())
		}
	}
}
