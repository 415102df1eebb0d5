//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, g, etc.)
package stage_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/stage-builds/internal/depot"
	"github.com/joe/stage-builds/internal/filter"
	"github.com/joe/stage-builds/internal/stage"
	"github.com/joe/stage-builds/pkg/filesystem"
)

// captureSink records every published snapshot.
type captureSink struct {
	mu    sync.Mutex
	snaps []stage.Progress
}

func (c *captureSink) Publish(progress stage.Progress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snaps = append(c.snaps, progress)

	return nil
}

func (c *captureSink) all() []stage.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]stage.Progress(nil), c.snaps...)
}

// failingFS wraps a FileSystem and fails Create for one path.
type failingFS struct {
	filesystem.FileSystem

	blocked string
}

func (f *failingFS) Create(path string) (filesystem.File, error) {
	if path == f.blocked {
		return nil, errors.New("create blocked")
	}

	return f.FileSystem.Create(path) //nolint:wrapcheck // Pass-through test double
}

func version(name, location string, created time.Time) depot.Version {
	return depot.Version{Tag: name, Name: name, Location: location, Created: created}
}

func TestSessionClassifiesCacheAndRemote(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	otherTime := modTime.Add(time.Hour)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v3/a.txt", bytes.Repeat([]byte("a"), 100), modTime)
	mockFS.AddFile("depot/v3/b.txt", bytes.Repeat([]byte("b"), 50), modTime)
	mockFS.AddDir("stage/v3", modTime)
	mockFS.AddFile("stage/v2/a.txt", bytes.Repeat([]byte("a"), 100), modTime)
	mockFS.AddFile("stage/v2/b.txt", bytes.Repeat([]byte("x"), 50), otherTime)

	cache := version("v2", "stage/v2", modTime.Add(-time.Hour))
	session := stage.NewSession(stage.Config{
		FS:     mockFS,
		Source: version("v3", "depot/v3", modTime),
		Dest:   version("v3", "stage/v3", modTime),
		Cache:  &cache,
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(final.FilesFound).To(Equal(int64(2)))
	g.Expect(final.FilesCopiedCached).To(Equal(int64(1)))
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(1)))
	g.Expect(final.FilesReusedLocal).To(Equal(int64(0)))
	g.Expect(final.BytesFound).To(Equal(int64(150)))
	g.Expect(final.BytesCopiedCached).To(Equal(int64(100)))
	g.Expect(final.BytesCopiedRemote).To(Equal(int64(50)))

	// a.txt came from the cache version, b.txt from the depot, and both
	// land with the source's modification time.
	contentA, timeA, err := mockFS.GetFile("stage/v3/a.txt")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(contentA).To(Equal(bytes.Repeat([]byte("a"), 100)))
	g.Expect(timeA).To(Equal(modTime))

	contentB, timeB, err := mockFS.GetFile("stage/v3/b.txt")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(contentB).To(Equal(bytes.Repeat([]byte("b"), 50)))
	g.Expect(timeB).To(Equal(modTime))
}

func TestSessionRerunReusesEverything(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v3/a.txt", bytes.Repeat([]byte("a"), 100), modTime)
	mockFS.AddFile("depot/v3/sub/b.txt", bytes.Repeat([]byte("b"), 50), modTime)
	mockFS.AddDir("stage/v3", modTime)

	cfg := stage.Config{
		FS:     mockFS,
		Source: version("v3", "depot/v3", modTime),
		Dest:   version("v3", "stage/v3", modTime),
	}

	first, err := stage.NewSession(cfg).Run()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(first.FilesCopiedRemote).To(Equal(int64(2)))
	g.Expect(first.FilesReusedLocal).To(Equal(int64(0)))

	second, err := stage.NewSession(cfg).Run()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second.FilesFound).To(Equal(int64(2)))
	g.Expect(second.FilesReusedLocal).To(Equal(int64(2)))
	g.Expect(second.FilesCopiedRemote).To(Equal(int64(0)))
	g.Expect(second.FilesCopiedCached).To(Equal(int64(0)))
}

func TestSessionCounterConservation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	otherTime := modTime.Add(time.Minute)

	mockFS := filesystem.NewMockFileSystem()
	// One reusable at the destination, one cache hit, two remote.
	mockFS.AddFile("depot/v3/keep.bin", bytes.Repeat([]byte("k"), 10), modTime)
	mockFS.AddFile("depot/v3/cached.bin", bytes.Repeat([]byte("c"), 20), modTime)
	mockFS.AddFile("depot/v3/new.bin", bytes.Repeat([]byte("n"), 30), modTime)
	mockFS.AddFile("depot/v3/sub/deep.bin", bytes.Repeat([]byte("d"), 40), modTime)
	mockFS.AddFile("stage/v3/keep.bin", bytes.Repeat([]byte("k"), 10), modTime)
	mockFS.AddFile("stage/v2/cached.bin", bytes.Repeat([]byte("c"), 20), modTime)
	mockFS.AddFile("stage/v2/new.bin", bytes.Repeat([]byte("z"), 30), otherTime)

	cache := version("v2", "stage/v2", modTime.Add(-time.Hour))
	session := stage.NewSession(stage.Config{
		FS:      mockFS,
		Source:  version("v3", "depot/v3", modTime),
		Dest:    version("v3", "stage/v3", modTime),
		Cache:   &cache,
		Workers: 2,
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(final.FilesFound).To(Equal(int64(4)))
	g.Expect(final.FilesReusedLocal).To(Equal(int64(1)))
	g.Expect(final.FilesCopiedCached).To(Equal(int64(1)))
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(2)))

	g.Expect(final.FilesFound).To(Equal(
		final.FilesCopiedRemote + final.FilesCopiedCached + final.FilesReusedLocal))
	g.Expect(final.BytesFound).To(Equal(
		final.BytesCopiedRemote + final.BytesCopiedCached + final.BytesReusedLocal))
	g.Expect(final.EnumerationDone).To(BeTrue())
	g.Expect(final.BlendedPercent).To(BeNumerically("==", 100))
}

func TestSessionWithoutCacheCopiesEverythingRemote(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/a.txt", []byte("aaa"), modTime)
	mockFS.AddFile("depot/v1/b.txt", []byte("bb"), modTime)
	mockFS.AddDir("stage/v1", modTime)

	session := stage.NewSession(stage.Config{
		FS:     mockFS,
		Source: version("v1", "depot/v1", modTime),
		Dest:   version("v1", "stage/v1", modTime),
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(2)))
	g.Expect(final.FilesCopiedCached).To(Equal(int64(0)))
	g.Expect(mockFS.Exists("stage/v1/a.txt")).To(BeTrue())
	g.Expect(mockFS.Exists("stage/v1/b.txt")).To(BeTrue())
}

func TestSessionSkipsHiddenDirectories(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/a.txt", []byte("aaa"), modTime)
	mockFS.AddFile("depot/v1/.git/objects/blob", []byte("zzz"), modTime)
	mockFS.AddFile("depot/v1/sub/.cache/tmp", []byte("yyy"), modTime)
	mockFS.AddDir("stage/v1", modTime)

	session := stage.NewSession(stage.Config{
		FS:     mockFS,
		Source: version("v1", "depot/v1", modTime),
		Dest:   version("v1", "stage/v1", modTime),
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(final.FilesFound).To(Equal(int64(1)))
	g.Expect(mockFS.Exists("stage/v1/a.txt")).To(BeTrue())
	g.Expect(mockFS.Exists("stage/v1/.git/objects/blob")).To(BeFalse())
}

func TestSessionFailedCopyFailsRunButOthersFinish(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/good.txt", []byte("good"), modTime)
	mockFS.AddFile("depot/v1/bad.txt", []byte("bad"), modTime)
	mockFS.AddDir("stage/v1", modTime)

	blocked := &failingFS{FileSystem: mockFS, blocked: mockFS.Join("stage", "v1", "bad.txt")}

	session := stage.NewSession(stage.Config{
		FS:     blocked,
		Source: version("v1", "depot/v1", modTime),
		Dest:   version("v1", "stage/v1", modTime),
	})

	final, err := session.Run()
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("bad.txt"))

	// The failure does not cancel the other copy.
	g.Expect(mockFS.Exists("stage/v1/good.txt")).To(BeTrue())
	g.Expect(final.FilesFound).To(Equal(int64(2)))
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(1)))
}

func TestSessionPublishesFinalSnapshot(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/a.txt", []byte("aaa"), modTime)
	mockFS.AddDir("stage/v1", modTime)

	sink := &captureSink{}
	session := stage.NewSession(stage.Config{
		FS:       mockFS,
		Source:   version("v1", "depot/v1", modTime),
		Dest:     version("v1", "stage/v1", modTime),
		Sink:     sink,
		Interval: 5 * time.Millisecond,
	})

	_, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())

	snaps := sink.all()
	g.Expect(snaps).NotTo(BeEmpty())

	last := snaps[len(snaps)-1]
	g.Expect(last.EnumerationDone).To(BeTrue())
	g.Expect(last.FilesFound).To(Equal(int64(1)))
	g.Expect(last.FilesCopiedRemote).To(Equal(int64(1)))
}

func TestSessionSinkErrorsAreSwallowed(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/a.txt", []byte("aaa"), modTime)
	mockFS.AddDir("stage/v1", modTime)

	angry := stage.SinkFunc(func(stage.Progress) error {
		return errors.New("render exploded")
	})

	session := stage.NewSession(stage.Config{
		FS:     mockFS,
		Source: version("v1", "depot/v1", modTime),
		Dest:   version("v1", "stage/v1", modTime),
		Sink:   angry,
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(1)))
}

func TestSessionFilterHidesFilesFromTheCounters(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/bin/app.exe", bytes.Repeat([]byte("e"), 30), modTime)
	mockFS.AddFile("depot/v1/bin/app.pdb", bytes.Repeat([]byte("p"), 90), modTime)
	mockFS.AddFile("depot/v1/readme.txt", []byte("hi"), modTime)
	mockFS.AddDir("stage/v1", modTime)

	session := stage.NewSession(stage.Config{
		FS:     mockFS,
		Source: version("v1", "depot/v1", modTime),
		Dest:   version("v1", "stage/v1", modTime),
		Filter: filter.NewGlobFilter("**/*.exe"),
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())

	// Files the pattern rejects are invisible: not found, not copied.
	g.Expect(final.FilesFound).To(Equal(int64(1)))
	g.Expect(final.BytesFound).To(Equal(int64(30)))
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(1)))
	g.Expect(mockFS.Exists("stage/v1/bin/app.exe")).To(BeTrue())
	g.Expect(mockFS.Exists("stage/v1/bin/app.pdb")).To(BeFalse())
	g.Expect(mockFS.Exists("stage/v1/readme.txt")).To(BeFalse())
}

func TestSessionStagesNestedDirectories(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockFS := filesystem.NewMockFileSystem()
	mockFS.AddFile("depot/v1/sub/deep/c.bin", bytes.Repeat([]byte("c"), 7), modTime)
	mockFS.AddDir("stage/v1", modTime)

	session := stage.NewSession(stage.Config{
		FS:     mockFS,
		Source: version("v1", "depot/v1", modTime),
		Dest:   version("v1", "stage/v1", modTime),
	})

	final, err := session.Run()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(final.FilesCopiedRemote).To(Equal(int64(1)))

	content, copiedTime, err := mockFS.GetFile(mockFS.Join("stage", "v1", "sub", "deep", "c.bin"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(content).To(HaveLen(7))
	g.Expect(copiedTime).To(Equal(modTime))
}
