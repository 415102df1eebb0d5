package stage

import (
	"sync"
	"time"
)

// Progress blending weights. Byte progress is weighted heavily while it
// trails the file count, because a few large files otherwise make the
// file-count percentage look misleadingly fast.
const (
	percentScale = 100

	byteAheadByteWeight = 0.2
	byteAheadFileWeight = 0.8

	fileAheadByteWeight = 0.95
	fileAheadFileWeight = 0.05
)

// Tracker accumulates a session's counters. Its mutex guards exactly the
// fields below; they are the only state shared across the session's
// activities. All counters are monotonic for the lifetime of the session.
type Tracker struct {
	clock TimeProvider

	mu    sync.Mutex
	start time.Time

	filesFound        int64
	bytesFound        int64
	filesReusedLocal  int64
	bytesReusedLocal  int64
	filesCopiedCached int64
	bytesCopiedCached int64
	filesCopiedRemote int64
	bytesCopiedRemote int64

	// Last-writer-wins display hints, immaterial to correctness.
	currentCachedCopy string
	currentRemoteCopy string

	enumerationDone bool
}

// NewTracker creates a Tracker whose elapsed time starts now.
func NewTracker(clock TimeProvider) *Tracker {
	return &Tracker{
		clock: clock,
		start: clock.Now(),
	}
}

// FileFound records one enumerated file.
func (t *Tracker) FileFound(size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.filesFound++
	t.bytesFound += size
}

// FileReused records a file already correct at the destination.
func (t *Tracker) FileReused(size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.filesReusedLocal++
	t.bytesReusedLocal += size
}

// CachedCopyStarted records the file a cache-copy worker is handling.
func (t *Tracker) CachedCopyStarted(relPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentCachedCopy = relPath
}

// CachedCopyDone records one completed copy from the cache version.
func (t *Tracker) CachedCopyDone(size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.filesCopiedCached++
	t.bytesCopiedCached += size
}

// RemoteCopyStarted records the file a remote-copy worker is handling.
func (t *Tracker) RemoteCopyStarted(relPath string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentRemoteCopy = relPath
}

// RemoteCopyDone records one completed copy from the depot.
func (t *Tracker) RemoteCopyDone(size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.filesCopiedRemote++
	t.bytesCopiedRemote += size
}

// EnumerationDone marks the found totals final. Estimates published after
// this point are no longer provisional.
func (t *Tracker) EnumerationDone() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enumerationDone = true
}

// Snapshot returns a consistent copy of the counters with the derived
// percentages and time estimates filled in.
func (t *Tracker) Snapshot() Progress {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	progress := Progress{
		FilesFound:        t.filesFound,
		BytesFound:        t.bytesFound,
		FilesReusedLocal:  t.filesReusedLocal,
		BytesReusedLocal:  t.bytesReusedLocal,
		FilesCopiedCached: t.filesCopiedCached,
		BytesCopiedCached: t.bytesCopiedCached,
		FilesCopiedRemote: t.filesCopiedRemote,
		BytesCopiedRemote: t.bytesCopiedRemote,
		CurrentCachedCopy: t.currentCachedCopy,
		CurrentRemoteCopy: t.currentRemoteCopy,
		EnumerationDone:   t.enumerationDone,
		Start:             t.start,
		Elapsed:           now.Sub(t.start),
	}

	progress.derive()

	return progress
}

// Progress is one point-in-time view of a session, as published to the
// progress surface and returned when the session finishes.
type Progress struct {
	FilesFound        int64
	BytesFound        int64
	FilesReusedLocal  int64
	BytesReusedLocal  int64
	FilesCopiedCached int64
	BytesCopiedCached int64
	FilesCopiedRemote int64
	BytesCopiedRemote int64

	CurrentCachedCopy string
	CurrentRemoteCopy string

	// EnumerationDone reports whether the found totals are final. While
	// false, the percentages and estimates below are provisional.
	EnumerationDone bool

	Start   time.Time
	Elapsed time.Duration

	BytePercent    float64
	FilePercent    float64
	BlendedPercent float64
	TimeLeft       time.Duration
	ETA            time.Time
}

// FilesCompleted returns the number of files fully accounted for.
func (p Progress) FilesCompleted() int64 {
	return p.FilesReusedLocal + p.FilesCopiedCached + p.FilesCopiedRemote
}

// BytesCompleted returns the bytes fully accounted for.
func (p Progress) BytesCompleted() int64 {
	return p.BytesReusedLocal + p.BytesCopiedCached + p.BytesCopiedRemote
}

// FilesRemaining returns the files found but not yet handled.
func (p Progress) FilesRemaining() int64 {
	return p.FilesFound - p.FilesCompleted()
}

// BytesRemaining returns the bytes found but not yet handled.
func (p Progress) BytesRemaining() int64 {
	return p.BytesFound - p.BytesCompleted()
}

// derive fills in the computed fields. The +1 terms keep every ratio
// defined before the first file is found, and cancel exactly at
// completion so a finished session reports 100 percent.
func (p *Progress) derive() {
	copiedBytes := p.BytesCopiedRemote + p.BytesCopiedCached
	pendingBytes := p.BytesFound - p.BytesReusedLocal
	p.BytePercent = float64((copiedBytes+1)*percentScale) / float64(pendingBytes+1)

	copiedFiles := p.FilesCopiedRemote + p.FilesCopiedCached
	pendingFiles := p.FilesFound - p.FilesReusedLocal
	p.FilePercent = float64((copiedFiles+1)*percentScale) / float64(pendingFiles+1)

	if p.BytePercent > p.FilePercent {
		p.BlendedPercent = byteAheadByteWeight*p.BytePercent + byteAheadFileWeight*p.FilePercent
	} else {
		p.BlendedPercent = fileAheadByteWeight*p.BytePercent + fileAheadFileWeight*p.FilePercent
	}

	expectedTotal := time.Duration(float64(p.Elapsed) * percentScale / p.BlendedPercent)
	p.ETA = p.Start.Add(expectedTotal)

	p.TimeLeft = expectedTotal - p.Elapsed
	if p.TimeLeft < 0 {
		p.TimeLeft = 0
	}
}
