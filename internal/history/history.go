// Package history keeps a local ledger of staging runs.
package history

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/joe/stage-builds/internal/stage"
)

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Run is one staging session as recorded in the ledger.
type Run struct {
	gorm.Model
	SourceTag   string `gorm:"not null;index"`
	SourceName  string `gorm:"not null"`
	Destination string `gorm:"not null"`
	CacheTag    string // empty when the run staged without a cache

	FilesFound        int64
	FilesReusedLocal  int64
	FilesCopiedCached int64
	FilesCopiedRemote int64
	BytesFound        int64
	BytesReusedLocal  int64
	BytesCopiedCached int64
	BytesCopiedRemote int64

	Duration time.Duration
	Outcome  string `gorm:"not null"`
	Error    string
}

// NewRun builds a ledger row from a finished session.
func NewRun(sourceTag, sourceName, destination, cacheTag string, final stage.Progress, failure error) Run {
	run := Run{
		SourceTag:         sourceTag,
		SourceName:        sourceName,
		Destination:       destination,
		CacheTag:          cacheTag,
		FilesFound:        final.FilesFound,
		FilesReusedLocal:  final.FilesReusedLocal,
		FilesCopiedCached: final.FilesCopiedCached,
		FilesCopiedRemote: final.FilesCopiedRemote,
		BytesFound:        final.BytesFound,
		BytesReusedLocal:  final.BytesReusedLocal,
		BytesCopiedCached: final.BytesCopiedCached,
		BytesCopiedRemote: final.BytesCopiedRemote,
		Duration:          final.Elapsed,
		Outcome:           OutcomeCompleted,
	}

	if failure != nil {
		run.Outcome = OutcomeFailed
		run.Error = failure.Error()
	}

	return run
}

// Ledger wraps the runs database. Writes never fail a staging session; the
// caller logs and drops errors.
type Ledger struct {
	db *gorm.DB
}

// Open opens the ledger at path, creating and migrating it as needed.
func Open(path string) (*Ledger, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Append records one finished run.
func (l *Ledger) Append(run Run) error {
	if err := l.db.Create(&run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(limit int) ([]Run, error) {
	var runs []Run

	err := l.db.Order("id desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}
