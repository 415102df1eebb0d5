// Package main is the entry point for the stage-builds application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/stage-builds/internal/config"
	"github.com/joe/stage-builds/internal/depot"
	"github.com/joe/stage-builds/internal/filter"
	"github.com/joe/stage-builds/internal/history"
	"github.com/joe/stage-builds/internal/logging"
	"github.com/joe/stage-builds/internal/stage"
	"github.com/joe/stage-builds/internal/tui"
	pkgerrors "github.com/joe/stage-builds/pkg/errors"
	"github.com/joe/stage-builds/pkg/fileops"
	"github.com/joe/stage-builds/pkg/filesystem"
	"github.com/joe/stage-builds/pkg/formatters"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck // A failed sync at exit has no recovery path

	display := resolveDisplay(cfg.Display)
	quiet := display == config.DisplayQuiet

	fsys := filesystem.NewRealFileSystem()
	names := filter.ParseIncludeExclude(cfg.Include, cfg.Exclude)
	repo := depot.NewRepository(fsys, cfg.DepotPath, cfg.StagePath, names.Match)

	source, cache, proceed, err := chooseVersions(repo, display == config.DisplayTUI, quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !proceed {
		return
	}

	dest, err := repo.CreateDestination(source)
	if err != nil {
		exitFailure(err, cfg.StagePath)
	}

	sessionCfg := stage.Config{
		FS:       fsys,
		Source:   source,
		Dest:     dest,
		Cache:    cache,
		Workers:  cfg.Workers,
		Interval: cfg.Interval,
		Logger:   log,
	}

	if cfg.Pattern != "" {
		sessionCfg.Filter = filter.NewGlobFilter(cfg.Pattern)
	}

	var (
		final  stage.Progress
		runErr error
	)

	switch display {
	case config.DisplayTUI:
		info := tui.SessionInfo{
			SourceName: source.Name,
			DestPath:   dest.Location,
			CacheName:  cacheName(cache),
			Workers:    cfg.Workers,
		}
		final, runErr = runWithDisplay(sessionCfg, info)
	case config.DisplayPlain:
		sessionCfg.Sink = tui.NewTableSink(os.Stdout)
		final, runErr = stage.NewSession(sessionCfg).Run()
	default:
		sessionCfg.Sink = stage.NopSink{}
		final, runErr = stage.NewSession(sessionCfg).Run()
	}

	recordRun(cfg, source, dest, cache, final, runErr, log)

	if runErr != nil {
		exitFailure(runErr, dest.Location)
	}

	if !quiet {
		fmt.Println(summaryLine(source, final))
	}
}

// resolveDisplay collapses auto to a concrete mode based on whether stdout
// is a terminal.
func resolveDisplay(mode config.DisplayMode) config.DisplayMode {
	if mode != config.DisplayAuto {
		return mode
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return config.DisplayTUI
	}

	return config.DisplayPlain
}

// chooseVersions selects the source and cache versions, interactively or by
// taking the newest of each. proceed is false when there is nothing to do:
// an empty depot or a cancelled picker. Neither is an error.
func chooseVersions(repo *depot.Repository, interactive, quiet bool) (depot.Version, *depot.Version, bool, error) {
	if interactive {
		return chooseInteractively(repo)
	}

	source, err := repo.BestSource()
	if errors.Is(err, depot.ErrNoVersions) {
		if !quiet {
			fmt.Println("No versions to stage; the depot has nothing matching the filters.")
		}

		return depot.Version{}, nil, false, nil
	}

	if err != nil {
		return depot.Version{}, nil, false, err
	}

	cache, found, err := repo.BestCache(source)
	if err != nil {
		return depot.Version{}, nil, false, err
	}

	if !found {
		return source, nil, true, nil
	}

	return source, &cache, true, nil
}

func chooseInteractively(repo *depot.Repository) (depot.Version, *depot.Version, bool, error) {
	sources, err := repo.Sources()
	if err != nil {
		return depot.Version{}, nil, false, err
	}

	if len(sources) == 0 {
		fmt.Println("No versions to stage; the depot has nothing matching the filters.")

		return depot.Version{}, nil, false, nil
	}

	destinations, err := repo.Destinations()
	if err != nil {
		return depot.Version{}, nil, false, err
	}

	selection, chosen, err := tui.ChooseSelection(sources, destinations)
	if err != nil {
		return depot.Version{}, nil, false, err
	}

	if !chosen {
		fmt.Println("Staging cancelled.")

		return depot.Version{}, nil, false, nil
	}

	return selection.Source, selection.Cache, true, nil
}

// runWithDisplay runs the session behind the live display. The session always
// runs to completion; quitting the display mid-run only detaches it, and a
// display failure downgrades to a warning while the copies continue.
func runWithDisplay(cfg stage.Config, info tui.SessionInfo) (stage.Progress, error) {
	bridge := tui.NewBridge()
	defer bridge.Close()

	cfg.Sink = bridge

	var (
		final  stage.Progress
		runErr error
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		final, runErr = stage.NewSession(cfg).Run()
		bridge.Finish(final, runErr)
	}()

	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	finished, err := tea.NewProgram(tui.NewModel(info, bridge), opts...).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: display failed, staging continues: %v\n", err)
	}

	if model, ok := finished.(tui.Model); ok && model.Detached() {
		fmt.Println("Display detached; staging continues to completion.")
	}

	bridge.Close()
	<-done

	return final, runErr
}

// recordRun appends the run to the history ledger. Ledger problems are
// logged and dropped; they never change the session's outcome.
func recordRun(cfg *config.Config, source, dest depot.Version, cache *depot.Version, final stage.Progress, failure error, log *zap.Logger) {
	if cfg.NoHistory || cfg.HistoryPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), fileops.DefaultDirPermissions); err != nil {
		log.Warn("failed to prepare the history directory", zap.Error(err))

		return
	}

	ledger, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn("failed to open the history ledger", zap.Error(err))

		return
	}

	err = ledger.Append(history.NewRun(source.Tag, source.Name, dest.Location, cacheTag(cache), final, failure))
	if err != nil {
		log.Warn("failed to record the run", zap.Error(err))
	}
}

func exitFailure(err error, affectedPath string) {
	enriched := pkgerrors.NewEnricher().Enrich(err, affectedPath)

	fmt.Fprintf(os.Stderr, "Error: %v\n", enriched)

	if suggestions := pkgerrors.FormatSuggestions(enriched); suggestions != "" {
		fmt.Fprintln(os.Stderr, suggestions)
	}

	os.Exit(1)
}

func summaryLine(source depot.Version, final stage.Progress) string {
	copied := final.FilesCopiedRemote + final.FilesCopiedCached
	if copied == 0 {
		return fmt.Sprintf("%s already staged: %s files reused in place.",
			source.Name, formatters.FormatCount(final.FilesReusedLocal))
	}

	return fmt.Sprintf("Staged %s: copied %s files (%s) in %s, reused %s in place.",
		source.Name,
		formatters.FormatCount(copied),
		formatters.FormatBytes(final.BytesCopiedRemote+final.BytesCopiedCached),
		formatters.FormatDuration(final.Elapsed),
		formatters.FormatCount(final.FilesReusedLocal))
}

func cacheName(cache *depot.Version) string {
	if cache == nil {
		return ""
	}

	return cache.Name
}

func cacheTag(cache *depot.Version) string {
	if cache == nil {
		return ""
	}

	return cache.Tag
}
