package restore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/handiism/takeout-restore/internal/audio"
	"github.com/handiism/takeout-restore/internal/config"
	ioutils "github.com/handiism/takeout-restore/internal/io"
	"github.com/handiism/takeout-restore/internal/model"
	"github.com/handiism/takeout-restore/internal/pool"
	"github.com/handiism/takeout-restore/internal/reconcile"
	"github.com/handiism/takeout-restore/internal/takeout"
	"golang.org/x/sync/errgroup"
)

// ErrNotInitialized is returned by Materialize before a successful Initialize.
var ErrNotInitialized = errors.New("restore not initialized")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a restore progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Summary describes one playlist of the run.
type Summary struct {
	Name      string
	Tracks    int
	Unmatched int
	Leftover  bool
	Stats     Stats
	Err       error
}

// Manager coordinates a restore run.
type Manager struct {
	settings  *config.Settings
	extractor audio.TitleExtractor

	playlists []*model.Playlist
	summaries []Summary
	poolSize  int
	ready     bool

	totalFiles  int32
	copiedFiles int32
	skipped     int32
	failed      int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new restore Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:   settings,
		extractor:  audio.NewMetadataReader(),
		onProgress: onProgress,
	}
}

// Initialize builds the pool from inputRoot and reconciles every playlist.
//
// Any fatal condition (invalid settings or layout, unreadable metadata, a
// track without title, an unreadable or malformed descriptor, a rejected
// duplicate position) is returned and leaves the Manager uninitialized.
// Unmatched descriptors are reported as warnings.
func (m *Manager) Initialize(ctx context.Context, inputRoot string) error {
	if err := m.settings.Validate(); err != nil {
		return err
	}
	policy, err := reconcile.ParseDuplicatePolicy(m.settings.DuplicatePositionPolicy)
	if err != nil {
		return err
	}

	layout, err := takeout.Discover(inputRoot, takeout.LayoutConfig{
		TracksDir:         m.settings.TracksDirName,
		PlaylistsDir:      m.settings.PlaylistsDirName,
		PlaylistTracksDir: m.settings.PlaylistTracksDirName,
	})
	if err != nil {
		return err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Reading tracks from %s", layout.TracksDir), Level: LevelInfo})
	trackPool, err := pool.Populate(ctx, layout.TracksDir, m.extractor, pool.Options{
		SkipUnsupported: m.settings.SkipUnsupported,
		OnSkip: func(path string) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping unsupported file: %s", filepath.Base(path)), Level: LevelVerbose})
		},
	})
	if err != nil {
		return err
	}
	poolSize := trackPool.Len()
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d tracks", poolSize), Level: LevelInfo})

	dirs, err := layout.Playlists()
	if err != nil {
		return err
	}

	reader := takeout.NewDescriptorReader(m.settings.TitleField, m.settings.PositionField, m.settings.DescriptorExtension)
	engine := reconcile.NewEngine(reader, policy, func(d reconcile.Diagnostic) {
		level := LevelWarning
		if d.Kind != reconcile.Unmatched {
			level = LevelVerbose
		}
		m.progress(ProgressEvent{Message: d.String(), Level: level})
	})

	var (
		playlists []*model.Playlist
		summaries []Summary
		taken     = make(map[string]bool)
	)
	for _, dir := range dirs {
		result, err := engine.ReconcileDir(ctx, dir, layout.DescriptorDir(dir), trackPool)
		if err != nil {
			return err
		}

		pl := result.Playlist
		if name := reconcile.UniqueName(pl.Name, taken); name != pl.Name {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist %s shares its folder name with another playlist, writing it as %s", pl.Name, name), Level: LevelWarning})
			pl.Name = name
		}
		taken[reconcile.FolderKey(pl.Name)] = true

		playlists = append(playlists, pl)
		summaries = append(summaries, Summary{Name: pl.Name, Tracks: pl.Len(), Unmatched: len(result.Unmatched)})

		m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist %s: %d tracks", pl.Name, pl.Len()), Level: LevelInfo})
		if len(result.Unmatched) > 0 {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Playlist %s: %d entries without a matching track", pl.Name, len(result.Unmatched)), Level: LevelWarning})
		}
	}

	if trackPool.Len() > 0 {
		name := reconcile.UniqueName(m.settings.MiscPlaylistName, taken)
		misc := reconcile.CollectLeftovers(trackPool, name)
		playlists = append(playlists, misc)
		summaries = append(summaries, Summary{Name: misc.Name, Tracks: misc.Len(), Leftover: true})
		m.progress(ProgressEvent{Message: fmt.Sprintf("%d tracks are not in any playlist, placing them into %s", misc.Len(), misc.Name), Level: LevelInfo})
	}

	var total int32
	for _, pl := range playlists {
		total += int32(pl.Len())
	}

	m.mu.Lock()
	m.playlists = playlists
	m.summaries = summaries
	m.poolSize = poolSize
	m.ready = true
	m.mu.Unlock()
	atomic.StoreInt32(&m.totalFiles, total)

	return nil
}

// Materialize writes every reconciled playlist below outputRoot.
//
// Up to MaxConcurrentPlaylists playlists are written at once. A playlist
// whose directory cannot be created is reported and skipped; copy failures
// are counted. Only cancellation or an unusable output root is returned
// as an error.
func (m *Manager) Materialize(ctx context.Context, outputRoot string) error {
	m.mu.RLock()
	ready, playlists := m.ready, m.playlists
	m.mu.RUnlock()
	if !ready {
		return ErrNotInitialized
	}

	atomic.StoreInt32(&m.copiedFiles, 0)
	atomic.StoreInt32(&m.skipped, 0)
	atomic.StoreInt32(&m.failed, 0)

	if err := ioutils.EnsureDir(outputRoot); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}

	var creator *audio.PlaylistCreator
	if m.settings.CreatePlaylist {
		creator = audio.NewPlaylistCreator(audio.ParsePlaylistFormat(m.settings.PlaylistFormat), m.settings.M3UExtended)
	}
	var coverArt string
	if m.settings.SaveCoverArtInFolder {
		coverArt = m.settings.CoverArtFileName
	}

	materializer := NewMaterializer(outputRoot, MaterializerOptions{
		FileNameFormat:   m.settings.FileNameFormat,
		Playlist:         creator,
		CoverArtFileName: coverArt,
		CoverArtMaxSize:  m.settings.CoverArtMaxSize,
		OnProgress:       m.progress,
		OnFile:           m.countFile,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentPlaylists)

	for i, pl := range playlists {
		i, pl := i, pl
		g.Go(func() error {
			return m.materializePlaylist(ctx, materializer, i, pl)
		})
	}

	return g.Wait()
}

func (m *Manager) materializePlaylist(ctx context.Context, materializer *Materializer, i int, pl *model.Playlist) error {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Copying into %s", materializer.Dir(pl)), Level: LevelInfo})

	stats, err := materializer.Materialize(ctx, pl)

	m.mu.Lock()
	m.summaries[i].Stats = stats
	m.summaries[i].Err = err
	m.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Unable to copy playlist %s: %v", pl.Name, err), Level: LevelError})
		return nil // Continue with other playlists
	}

	if stats.Failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Restored playlist: %s", pl.Name), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d tracks failed", pl.Name, stats.Failed), Level: LevelWarning})
	}
	return nil
}

// GetProgress returns materialization progress.
func (m *Manager) GetProgress() (done, total int32) {
	done = atomic.LoadInt32(&m.copiedFiles) + atomic.LoadInt32(&m.skipped) + atomic.LoadInt32(&m.failed)
	return done, atomic.LoadInt32(&m.totalFiles)
}

// GetFileCounts returns copied, skipped and failed file counts.
func (m *Manager) GetFileCounts() (copied, skipped, failed int32) {
	return atomic.LoadInt32(&m.copiedFiles), atomic.LoadInt32(&m.skipped), atomic.LoadInt32(&m.failed)
}

// PoolSize returns the number of tracks read during Initialize.
func (m *Manager) PoolSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.poolSize
}

// Playlists returns the reconciled playlists, leftover playlist last.
func (m *Manager) Playlists() []*model.Playlist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.Playlist(nil), m.playlists...)
}

// Summaries returns a snapshot of per-playlist results.
func (m *Manager) Summaries() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Summary(nil), m.summaries...)
}

// GetPlaylistNames returns display names of all reconciled playlists.
func (m *Manager) GetPlaylistNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.summaries))
	for i, s := range m.summaries {
		names[i] = fmt.Sprintf("%s (%d tracks)", s.Name, s.Tracks)
	}
	return names
}

func (m *Manager) countFile(outcome FileOutcome) {
	switch outcome {
	case FileCopied:
		atomic.AddInt32(&m.copiedFiles, 1)
	case FileSkipped:
		atomic.AddInt32(&m.skipped, 1)
	default:
		atomic.AddInt32(&m.failed, 1)
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
