package restore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/handiism/takeout-restore/internal/audio"
	ioutils "github.com/handiism/takeout-restore/internal/io"
	"github.com/handiism/takeout-restore/internal/model"
)

// Stats counts the outcome of materializing one playlist.
type Stats struct {
	Copied  int
	Skipped int
	Failed  int
}

// Total returns the number of slots handled.
func (s Stats) Total() int {
	return s.Copied + s.Skipped + s.Failed
}

// FileOutcome is the result for one slot.
type FileOutcome int

const (
	FileCopied FileOutcome = iota
	FileSkipped
	FileFailed
)

// MaterializerOptions configures a Materializer.
type MaterializerOptions struct {
	// FileNameFormat is passed to model.FileName.
	FileNameFormat string

	// Playlist writes an index file into each folder when non-nil.
	Playlist *audio.PlaylistCreator

	// CoverArtFileName enables folder artwork when non-empty.
	CoverArtFileName string
	CoverArtMaxSize  int

	OnProgress func(ProgressEvent)
	OnFile     func(FileOutcome)
}

// Materializer writes reconciled playlists to disk.
type Materializer struct {
	outputRoot string
	opts       MaterializerOptions
	images     *ioutils.ImageService
}

// NewMaterializer creates a Materializer writing below outputRoot.
func NewMaterializer(outputRoot string, opts MaterializerOptions) *Materializer {
	return &Materializer{
		outputRoot: outputRoot,
		opts:       opts,
		images:     ioutils.NewImageService(),
	}
}

// Dir returns the output directory for a playlist.
func (m *Materializer) Dir(pl *model.Playlist) string {
	return filepath.Join(m.outputRoot, model.FolderName(pl.Name))
}

// Materialize writes pl into its output directory.
//
// The directory is created or reused. Slots are written in ascending
// position order; an existing destination file is left alone. A failed
// copy is reported and counted, and the remaining slots are still written.
// Files already copied are kept when later ones fail.
//
// An error is returned only when the directory cannot be created or ctx
// is cancelled.
func (m *Materializer) Materialize(ctx context.Context, pl *model.Playlist) (Stats, error) {
	var stats Stats

	dir := m.Dir(pl)
	if ioutils.Exists(dir) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s already exists, copying into it", dir), Level: LevelVerbose})
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return stats, fmt.Errorf("create %s: %w", dir, err)
	}

	var entries []audio.PlaylistEntry
	for _, pos := range pl.Positions() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		track := pl.Get(pos)
		name := model.FileName(m.opts.FileNameFormat, pos, track)
		dst := filepath.Join(dir, name)

		copied, err := ioutils.CopyFileIfAbsent(ctx, track.Path, dst)
		switch {
		case err != nil:
			stats.Failed++
			m.file(FileFailed)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error copying %s: %v", track.Path, err), Level: LevelWarning})
			continue
		case copied:
			stats.Copied++
			m.file(FileCopied)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Copied: %s", name), Level: LevelVerbose})
		default:
			stats.Skipped++
			m.file(FileSkipped)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", name), Level: LevelVerbose})
		}

		entries = append(entries, audio.PlaylistEntry{FileName: name, Title: track.Title})
	}

	if m.opts.Playlist != nil {
		m.writeIndex(ctx, dir, pl.Name, entries)
	}
	if m.opts.CoverArtFileName != "" {
		m.writeCoverArt(ctx, dir, pl)
	}

	return stats, nil
}

// writeIndex replaces the folder's playlist file.
func (m *Materializer) writeIndex(ctx context.Context, dir, name string, entries []audio.PlaylistEntry) {
	fileName := ioutils.SanitizeFileName(name)
	if fileName == "" {
		fileName = "playlist"
	}
	path := filepath.Join(dir, fileName+m.opts.Playlist.Format().Extension())

	content := m.opts.Playlist.CreatePlaylist(name, entries)
	if err := ioutils.WriteFileAtomic(ctx, path, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist file: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist file %s", filepath.Base(path)), Level: LevelVerbose})
}

// writeCoverArt saves the first embedded picture found in pl as folder
// artwork, unless the folder already has one.
func (m *Materializer) writeCoverArt(ctx context.Context, dir string, pl *model.Playlist) {
	path := filepath.Join(dir, m.opts.CoverArtFileName)
	if ioutils.Exists(path) {
		return
	}

	for _, track := range pl.Tracks() {
		artwork, err := audio.ReadCoverArt(track.Path)
		if err != nil {
			continue
		}

		if m.opts.CoverArtMaxSize > 0 {
			artwork, err = m.images.ResizeImage(ctx, artwork, m.opts.CoverArtMaxSize, m.opts.CoverArtMaxSize)
		} else {
			artwork, err = m.images.ConvertToJPEG(ctx, artwork)
		}
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error converting artwork from %s: %v", filepath.Base(track.Path), err), Level: LevelVerbose})
			continue
		}

		if _, err := ioutils.WriteFileIfAbsent(ctx, path, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving artwork: %v", err), Level: LevelWarning})
		}
		return
	}
}

func (m *Materializer) file(outcome FileOutcome) {
	if m.opts.OnFile != nil {
		m.opts.OnFile(outcome)
	}
}

func (m *Materializer) progress(event ProgressEvent) {
	if m.opts.OnProgress != nil {
		m.opts.OnProgress(event)
	}
}
