package takeout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidLayout is returned when the input root is missing one of the
// required directories.
var ErrInvalidLayout = errors.New("not a takeout export")

// LayoutConfig names the directories of an export.
type LayoutConfig struct {
	// TracksDir holds the flat pool of audio files.
	TracksDir string

	// PlaylistsDir holds one directory per playlist.
	PlaylistsDir string

	// PlaylistTracksDir is the subdirectory of each playlist holding the
	// descriptor files. Empty means the playlist directory itself.
	PlaylistTracksDir string
}

// DefaultLayoutConfig returns the Google Takeout directory names.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		TracksDir:         "Tracks",
		PlaylistsDir:      "Playlists",
		PlaylistTracksDir: "Tracks",
	}
}

// Layout is a validated export root.
type Layout struct {
	Root         string
	TracksDir    string
	PlaylistsDir string

	playlistTracksDir string
}

// Discover checks that root contains both configured directories.
//
// An unreadable root is returned as-is (wrapped); a root lacking either
// directory returns an error matching ErrInvalidLayout that names what is
// missing.
func Discover(root string, cfg LayoutConfig) (*Layout, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("read input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidLayout, root)
	}

	layout := &Layout{
		Root:              root,
		TracksDir:         filepath.Join(root, cfg.TracksDir),
		PlaylistsDir:      filepath.Join(root, cfg.PlaylistsDir),
		playlistTracksDir: cfg.PlaylistTracksDir,
	}

	var missing []string
	for _, dir := range []string{cfg.TracksDir, cfg.PlaylistsDir} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read %s: %w", dir, err)
			}
			missing = append(missing, dir)
			continue
		}
		if !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s has no %v directory", ErrInvalidLayout, root, missing)
	}

	return layout, nil
}

// Playlists returns the playlist directories in lexical order.
// Regular files inside the playlists directory are ignored.
func (l *Layout) Playlists() ([]string, error) {
	entries, err := os.ReadDir(l.PlaylistsDir)
	if err != nil {
		return nil, fmt.Errorf("read playlists directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(l.PlaylistsDir, entry.Name()))
		}
	}
	return dirs, nil
}

// DescriptorDir returns the directory holding the descriptor files of the
// given playlist directory.
func (l *Layout) DescriptorDir(playlistDir string) string {
	if l.playlistTracksDir == "" {
		return playlistDir
	}
	return filepath.Join(playlistDir, l.playlistTracksDir)
}
