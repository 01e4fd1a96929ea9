package model

import (
	"path/filepath"
	"strconv"
	"strings"

	ioutils "github.com/handiism/takeout-restore/internal/io"
)

// DefaultFileNameFormat reproduces the Takeout restore naming scheme:
// "<position>_<title><ext>".
const DefaultFileNameFormat = "{position}_{title}"

// MaxTrackPosition is the highest position a descriptor may name.
const MaxTrackPosition = 999_999

// Track represents a single audio file in the track pool.
//
// A Track is created once while the pool is populated and never modified
// afterwards. It moves from the pool into exactly one Playlist.
type Track struct {
	// Title is the title read from the file's embedded metadata.
	Title string

	// Path is the location of the source audio file.
	Path string
}

// NewTrack creates a new Track.
func NewTrack(title, path string) *Track {
	return &Track{
		Title: title,
		Path:  path,
	}
}

// Ext returns the lower-cased extension of the source file, including the dot.
func (t *Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}

// Descriptor is one playlist membership record from the export.
//
// Descriptors are ephemeral: they are produced by the descriptor reader and
// consumed immediately by the reconciliation engine.
type Descriptor struct {
	// Title is the decoded (plain text) track title.
	Title string

	// Position is the zero-based playback position within the playlist.
	Position int

	// Source is the descriptor file the record was read from.
	Source string
}

// FileName computes the output filename for a track placed at position.
//
// The format supports the placeholders {position} and {title}. The title is
// sanitized before substitution so it can never introduce path separators.
// The source file extension is appended to the result.
//
// Example:
//
//	FileName(DefaultFileNameFormat, 3, NewTrack("AC/DC Live", "/t/x.MP3"))
//	// Returns "3_AC_DC Live.mp3"
func FileName(format string, position int, t *Track) string {
	if format == "" {
		format = DefaultFileNameFormat
	}
	name := format
	name = strings.ReplaceAll(name, "{position}", strconv.Itoa(position))
	name = strings.ReplaceAll(name, "{title}", ioutils.SanitizeFileName(t.Title))
	return name + t.Ext()
}
