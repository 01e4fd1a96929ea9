package model

import (
	"sort"

	ioutils "github.com/handiism/takeout-restore/internal/io"
)

// Playlist is a named, position-keyed collection of tracks.
//
// Positions are unique: each key holds exactly one Track. Iteration order of
// the underlying map is irrelevant; use Positions or Tracks for ordered
// access.
type Playlist struct {
	// Name is the playlist name, taken from the descriptor directory.
	Name string

	// Slots maps zero-based positions to tracks.
	Slots map[int]*Track
}

// NewPlaylist creates an empty playlist.
func NewPlaylist(name string) *Playlist {
	return &Playlist{
		Name:  name,
		Slots: make(map[int]*Track),
	}
}

// Put stores t at position and returns the track previously held there,
// or nil if the slot was free.
func (p *Playlist) Put(position int, t *Track) *Track {
	prev := p.Slots[position]
	p.Slots[position] = t
	return prev
}

// Get returns the track at position, or nil.
func (p *Playlist) Get(position int) *Track {
	return p.Slots[position]
}

// Has reports whether position is occupied.
func (p *Playlist) Has(position int) bool {
	_, ok := p.Slots[position]
	return ok
}

// Len returns the number of occupied slots.
func (p *Playlist) Len() int {
	return len(p.Slots)
}

// MaxPosition returns the highest occupied position, or -1 when empty.
func (p *Playlist) MaxPosition() int {
	max := -1
	for pos := range p.Slots {
		if pos > max {
			max = pos
		}
	}
	return max
}

// Positions returns the occupied positions in ascending order.
func (p *Playlist) Positions() []int {
	positions := make([]int, 0, len(p.Slots))
	for pos := range p.Slots {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// Tracks returns the tracks in ascending position order.
func (p *Playlist) Tracks() []*Track {
	positions := p.Positions()
	tracks := make([]*Track, len(positions))
	for i, pos := range positions {
		tracks[i] = p.Slots[pos]
	}
	return tracks
}

// FolderName returns the directory name a playlist called name is written to.
func FolderName(name string) string {
	folder := ioutils.SanitizeFileName(name)
	if folder == "" {
		return "_"
	}
	return folder
}
