// Package model defines the core data structures used throughout
// takeout-restore.
//
// # Track
//
// Track is one audio file from the export's flat track directory,
// identified by the title embedded in its metadata:
//
//	track := model.NewTrack("Rock & Roll", "/takeout/Tracks/Rock & Roll(1).mp3")
//
// # Descriptor
//
// Descriptor is a single playlist membership record (title and playback
// position) read from the export's per-track CSV files.
//
// # Playlist
//
// Playlist maps zero-based positions to tracks:
//
//	pl := model.NewPlaylist("Road Trip")
//	pl.Put(0, track)
//	for _, pos := range pl.Positions() {
//	    fmt.Println(pos, pl.Get(pos).Title)
//	}
//
// # File Naming
//
// FileName computes the output name of a slot using the placeholders
// {position} and {title}; the source extension is always appended.
package model
