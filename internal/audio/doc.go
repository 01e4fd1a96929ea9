// Package audio reads audio file metadata and writes playlist index files.
//
// # Title Extraction
//
// MetadataReader reads the embedded title the track pool is keyed by:
//
//	reader := audio.NewMetadataReader()
//	title, err := reader.ExtractTitle("/takeout/Tracks/song.mp3")
//
// Supported containers:
//   - MP3 (ID3v2 TIT2 frame)
//   - FLAC (Vorbis comment TITLE field)
//
// Other extensions return ErrUnsupportedFormat.
//
// # Cover Art
//
// ReadCoverArt returns the front cover (or first) picture embedded in an
// MP3 file, used for folder artwork.
//
// # Playlist Generation
//
// Generate an index file for a restored playlist folder:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist("Road Trip", entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
