// Package config provides configuration management for takeout-restore.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values matching the Google Takeout layout
//   - Validation of settings once at startup
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Tracks in <input>/Tracks, playlists in <input>/Playlists/<name>/Tracks
//	// Leftover tracks go to "Misc"
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Configuration Options
//
// Settings includes options for:
//   - Input layout (directory names, descriptor fields)
//   - Duplicate position handling
//   - Output file naming
//   - Playlist index files
//   - Cover art in playlist folders
//   - Concurrent materialization
package config
