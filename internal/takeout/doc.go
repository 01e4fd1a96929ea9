// Package takeout reads the Google Takeout music export layout.
//
// An export root holds two directories: a flat directory of audio files
// and a directory with one subdirectory per playlist. Every playlist
// subdirectory holds one CSV file per playlist entry:
//
//	Takeout/
//	  Tracks/
//	    Rock & Roll.mp3
//	  Playlists/
//	    Road Trip/
//	      Tracks/
//	        Rock &amp; Roll.csv
//
// # Layout
//
// Discover validates the root once at startup:
//
//	layout, err := takeout.Discover(root, takeout.DefaultLayoutConfig())
//	dirs, err := layout.Playlists()
//
// # Descriptors
//
// Each CSV file has a header row and exactly one data record. The title
// field is HTML-entity encoded (Rock &amp; Roll) and is decoded before use;
// the position field is a zero-based integer:
//
//	reader := takeout.NewDescriptorReader(0, 7, ".csv")
//	descriptors, err := reader.ReadDir(layout.DescriptorDir(dirs[0]))
package takeout
