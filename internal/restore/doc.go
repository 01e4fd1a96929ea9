// Package restore coordinates a full playlist restore.
//
// A restore runs in two phases:
//
//  1. Initialize: validate the export layout, read every track's title into
//     the pool, reconcile each playlist in turn, and move unclaimed tracks
//     into the leftover playlist.
//  2. Materialize: write every playlist to the output root, optionally
//     several playlists at once.
//
// Materialize must not start before Initialize returns, because the
// leftover playlist is only known once every playlist has claimed its
// tracks.
//
// # Usage
//
//	manager := restore.NewManager(settings, func(e restore.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//	if err := manager.Initialize(ctx, "/takeout"); err != nil {
//	    return err // fatal: bad layout, unreadable metadata, malformed CSV
//	}
//	if err := manager.Materialize(ctx, "/music/playlists"); err != nil {
//	    return err
//	}
//
// # Idempotency
//
// Existing output directories are reused and existing files are never
// overwritten, so a run interrupted halfway can simply be repeated.
//
// # Progress Events
//
// Progress is reported through ProgressEvent callbacks with levels:
//   - LevelInfo: general information
//   - LevelVerbose: per-file detail
//   - LevelWarning: unmatched descriptors, failed copies
//   - LevelError: a playlist could not be written
//   - LevelSuccess: a playlist was fully written
package restore
