// Package reconcile rebuilds playlists by matching descriptors against the
// track pool.
//
// For each playlist the Engine walks the descriptors in order, looks up the
// decoded title in the pool and claims the first exact match into the
// descriptor's position. Descriptors without a match are reported and
// dropped; they never abort the playlist.
//
//	engine := reconcile.NewEngine(reader, reconcile.Renumber, onDiagnostic)
//	result, err := engine.ReconcileDir(ctx, playlistDir, descriptorDir, p)
//
// Playlists must be reconciled one after another against the same pool so
// that "first match wins" is deterministic. Once every playlist is done,
// CollectLeftovers moves what is left into the catch-all playlist.
package reconcile
