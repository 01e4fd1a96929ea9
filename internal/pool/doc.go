// Package pool holds the tracks that have not yet been claimed by a playlist.
//
// The pool is populated once from the export's flat track directory, then
// shrinks monotonically as playlists claim tracks. Claim is the only way a
// track leaves the pool, which keeps ownership exclusive: a track is either
// in the pool or in exactly one playlist.
//
//	p, err := pool.Populate(ctx, "/takeout/Tracks", audio.NewMetadataReader(), pool.Options{})
//	if h, ok := p.FindByTitle("Rock & Roll"); ok {
//	    track, _ := p.Claim(h)
//	}
//	leftovers := p.Remainder()
//
// Lookups are indexed by title. When several tracks share a title the one
// encountered first during population is found (and claimed) first.
package pool
