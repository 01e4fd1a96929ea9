package pool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/handiism/takeout-restore/internal/audio"
	"github.com/handiism/takeout-restore/internal/model"
)

// Handle identifies a track slot inside a Pool.
type Handle int

// Options controls population.
type Options struct {
	// SkipUnsupported skips files the extractor cannot read by extension
	// instead of failing. Requires an extractor implementing Supports.
	SkipUnsupported bool

	// OnSkip is called for every skipped file.
	OnSkip func(path string)
}

type supporter interface {
	Supports(path string) bool
}

// Pool is the collection of unclaimed tracks.
//
// Tracks are stored in population order. Claimed slots are set to nil rather
// than removed, so handles stay valid and first-match order is stable.
// All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	tracks  []*model.Track
	byTitle map[string][]Handle
	live    int
}

// New creates a pool holding tracks in the given order.
func New(tracks []*model.Track) *Pool {
	p := &Pool{
		tracks:  make([]*model.Track, 0, len(tracks)),
		byTitle: make(map[string][]Handle),
	}
	for _, t := range tracks {
		p.add(t)
	}
	return p
}

// Populate reads every file in dir, in lexical order, and builds a pool
// from their embedded titles.
//
// A file whose metadata cannot be read fails the whole population with an
// *ExtractionError; a file without a title fails it with a
// *MissingTitleError. No partial pool is returned. Subdirectories are
// ignored.
func Populate(ctx context.Context, dir string, extractor audio.TitleExtractor, opts Options) (*Pool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tracks directory: %w", err)
	}

	sup, _ := extractor.(supporter)

	var tracks []*model.Track
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if opts.SkipUnsupported && sup != nil && !sup.Supports(path) {
			if opts.OnSkip != nil {
				opts.OnSkip(path)
			}
			continue
		}

		title, err := extractor.ExtractTitle(path)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
		if title == "" {
			return nil, &MissingTitleError{Path: path}
		}

		tracks = append(tracks, model.NewTrack(title, path))
	}

	return New(tracks), nil
}

// add appends t; callers must hold mu or own p exclusively.
func (p *Pool) add(t *model.Track) {
	h := Handle(len(p.tracks))
	p.tracks = append(p.tracks, t)
	p.byTitle[t.Title] = append(p.byTitle[t.Title], h)
	p.live++
}

// FindByTitle returns the handle of the first unclaimed track whose title
// equals title exactly.
func (p *Pool) FindByTitle(title string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, h := range p.byTitle[title] {
		if p.tracks[h] != nil {
			return h, true
		}
	}
	return 0, false
}

// Claim removes the track at h from the pool and returns it.
func (p *Pool) Claim(h Handle) (*model.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h < 0 || int(h) >= len(p.tracks) || p.tracks[h] == nil {
		return nil, fmt.Errorf("%w: handle %d", ErrAlreadyClaimed, h)
	}

	t := p.tracks[h]
	p.tracks[h] = nil
	p.live--
	p.dropIndex(t.Title, h)
	return t, nil
}

// Release returns a previously claimed track to the end of the pool.
func (p *Pool) Release(t *model.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(t)
}

// Remainder drains the pool and returns the unclaimed tracks in pool order.
func (p *Pool) Remainder() []*model.Track {
	p.mu.Lock()
	defer p.mu.Unlock()

	rest := make([]*model.Track, 0, p.live)
	for _, t := range p.tracks {
		if t != nil {
			rest = append(rest, t)
		}
	}

	p.tracks = nil
	p.byTitle = make(map[string][]Handle)
	p.live = 0
	return rest
}

// Len returns the number of unclaimed tracks.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Titles returns the titles of unclaimed tracks in pool order.
func (p *Pool) Titles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	titles := make([]string, 0, p.live)
	for _, t := range p.tracks {
		if t != nil {
			titles = append(titles, t.Title)
		}
	}
	return titles
}

func (p *Pool) dropIndex(title string, h Handle) {
	handles := p.byTitle[title]
	for i, x := range handles {
		if x == h {
			handles = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(handles) == 0 {
		delete(p.byTitle, title)
		return
	}
	p.byTitle[title] = handles
}
