package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/handiism/takeout-restore/internal/config"
	"github.com/handiism/takeout-restore/internal/model"
	"github.com/handiism/takeout-restore/internal/pool"
)

// DuplicatePolicy decides what happens when two descriptors of one
// playlist name the same position.
type DuplicatePolicy int

const (
	// Renumber places the later track after the highest used position.
	Renumber DuplicatePolicy = iota

	// Overwrite gives the slot to the later track and returns the
	// displaced one to the pool.
	Overwrite

	// Reject fails the reconciliation with a *DuplicatePositionError.
	Reject
)

// ParseDuplicatePolicy maps a settings value to a DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case config.PolicyRenumber, "":
		return Renumber, nil
	case config.PolicyOverwrite:
		return Overwrite, nil
	case config.PolicyReject:
		return Reject, nil
	}
	return Renumber, fmt.Errorf("unknown duplicate position policy %q", s)
}

// ErrDuplicatePosition matches DuplicatePositionError with errors.Is.
var ErrDuplicatePosition = errors.New("duplicate position")

// DuplicatePositionError reports two descriptors claiming one position.
type DuplicatePositionError struct {
	Playlist string
	Position int
	Source   string
}

func (e *DuplicatePositionError) Error() string {
	return fmt.Sprintf("playlist %q: position %d used twice (%s)", e.Playlist, e.Position, e.Source)
}

func (e *DuplicatePositionError) Is(target error) bool {
	return target == ErrDuplicatePosition
}

// PositionRangeError reports a descriptor position outside
// [0, model.MaxTrackPosition].
type PositionRangeError struct {
	Playlist string
	Position int
	Source   string
}

func (e *PositionRangeError) Error() string {
	return fmt.Sprintf("playlist %q: position %d out of range [0, %d] (%s)", e.Playlist, e.Position, model.MaxTrackPosition, e.Source)
}

// DiagnosticKind classifies recoverable conditions.
type DiagnosticKind int

const (
	// Unmatched means no pooled track has the descriptor's title.
	Unmatched DiagnosticKind = iota

	// Renumbered means a duplicate position was moved after the last
	// used one.
	Renumbered

	// Overwritten means a duplicate position replaced an earlier track.
	Overwritten
)

// Diagnostic describes a recoverable condition met while reconciling.
type Diagnostic struct {
	Kind       DiagnosticKind
	Playlist   string
	Descriptor model.Descriptor

	// Position is where the track ended up (Renumbered) or the contested
	// slot (Overwritten).
	Position int
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case Renumbered:
		return fmt.Sprintf("%s: position %d taken, %q moved to %d", d.Playlist, d.Descriptor.Position, d.Descriptor.Title, d.Position)
	case Overwritten:
		return fmt.Sprintf("%s: %q replaced the track at position %d", d.Playlist, d.Descriptor.Title, d.Position)
	default:
		return fmt.Sprintf("%s: no track titled %q (position %d, %s)", d.Playlist, d.Descriptor.Title, d.Descriptor.Position, filepath.Base(d.Descriptor.Source))
	}
}

// DescriptorSource lists the descriptors of one playlist directory.
type DescriptorSource interface {
	ReadDir(dir string) ([]model.Descriptor, error)
}

// Result is a fully reconciled playlist.
type Result struct {
	Playlist  *model.Playlist
	Matched   int
	Unmatched []model.Descriptor
}

// Engine reconciles playlists against a pool.
type Engine struct {
	source       DescriptorSource
	policy       DuplicatePolicy
	onDiagnostic func(Diagnostic)
}

// NewEngine creates an Engine. onDiagnostic may be nil.
func NewEngine(source DescriptorSource, policy DuplicatePolicy, onDiagnostic func(Diagnostic)) *Engine {
	return &Engine{
		source:       source,
		policy:       policy,
		onDiagnostic: onDiagnostic,
	}
}

// PlaylistName derives a playlist's name from its directory.
func PlaylistName(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}

// ReconcileDir reads the descriptors in descriptorDir and reconciles them
// into a playlist named after playlistDir.
//
// Failure to read the descriptors, including a single malformed record, is
// returned unchanged (wrapped with the playlist name); the pool is not
// touched in that case.
func (e *Engine) ReconcileDir(ctx context.Context, playlistDir, descriptorDir string, p *pool.Pool) (*Result, error) {
	name := PlaylistName(playlistDir)

	descriptors, err := e.source.ReadDir(descriptorDir)
	if err != nil {
		return nil, fmt.Errorf("playlist %q: %w", name, err)
	}

	return e.Reconcile(ctx, name, descriptors, p)
}

// Reconcile claims a track from p for every descriptor, in order.
//
// Matching is exact title equality, first pooled track wins. Descriptors
// without a match are collected in Result.Unmatched and reported as
// Unmatched diagnostics.
//
// Under Renumber, a track whose position is already held keeps its claim
// but is placed only after every other descriptor, at the positions
// following the final highest one, in encounter order. Tracks at unique
// positions are never moved.
func (e *Engine) Reconcile(ctx context.Context, name string, descriptors []model.Descriptor, p *pool.Pool) (*Result, error) {
	result := &Result{Playlist: model.NewPlaylist(name)}
	pl := result.Playlist

	type deferred struct {
		descriptor model.Descriptor
		track      *model.Track
	}
	var held []deferred

	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.Position < 0 || d.Position > model.MaxTrackPosition {
			return nil, &PositionRangeError{Playlist: name, Position: d.Position, Source: d.Source}
		}

		h, ok := p.FindByTitle(d.Title)
		if !ok {
			e.unmatched(result, d)
			continue
		}

		duplicate := pl.Has(d.Position)
		if duplicate && e.policy == Reject {
			return nil, &DuplicatePositionError{Playlist: name, Position: d.Position, Source: d.Source}
		}

		track, err := p.Claim(h)
		if err != nil {
			// Claimed between lookup and claim by a concurrent pass.
			e.unmatched(result, d)
			continue
		}
		result.Matched++

		if duplicate && e.policy == Renumber {
			held = append(held, deferred{descriptor: d, track: track})
			continue
		}

		if displaced := pl.Put(d.Position, track); displaced != nil {
			p.Release(displaced)
			e.report(Diagnostic{Kind: Overwritten, Playlist: name, Descriptor: d, Position: d.Position})
		}
	}

	next := pl.MaxPosition() + 1
	for _, h := range held {
		pl.Put(next, h.track)
		e.report(Diagnostic{Kind: Renumbered, Playlist: name, Descriptor: h.descriptor, Position: next})
		next++
	}

	return result, nil
}

func (e *Engine) unmatched(result *Result, d model.Descriptor) {
	result.Unmatched = append(result.Unmatched, d)
	e.report(Diagnostic{Kind: Unmatched, Playlist: result.Playlist.Name, Descriptor: d, Position: d.Position})
}

func (e *Engine) report(d Diagnostic) {
	if e.onDiagnostic != nil {
		e.onDiagnostic(d)
	}
}
