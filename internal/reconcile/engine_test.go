package reconcile

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/takeout-restore/internal/model"
	"github.com/handiism/takeout-restore/internal/pool"
	"github.com/handiism/takeout-restore/internal/takeout"
)

func newPool(titles ...string) (*pool.Pool, []*model.Track) {
	tracks := make([]*model.Track, len(titles))
	for i, title := range titles {
		tracks[i] = model.NewTrack(title, "/tracks/"+title+".mp3")
	}
	return pool.New(tracks), tracks
}

func desc(title string, pos int) model.Descriptor {
	return model.Descriptor{Title: title, Position: pos, Source: title + ".csv"}
}

func TestReconcile_Scenario(t *testing.T) {
	p, tracks := newPool("A", "B", "C")
	a, b, c := tracks[0], tracks[1], tracks[2]

	var diags []Diagnostic
	engine := NewEngine(nil, Renumber, func(d Diagnostic) { diags = append(diags, d) })

	result, err := engine.Reconcile(context.Background(), "P1", []model.Descriptor{desc("B", 0), desc("Z", 1)}, p)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	pl := result.Playlist
	if pl.Len() != 1 || pl.Get(0) != b {
		t.Errorf("P1 = %v, want {0: B}", pl.Slots)
	}
	if result.Matched != 1 {
		t.Errorf("Matched = %d, want 1", result.Matched)
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0].Title != "Z" {
		t.Errorf("Unmatched = %v, want [Z]", result.Unmatched)
	}
	if len(diags) != 1 || diags[0].Kind != Unmatched || diags[0].Descriptor.Title != "Z" {
		t.Errorf("diagnostics = %v, want one Unmatched for Z", diags)
	}

	misc := CollectLeftovers(p, "Misc")
	if misc == nil || misc.Len() != 2 {
		t.Fatalf("Misc = %v, want 2 tracks", misc)
	}
	seen := map[*model.Track]int{}
	for _, tr := range misc.Tracks() {
		seen[tr]++
	}
	if seen[a] != 1 || seen[c] != 1 {
		t.Errorf("Misc should contain A and C exactly once, got %v", misc.Slots)
	}
	if misc.Get(0) != c || misc.Get(1) != a {
		t.Error("Misc positions should follow reverse pool order")
	}
}

func TestReconcile_ExclusiveAndExhaustive(t *testing.T) {
	p, tracks := newPool("A", "B", "C", "D", "E")
	engine := NewEngine(nil, Renumber, nil)
	ctx := context.Background()

	r1, err := engine.Reconcile(ctx, "P1", []model.Descriptor{desc("A", 0), desc("B", 1)}, p)
	if err != nil {
		t.Fatal(err)
	}
	// P2 asks for B again; it is already owned by P1.
	r2, err := engine.Reconcile(ctx, "P2", []model.Descriptor{desc("B", 0), desc("C", 1), desc("D", 2)}, p)
	if err != nil {
		t.Fatal(err)
	}
	misc := CollectLeftovers(p, "Misc")

	owners := map[*model.Track]string{}
	for _, pl := range []*model.Playlist{r1.Playlist, r2.Playlist, misc} {
		for _, tr := range pl.Tracks() {
			if prev, dup := owners[tr]; dup {
				t.Errorf("track %s in both %s and %s", tr.Title, prev, pl.Name)
			}
			owners[tr] = pl.Name
		}
	}
	for _, tr := range tracks {
		if _, ok := owners[tr]; !ok {
			t.Errorf("track %s lost", tr.Title)
		}
	}
	if len(owners) != len(tracks) {
		t.Errorf("owned %d tracks, want %d", len(owners), len(tracks))
	}
	if len(r2.Unmatched) != 1 || r2.Unmatched[0].Title != "B" {
		t.Errorf("P2 unmatched = %v, want [B]", r2.Unmatched)
	}
	if p.Len() != 0 {
		t.Error("pool should be empty after collecting leftovers")
	}
}

func TestReconcile_DuplicateTitlesFirstMatch(t *testing.T) {
	p, tracks := newPool("Same", "Same")
	engine := NewEngine(nil, Renumber, nil)

	result, err := engine.Reconcile(context.Background(), "P1", []model.Descriptor{desc("Same", 1), desc("Same", 0)}, p)
	if err != nil {
		t.Fatal(err)
	}
	if result.Playlist.Get(1) != tracks[0] || result.Playlist.Get(0) != tracks[1] {
		t.Error("tracks with equal titles should be claimed in pool order")
	}
}

func TestReconcile_DuplicatePositionPolicies(t *testing.T) {
	descriptors := []model.Descriptor{desc("A", 0), desc("B", 0), desc("C", 1)}

	t.Run("renumber", func(t *testing.T) {
		p, tracks := newPool("A", "B", "C")
		var diags []Diagnostic
		engine := NewEngine(nil, Renumber, func(d Diagnostic) { diags = append(diags, d) })

		result, err := engine.Reconcile(context.Background(), "P", descriptors, p)
		if err != nil {
			t.Fatal(err)
		}
		pl := result.Playlist
		if pl.Get(0) != tracks[0] || pl.Get(1) != tracks[2] || pl.Get(2) != tracks[1] {
			t.Errorf("slots = %v, want {0: A, 1: C, 2: B}", pl.Slots)
		}
		if len(diags) != 1 || diags[0].Kind != Renumbered || diags[0].Descriptor.Title != "B" || diags[0].Position != 2 {
			t.Errorf("diagnostics = %v, want one Renumbered for B at 2", diags)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		p, tracks := newPool("A", "B", "C")
		var diags []Diagnostic
		engine := NewEngine(nil, Overwrite, func(d Diagnostic) { diags = append(diags, d) })

		result, err := engine.Reconcile(context.Background(), "P", descriptors, p)
		if err != nil {
			t.Fatal(err)
		}
		pl := result.Playlist
		if pl.Len() != 2 || pl.Get(0) != tracks[1] || pl.Get(1) != tracks[2] {
			t.Errorf("slots = %v", pl.Slots)
		}
		rest := p.Remainder()
		if len(rest) != 1 || rest[0] != tracks[0] {
			t.Errorf("displaced track should return to the pool, remainder = %v", rest)
		}
		if len(diags) != 1 || diags[0].Kind != Overwritten {
			t.Errorf("diagnostics = %v", diags)
		}
	})

	t.Run("reject", func(t *testing.T) {
		p, _ := newPool("A", "B", "C")
		engine := NewEngine(nil, Reject, nil)

		_, err := engine.Reconcile(context.Background(), "P", descriptors, p)
		if !errors.Is(err, ErrDuplicatePosition) {
			t.Fatalf("err = %v, want ErrDuplicatePosition", err)
		}
		var dupErr *DuplicatePositionError
		if !errors.As(err, &dupErr) || dupErr.Position != 0 || dupErr.Playlist != "P" {
			t.Errorf("err = %#v", err)
		}
		if _, ok := p.FindByTitle("B"); !ok {
			t.Error("rejected track should stay in the pool")
		}
	})
}

func TestReconcile_RenumberKeepsUniquePositions(t *testing.T) {
	tests := []struct {
		name        string
		descriptors []model.Descriptor
		want        map[int]string
		renumbered  []string
	}{
		{
			name:        "duplicate before later unique positions",
			descriptors: []model.Descriptor{desc("A", 0), desc("B", 0), desc("C", 1), desc("D", 2)},
			want:        map[int]string{0: "A", 1: "C", 2: "D", 3: "B"},
			renumbered:  []string{"B"},
		},
		{
			name:        "several duplicates keep encounter order",
			descriptors: []model.Descriptor{desc("A", 5), desc("B", 5), desc("C", 0), desc("D", 0), desc("E", 6)},
			want:        map[int]string{0: "C", 5: "A", 6: "E", 7: "B", 8: "D"},
			renumbered:  []string{"B", "D"},
		},
		{
			name:        "no duplicates",
			descriptors: []model.Descriptor{desc("C", 2), desc("A", 0), desc("B", 1)},
			want:        map[int]string{0: "A", 1: "B", 2: "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPool("A", "B", "C", "D", "E")
			var renumbered []string
			engine := NewEngine(nil, Renumber, func(d Diagnostic) {
				if d.Kind == Renumbered {
					renumbered = append(renumbered, d.Descriptor.Title)
				}
			})

			result, err := engine.Reconcile(context.Background(), "P", tt.descriptors, p)
			if err != nil {
				t.Fatal(err)
			}

			pl := result.Playlist
			if pl.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", pl.Len(), len(tt.want))
			}
			for pos, title := range tt.want {
				if tr := pl.Get(pos); tr == nil || tr.Title != title {
					t.Errorf("slot %d = %v, want %s", pos, tr, title)
				}
			}
			if strings.Join(renumbered, ",") != strings.Join(tt.renumbered, ",") {
				t.Errorf("renumbered = %v, want %v", renumbered, tt.renumbered)
			}
		})
	}
}

func TestReconcile_PositionOutOfRange(t *testing.T) {
	for _, pos := range []int{-1, model.MaxTrackPosition + 1, math.MaxInt} {
		p, _ := newPool("A", "B")
		descriptors := []model.Descriptor{desc("A", 0), desc("B", pos)}

		_, err := NewEngine(nil, Renumber, nil).Reconcile(context.Background(), "P", descriptors, p)
		var rangeErr *PositionRangeError
		if !errors.As(err, &rangeErr) || rangeErr.Position != pos {
			t.Errorf("position %d: err = %v, want *PositionRangeError", pos, err)
		}
	}

	p, _ := newPool("A", "B")
	descriptors := []model.Descriptor{desc("A", model.MaxTrackPosition), desc("B", model.MaxTrackPosition)}
	result, err := NewEngine(nil, Renumber, nil).Reconcile(context.Background(), "P", descriptors, p)
	if err != nil {
		t.Fatal(err)
	}
	if positions := result.Playlist.Positions(); len(positions) != 2 || positions[1] != model.MaxTrackPosition+1 {
		t.Errorf("positions = %v, want [%d %d]", positions, model.MaxTrackPosition, model.MaxTrackPosition+1)
	}
}

func TestReconcile_Cancelled(t *testing.T) {
	p, _ := newPool("A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil, Renumber, nil).Reconcile(ctx, "P", []model.Descriptor{desc("A", 0)}, p)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if p.Len() != 1 {
		t.Error("cancelled reconcile should not claim")
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"renumber", Renumber, false},
		{"", Renumber, false},
		{"overwrite", Overwrite, false},
		{"reject", Reject, false},
		{"skip", Renumber, true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuplicatePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

const csvHeader = "Title,Album,Artist,Duration (ms),Rating,Play Count,Removed,Playlist Index\n"

func writeDescriptor(t *testing.T, dir, file, title string, pos string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := csvHeader + title + ",Album,Artist,1000,0,0,," + pos + "\n"
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReconcileDir_DecodesTitles(t *testing.T) {
	root := t.TempDir()
	playlistDir := filepath.Join(root, "Road Trip")
	descDir := filepath.Join(playlistDir, "Tracks")
	writeDescriptor(t, descDir, "1.csv", "Rock &amp; Roll", "0")
	writeDescriptor(t, descDir, "2.csv", "Caf&#233;", "1")

	p, tracks := newPool("Rock & Roll", "Café")
	engine := NewEngine(takeout.NewDescriptorReader(0, 7, ".csv"), Renumber, nil)

	result, err := engine.ReconcileDir(context.Background(), playlistDir, descDir, p)
	if err != nil {
		t.Fatalf("ReconcileDir: %v", err)
	}
	if result.Playlist.Name != "Road Trip" {
		t.Errorf("Name = %q, want Road Trip", result.Playlist.Name)
	}
	if result.Playlist.Get(0) != tracks[0] || result.Playlist.Get(1) != tracks[1] {
		t.Errorf("slots = %v", result.Playlist.Slots)
	}
}

func TestReconcileDir_FatalErrors(t *testing.T) {
	root := t.TempDir()
	engine := NewEngine(takeout.NewDescriptorReader(0, 7, ".csv"), Renumber, nil)

	p, _ := newPool("A")
	missing := filepath.Join(root, "Missing")
	if _, err := engine.ReconcileDir(context.Background(), missing, filepath.Join(missing, "Tracks"), p); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unreadable descriptor dir err = %v, want os.ErrNotExist", err)
	}

	bad := filepath.Join(root, "Bad", "Tracks")
	writeDescriptor(t, bad, "1.csv", "A", "0")
	writeDescriptor(t, bad, "2.csv", "A", "oops")
	if _, err := engine.ReconcileDir(context.Background(), filepath.Dir(bad), bad, p); !errors.Is(err, takeout.ErrBadPosition) {
		t.Errorf("malformed descriptor err = %v, want ErrBadPosition", err)
	}
	if p.Len() != 1 {
		t.Error("a failed read must not claim any track")
	}
}

func TestCollectLeftovers_Empty(t *testing.T) {
	p, _ := newPool()
	if pl := CollectLeftovers(p, "Misc"); pl != nil {
		t.Errorf("CollectLeftovers on empty pool = %v, want nil", pl)
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{FolderKey("Misc"): true, FolderKey("Misc (2)"): true, FolderKey("Mix:1"): true}

	tests := []struct {
		name string
		want string
	}{
		{"Misc", "Misc (3)"},
		{"Misc.", "Misc. (2)"},
		{"misc", "misc (3)"},
		{"Mix_1", "Mix_1 (2)"},
		{"Other", "Other"},
	}
	for _, tt := range tests {
		if got := UniqueName(tt.name, taken); got != tt.want {
			t.Errorf("UniqueName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFolderKey(t *testing.T) {
	if FolderKey("Mix:1") != FolderKey("mix_1") {
		t.Error("names sharing a sanitized folder should share a key")
	}
	if FolderKey("Misc.") != FolderKey("Misc") {
		t.Error("trailing dots are stripped from folder names")
	}
	if FolderKey("A") == FolderKey("B") {
		t.Error("distinct folders should have distinct keys")
	}
}
