package model

import (
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		position int
		track    *Track
		want     string
	}{
		{"default format", DefaultFileNameFormat, 0, NewTrack("Song", "/t/a.mp3"), "0_Song.mp3"},
		{"empty format uses default", "", 12, NewTrack("Song", "/t/a.mp3"), "12_Song.mp3"},
		{"slash in title", DefaultFileNameFormat, 3, NewTrack("AC/DC Live", "/t/x.MP3"), "3_AC_DC Live.mp3"},
		{"backslash in title", DefaultFileNameFormat, 1, NewTrack(`a\b`, "/t/x.flac"), "1_a_b.flac"},
		{"custom format", "{title} ({position})", 2, NewTrack("Intro", "/t/x.mp3"), "Intro (2).mp3"},
		{"no extension", DefaultFileNameFormat, 0, NewTrack("Raw", "/t/raw"), "0_Raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileName(tt.format, tt.position, tt.track)
			if got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaylist_PutReturnsDisplaced(t *testing.T) {
	pl := NewPlaylist("P1")
	a := NewTrack("A", "/t/a.mp3")
	b := NewTrack("B", "/t/b.mp3")

	if prev := pl.Put(0, a); prev != nil {
		t.Errorf("Put on empty slot returned %v, want nil", prev)
	}
	if prev := pl.Put(0, b); prev != a {
		t.Errorf("Put on occupied slot returned %v, want %v", prev, a)
	}
	if pl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", pl.Len())
	}
	if pl.Get(0) != b {
		t.Error("Get(0) should return the latest track")
	}
}

func TestPlaylist_Ordering(t *testing.T) {
	pl := NewPlaylist("P1")
	pl.Put(7, NewTrack("seven", "/t/7.mp3"))
	pl.Put(0, NewTrack("zero", "/t/0.mp3"))
	pl.Put(3, NewTrack("three", "/t/3.mp3"))

	positions := pl.Positions()
	want := []int{0, 3, 7}
	if len(positions) != len(want) {
		t.Fatalf("Positions() = %v, want %v", positions, want)
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Errorf("Positions()[%d] = %d, want %d", i, positions[i], want[i])
		}
	}

	tracks := pl.Tracks()
	if tracks[0].Title != "zero" || tracks[2].Title != "seven" {
		t.Errorf("Tracks() not in position order: %q, %q", tracks[0].Title, tracks[2].Title)
	}

	if pl.MaxPosition() != 7 {
		t.Errorf("MaxPosition() = %d, want 7", pl.MaxPosition())
	}
	if !pl.Has(3) || pl.Has(4) {
		t.Error("Has() reported wrong occupancy")
	}
}

func TestPlaylist_EmptyMaxPosition(t *testing.T) {
	if got := NewPlaylist("empty").MaxPosition(); got != -1 {
		t.Errorf("MaxPosition() = %d, want -1", got)
	}
}

func TestTrack_Ext(t *testing.T) {
	if got := NewTrack("x", "/a/b/Song.FLAC").Ext(); got != ".flac" {
		t.Errorf("Ext() = %q, want .flac", got)
	}
}
