package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Duplicate position policies.
const (
	// PolicyOverwrite lets the later descriptor take the slot; the displaced
	// track goes back to the pool.
	PolicyOverwrite = "overwrite"

	// PolicyReject aborts the run on a duplicate position.
	PolicyReject = "reject"

	// PolicyRenumber moves the later track after the highest used position.
	PolicyRenumber = "renumber"
)

// Settings holds all configuration options.
type Settings struct {
	// Input layout
	TracksDirName         string `json:"tracks_dir_name"`
	PlaylistsDirName      string `json:"playlists_dir_name"`
	PlaylistTracksDirName string `json:"playlist_tracks_dir_name"` // empty: descriptors live directly in the playlist dir
	DescriptorExtension   string `json:"descriptor_extension"`
	TitleField            int    `json:"title_field"`
	PositionField         int    `json:"position_field"`
	SkipUnsupported       bool   `json:"skip_unsupported"`

	// Reconciliation
	DuplicatePositionPolicy string `json:"duplicate_position_policy"`
	MiscPlaylistName        string `json:"misc_playlist_name"`

	// Output
	FileNameFormat         string `json:"file_name_format"`
	MaxConcurrentPlaylists int    `json:"max_concurrent_playlists"`

	// Playlist index settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Cover art settings
	SaveCoverArtInFolder bool   `json:"save_cover_art_in_folder"`
	CoverArtFileName     string `json:"cover_art_file_name"`
	CoverArtMaxSize      int    `json:"cover_art_max_size"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		TracksDirName:         "Tracks",
		PlaylistsDirName:      "Playlists",
		PlaylistTracksDirName: "Tracks",
		DescriptorExtension:   ".csv",
		TitleField:            0,
		PositionField:         7,
		SkipUnsupported:       true,

		DuplicatePositionPolicy: PolicyRenumber,
		MiscPlaylistName:        "Misc",

		FileNameFormat:         "{position}_{title}",
		MaxConcurrentPlaylists: 1,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		SaveCoverArtInFolder: false,
		CoverArtFileName:     "cover.jpg",
		CoverArtMaxSize:      1000,
	}
}

// Load reads settings from a JSON file.
//
// Keys missing from the file keep their default values. A missing file
// yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values the restore cannot work with.
func (s *Settings) Validate() error {
	var problems []string

	if s.TracksDirName == "" {
		problems = append(problems, "tracks_dir_name is empty")
	}
	if s.PlaylistsDirName == "" {
		problems = append(problems, "playlists_dir_name is empty")
	}
	if s.TracksDirName != "" && s.TracksDirName == s.PlaylistsDirName {
		problems = append(problems, "tracks_dir_name and playlists_dir_name must differ")
	}
	if s.TitleField < 0 || s.PositionField < 0 {
		problems = append(problems, "descriptor field indexes must be non-negative")
	}
	if s.TitleField == s.PositionField {
		problems = append(problems, "title_field and position_field must differ")
	}
	switch s.DuplicatePositionPolicy {
	case PolicyOverwrite, PolicyReject, PolicyRenumber:
	default:
		problems = append(problems, fmt.Sprintf("unknown duplicate_position_policy %q", s.DuplicatePositionPolicy))
	}
	if strings.TrimSpace(s.MiscPlaylistName) == "" {
		problems = append(problems, "misc_playlist_name is empty")
	}
	if !strings.Contains(s.FileNameFormat, "{position}") {
		problems = append(problems, "file_name_format must contain {position}")
	}
	if s.MaxConcurrentPlaylists < 1 {
		problems = append(problems, "max_concurrent_playlists must be at least 1")
	}
	switch strings.ToLower(s.PlaylistFormat) {
	case "m3u", "pls", "wpl", "zpl":
	default:
		problems = append(problems, fmt.Sprintf("unknown playlist_format %q", s.PlaylistFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	return nil
}
