package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension has no
	// metadata reader.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNoCoverArt is returned when a file carries no embedded picture.
	ErrNoCoverArt = errors.New("no embedded cover art")
)

// TitleExtractor reads the embedded title of an audio file.
//
// An empty title with a nil error means the file has no title field.
type TitleExtractor interface {
	ExtractTitle(path string) (string, error)
}

// MetadataReader reads titles from MP3 and FLAC files.
type MetadataReader struct{}

// NewMetadataReader creates a new MetadataReader.
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Supports reports whether path has an extension the reader understands.
func (r *MetadataReader) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return true
	}
	return false
}

// ExtractTitle returns the title stored in the file's tags.
//
// A file without a title yields ("", nil); deciding whether that is fatal
// is left to the caller.
func (r *MetadataReader) ExtractTitle(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readMP3Title(path)
	case ".flac":
		return readFLACTitle(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// readMP3Title reads the TIT2 frame.
func readMP3Title(path string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title"}})
	if err != nil {
		return "", err
	}
	defer tag.Close()
	return tag.Title(), nil
}

// readFLACTitle reads the first TITLE Vorbis comment.
func readFLACTitle(path string) (string, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return "", err
	}

	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return "", fmt.Errorf("parse vorbis comment: %w", err)
		}
		titles, err := cmts.Get(flacvorbis.FIELD_TITLE)
		if err != nil {
			return "", err
		}
		if len(titles) > 0 {
			return titles[0], nil
		}
	}
	return "", nil
}

// ReadCoverArt returns the embedded front cover of an MP3 file.
//
// When no picture is typed as a front cover the first attached picture is
// returned. Files without pictures, and non-MP3 files, return ErrNoCoverArt.
func ReadCoverArt(path string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return nil, ErrNoCoverArt
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Attached picture"}})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	var first []byte
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if pic.PictureType == id3v2.PTFrontCover {
			return pic.Picture, nil
		}
		if first == nil {
			first = pic.Picture
		}
	}

	if first == nil {
		return nil, ErrNoCoverArt
	}
	return first, nil
}
