package takeout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/handiism/takeout-restore/internal/model"
)

var (
	// ErrEmptyRecord is returned for a descriptor file without a data record.
	ErrEmptyRecord = errors.New("no data record")

	// ErrTooFewFields is returned when a record lacks the title or position field.
	ErrTooFewFields = errors.New("too few fields")

	// ErrBadPosition is returned when the position is not a plain decimal
	// number in [0, model.MaxTrackPosition].
	ErrBadPosition = errors.New("invalid position")
)

// DescriptorError reports a malformed descriptor file.
type DescriptorError struct {
	Path string
	Err  error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor %s: %v", e.Path, e.Err)
}

func (e *DescriptorError) Unwrap() error {
	return e.Err
}

// DescriptorReader parses playlist membership CSV files.
type DescriptorReader struct {
	titleField    int
	positionField int
	extension     string
}

// NewDescriptorReader creates a reader taking the title and position from
// the given zero-based field indexes. Only files ending in extension are
// read by ReadDir; an empty extension reads every file.
func NewDescriptorReader(titleField, positionField int, extension string) *DescriptorReader {
	return &DescriptorReader{
		titleField:    titleField,
		positionField: positionField,
		extension:     strings.ToLower(extension),
	}
}

// Read parses a single descriptor file.
//
// The first row is a header and is skipped. The next row is the record;
// rows after it are ignored.
func (r *DescriptorReader) Read(path string) (model.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Descriptor{}, &DescriptorError{Path: path, Err: err}
	}
	defer f.Close()

	d, err := r.parse(f)
	if err != nil {
		return model.Descriptor{}, &DescriptorError{Path: path, Err: err}
	}
	d.Source = path
	return d, nil
}

func (r *DescriptorReader) parse(src io.Reader) (model.Descriptor, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Descriptor{}, ErrEmptyRecord
		}
		return model.Descriptor{}, err
	}

	record, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Descriptor{}, ErrEmptyRecord
		}
		return model.Descriptor{}, err
	}

	need := max(r.titleField, r.positionField) + 1
	if len(record) < need {
		return model.Descriptor{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, len(record), need)
	}

	raw := strings.TrimSpace(record[r.positionField])
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return model.Descriptor{}, fmt.Errorf("%w: %q", ErrBadPosition, raw)
	}
	position, err := strconv.Atoi(raw)
	if err != nil || position > model.MaxTrackPosition {
		return model.Descriptor{}, fmt.Errorf("%w: %q exceeds %d", ErrBadPosition, raw, model.MaxTrackPosition)
	}

	return model.Descriptor{
		Title:    DecodeTitle(record[r.titleField]),
		Position: position,
	}, nil
}

// ReadDir parses every descriptor file in dir, in lexical order.
//
// Failure to list dir, or any malformed descriptor, aborts with an error;
// no partial list is returned. Subdirectories and files with other
// extensions are skipped.
func (r *DescriptorReader) ReadDir(dir string) ([]model.Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read descriptor directory: %w", err)
	}

	var descriptors []model.Descriptor
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if r.extension != "" && strings.ToLower(filepath.Ext(entry.Name())) != r.extension {
			continue
		}

		d, err := r.Read(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

// DecodeTitle converts the export's HTML-entity encoded title to plain
// text, e.g. "Rock &amp; Roll" to "Rock & Roll". No other normalization
// is applied.
func DecodeTitle(s string) string {
	return html.UnescapeString(s)
}
