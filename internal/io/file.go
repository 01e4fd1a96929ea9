package ioutils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"
)

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// CopyFileIfAbsent copies src to dst unless dst already exists.
//
// The destination is created exclusively, so an existing file is never
// truncated or overwritten. The returned bool reports whether bytes were
// copied; an existing destination yields (false, nil).
//
// If the copy fails midway the partial destination is removed, so a later
// run retries the file instead of skipping a truncated copy.
//
// Example:
//
//	copied, err := CopyFileIfAbsent(ctx, "/takeout/Tracks/a.mp3", "/out/P1/0_a.mp3")
func CopyFileIfAbsent(ctx context.Context, src, dst string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if Exists(dst) {
		return false, nil
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		os.Remove(dst)
		return false, err
	}

	if err := destFile.Close(); err != nil {
		os.Remove(dst)
		return false, err
	}

	return true, nil
}

// WriteFileAtomic replaces path with data in a single rename.
//
// Readers never observe a half-written file; the previous content stays in
// place if the write fails.
func WriteFileAtomic(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// WriteFileIfAbsent writes data to path unless the file already exists.
func WriteFileIfAbsent(ctx context.Context, path string, data []byte) (bool, error) {
	if Exists(path) {
		return false, nil
	}
	if err := WriteFileAtomic(ctx, path, data); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Path separators are always replaced, so a sanitized name never creates
// a subdirectory.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// An existing directory is reused; this is not an error. A regular file
// at path is.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
