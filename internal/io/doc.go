// Package ioutils provides file system and image utilities for the
// materializer.
//
// This package contains functions for:
//   - Idempotent file copying (never overwrites an existing destination)
//   - Atomic file writes for generated playlist index files
//   - Filename sanitization for cross-platform compatibility
//   - Directory create-or-reuse
//   - Cover art resizing and JPEG conversion
//
// # File Operations
//
//	// Copy a track unless the destination already exists
//	copied, err := ioutils.CopyFileIfAbsent(ctx, "/takeout/Tracks/a.mp3", "/out/Road Trip/0_a.mp3")
//
//	// Replace a playlist index in one step
//	err := ioutils.WriteFileAtomic(ctx, "/out/Road Trip/Road Trip.m3u", content)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
package ioutils
