// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Filename sanitization before path construction
//   - Directory preparation ("create if missing, including parents")
//   - Whole-file writes for small artifacts (playlists, resized covers)
//   - Cover art resizing and format conversion
//
// # Filename Sanitization
//
// SanitizeFileName removes the characters that are reserved in paths:
//
//	safe := ioutils.SanitizeFileName(`AC/DC: "Live"`) // Returns "ACDC Live"
//
// # Directory Preparation
//
//	created, err := ioutils.EnsureDir("/music/Artist/Album")
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG unless it already is one
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
