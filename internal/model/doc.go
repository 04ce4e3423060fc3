// Package model defines the core data structures used throughout
// album-downloader.
//
// # Album
//
// Album is the metadata extracted from an album page plus the computed
// local paths:
//
//	album := model.NewAlbum("Artist", "Title", artworkURL, pathConfig)
//	fmt.Println(album.Path)        // <downloads>/Artist/Title
//	fmt.Println(album.ArtworkPath) // <downloads>/Artist/Title/cover.jpg
//
// # Track
//
// Track is a single entry of the album's tracklist:
//
//	track := model.NewTrack("1", "Song Title", mp3URL)
//	fmt.Println(track.Number)     // "01"
//	fmt.Println(track.FileName()) // "01 - Song Title.mp3"
//
// # Task
//
// Task pairs a source URL with the destination path a track is written to.
// Album.Tasks derives one Task per track, in tracklist order.
package model
