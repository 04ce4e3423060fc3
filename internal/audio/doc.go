// Package audio post-processes downloaded tracks: ID3 tag writing and
// playlist generation.
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, track, album, coverBytes)
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
// Supported playlist formats are M3U (optionally extended), PLS, WPL and ZPL.
package audio
