// Package config loads album-downloader settings.
//
// Settings come from a YAML file (album-dl.yaml by default), overlaid by
// ALBUM_DL_* environment variables. Command line flags are applied by the
// caller, which then calls Validate again.
//
//	settings, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// Example file:
//
//	log:
//	  level: info
//	  format: auto
//	download:
//	  path: /srv/music
//	  concurrency: 5
//	  timeout: 2m
//	cover:
//	  save: true
//	  max_size: 1000
//	tags:
//	  enabled: true
//	playlist:
//	  enabled: true
//	  format: m3u
package config
