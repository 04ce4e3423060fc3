package audio

import (
	"fmt"
	"strings"

	"github.com/handiism/album-downloader/internal/model"
)

// PlaylistCreator generates playlist files in various formats.
//
// Entries are track file names relative to the album directory, which is
// where the playlist is written.
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
//	// #EXTM3U
//	// #EXTINF:-1,Artist - Song Title
//	// 01 - Song Title.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only applies
// to M3U.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for the tracks of album.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(album)
	case model.PlaylistFormatWPL:
		return p.createWPL(album)
	case model.PlaylistFormatZPL:
		return p.createZPL(album)
	case model.PlaylistFormatM3U:
		return p.createM3U(album)
	default:
		return p.createM3U(album)
	}
}

// createM3U generates an M3U playlist. The page carries no durations, so
// extended entries use -1.
func (p *PlaylistCreator) createM3U(album *model.Album) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, track := range album.Tracks {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:-1,%s - %s\n", album.Artist, track.Title)
		}
		sb.WriteString(track.FileName() + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist:
//
//	[playlist]
//	File1=01 - Title.mp3
//	Title1=Title
//	Length1=-1
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(album *model.Album) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, track := range album.Tracks {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, track.FileName())
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, track.Title)
		fmt.Fprintf(&sb, "Length%d=-1\n", idx)
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(album.Tracks))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(album *model.Album) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(album.Title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range album.Tracks {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(track.FileName()))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL plus album and track attributes on each entry.
func (p *PlaylistCreator) createZPL(album *model.Album) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(album.Title))
	sb.WriteString("    <meta name=\"Generator\" content=\"album-downloader\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(album.Tracks))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, track := range album.Tracks {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\"/>\n",
			escapeXML(track.FileName()),
			escapeXML(album.Title),
			escapeXML(album.Artist),
			escapeXML(track.Title),
			escapeXML(album.Artist))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
