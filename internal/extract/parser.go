package extract

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/album-downloader/internal/model"
)

var (
	// ErrNoHeading is returned when the page has no album heading.
	ErrNoHeading = errors.New("album heading not found")

	// ErrNoSource is returned when a track has neither a play URL nor a
	// heading link to rebuild one from.
	ErrNoSource = errors.New("track source not found")
)

const headingSeparator = " - "

// Parser extracts album information from album page HTML.
type Parser struct {
	pathConfig *model.PathConfig
}

// NewParser creates a new Parser. pathCfg determines where the parsed
// album will be saved.
func NewParser(pathCfg *model.PathConfig) *Parser {
	return &Parser{
		pathConfig: pathCfg,
	}
}

// ParseAlbumPage extracts the album from page, which was fetched from
// pageURL. Track order follows the page.
func (p *Parser) ParseAlbumPage(page string, pageURL *url.URL) (*model.Album, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base := &url.URL{Scheme: "https", Host: pageURL.Host}

	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		return nil, ErrNoHeading
	}
	artist, title := splitHeading(heading.Text())

	var artworkURL string
	if src, ok := doc.Find(".album-img").First().Attr("data-src"); ok && strings.TrimSpace(src) != "" {
		artworkURL, err = resolve(base, src)
		if err != nil {
			return nil, fmt.Errorf("resolve artwork url: %w", err)
		}
	}

	album := model.NewAlbum(artist, title, artworkURL, p.pathConfig)

	var parseErr error
	doc.Find(".playlist__item").EachWithBreak(func(i int, item *goquery.Selection) bool {
		track, err := parseTrack(base, item)
		if err != nil {
			parseErr = fmt.Errorf("track %d: %w", i+1, err)
			return false
		}
		album.Tracks = append(album.Tracks, track)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return album, nil
}

// splitHeading splits "Artist - Album" on the first separator. Without a
// separator the whole heading is the album title and the artist is left
// empty.
func splitHeading(text string) (artist, title string) {
	text = strings.TrimSpace(text)

	artist, title, found := strings.Cut(text, headingSeparator)
	if !found {
		return "", text
	}

	return strings.TrimSpace(artist), strings.TrimSpace(title)
}

func parseTrack(base *url.URL, item *goquery.Selection) (*model.Track, error) {
	number := strings.TrimSpace(item.Find(".playlist__position").First().Text())
	title := strings.TrimSpace(item.Find(".playlist__details a.strong").First().Text())

	src, ok := item.Find(".playlist__control.play").First().Attr("data-url")
	if !ok || strings.TrimSpace(src) == "" {
		var err error
		src, err = removedSongPath(item)
		if err != nil {
			return nil, err
		}
	}

	sourceURL, err := resolve(base, src)
	if err != nil {
		return nil, fmt.Errorf("resolve source url: %w", err)
	}

	return model.NewTrack(number, title, sourceURL), nil
}

func removedSongPath(item *goquery.Selection) (string, error) {
	href, ok := item.Find(".playlist__heading .strong").First().Attr("href")
	if !ok {
		return "", ErrNoSource
	}

	slug := path.Base(strings.TrimRight(strings.TrimSpace(href), "/"))
	idx := strings.LastIndex(slug, "-")
	if idx <= 0 || idx == len(slug)-1 {
		return "", fmt.Errorf("%w: unexpected link %q", ErrNoSource, href)
	}

	return "/track/play/" + slug[idx+1:] + "/" + slug[:idx] + ".mp3", nil
}

func resolve(base *url.URL, ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
