package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/handiism/album-downloader/internal/audio"
	"github.com/handiism/album-downloader/internal/config"
	"github.com/handiism/album-downloader/internal/extract"
	"github.com/handiism/album-downloader/internal/http"
	ioutils "github.com/handiism/album-downloader/internal/io"
	"github.com/handiism/album-downloader/internal/model"
)

// ErrInvalidURL is returned by Initialize for album URLs that are not
// absolute http(s) URLs.
var ErrInvalidURL = errors.New("album url must be an absolute http or https url")

// Hooks observe a download run. Every field is optional.
type Hooks struct {
	OnWaveStart func(wave int, tasks []model.Task)

	// OnOutcome is called for every track and for the cover. It may be
	// called concurrently.
	OnOutcome  func(index int, out Outcome)
	OnProgress ProgressFunc
}

// Result describes a download run. Tracks holds the outcomes of every
// attempted track in tracklist order.
type Result struct {
	Album      *model.Album
	DirCreated bool
	Tracks     []Outcome

	// Cover is nil when the album has no artwork or saving it is disabled.
	Cover *Outcome
}

// Manager runs the whole pipeline for one album: page fetch, extraction,
// track waves, cover download and post-processing.
type Manager struct {
	settings     *config.Settings
	logger       zerolog.Logger
	httpClient   *http.Client
	parser       *extract.Parser
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService
	hooks        Hooks

	album         *model.Album
	totalFiles    int32
	settledFiles  atomic.Int32
	receivedBytes atomic.Int64
}

// NewManager creates a new download Manager. opts are applied to the
// HTTP client after the configured user agent and proxy.
func NewManager(settings *config.Settings, logger zerolog.Logger, hooks Hooks, opts ...http.Option) *Manager {
	clientOpts := []http.Option{http.WithUserAgent(settings.Download.UserAgent)}
	if p := settings.Download.Proxy; p.Enabled() {
		addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
		if t, err := http.NewSOCKS5Transport(addr, p.Username, p.Password); err != nil {
			logger.Error().Err(err).Str("proxy", addr).Msg("Failed to set up proxy, connecting directly")
		} else {
			clientOpts = append(clientOpts, http.WithTransport(t))
		}
	}
	clientOpts = append(clientOpts, opts...)

	return &Manager{
		settings:     settings,
		logger:       logger,
		httpClient:   http.NewClient(clientOpts...),
		parser:       extract.NewParser(settings.ToPathConfig()),
		tagger:       audio.NewTagger(audio.DefaultTagConfig()),
		playlist:     audio.NewPlaylistCreator(model.ParsePlaylistFormat(settings.Playlist.Format), settings.Playlist.Extended),
		imageService: ioutils.NewImageService(),
		hooks:        hooks,
	}
}

// Initialize fetches the album page and extracts the album. selection
// limits the tracks to the listed sequence numbers; empty keeps all.
func (m *Manager) Initialize(ctx context.Context, albumURL string, selection []int) (*model.Album, error) {
	u, err := url.Parse(albumURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, albumURL)
	}

	logger := m.logger.With().Str("url", albumURL).Logger()
	logger.Debug().Msg("Fetching album page")

	page, err := m.httpClient.GetString(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch album page: %w", err)
	}

	album, err := m.parser.ParseAlbumPage(page, u)
	if err != nil {
		return nil, fmt.Errorf("extract album: %w", err)
	}

	found := len(album.Tracks)
	album.Select(selection)

	m.album = album
	m.totalFiles = int32(len(album.Tracks))
	if album.HasArtwork() && m.settings.Cover.Save {
		m.totalFiles++
	}

	logger.
		Info().
		Str("artist", album.Artist).
		Str("album", album.Title).
		Int("tracks_found", found).
		Int("tracks_selected", len(album.Tracks)).
		Bool("artwork", album.HasArtwork()).
		Msg("Found album")

	return album, nil
}

// Album returns the album found by Initialize.
func (m *Manager) Album() *model.Album {
	return m.album
}

// GetProgress returns the bytes received and the number of settled files
// out of the files planned by Initialize.
func (m *Manager) GetProgress() (received int64, filesSettled, filesTotal int32) {
	return m.receivedBytes.Load(), m.settledFiles.Load(), m.totalFiles
}

// Download prepares the album directory and downloads the tracks and the
// cover. It returns a *FatalError when a download aborted the run; the
// returned Result is never nil after Initialize.
func (m *Manager) Download(ctx context.Context) (*Result, error) {
	album := m.album
	if album == nil {
		return nil, ErrNotInitialized
	}

	res := &Result{Album: album}
	logger := m.logger.With().Str("path", album.Path).Logger()

	created, err := ioutils.EnsureDir(album.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to prepare album directory")
		return res, fmt.Errorf("prepare album directory: %w", err)
	}
	res.DirCreated = created
	if created {
		logger.Info().Msg("Created album directory")
	}

	writer := NewFileWriter(
		m.httpClient,
		m.logger,
		WithTimeout(m.settings.Download.Timeout.Duration),
		WithProgress(m.hooks.OnProgress),
	)

	orchestrator, err := NewOrchestrator(
		writer,
		m.settings.Download.Concurrency,
		m.logger,
		OnWaveStart(m.hooks.OnWaveStart),
		OnOutcome(m.settle),
	)
	if err != nil {
		return res, err
	}

	res.Tracks, err = orchestrator.Run(ctx, album.Tasks())
	if err != nil {
		return res, err
	}

	if album.HasArtwork() && m.settings.Cover.Save {
		index := len(res.Tracks)
		out := writer.Write(ctx, model.Task{SourceURL: album.ArtworkURL, Path: album.ArtworkPath})
		m.settle(index, out)
		res.Cover = &out

		switch out.Kind {
		case KindFatal:
			return res, &FatalError{Index: index, Task: out.Task, Err: out.Err}
		case KindDownloaded:
			m.processCover(ctx, logger, album.ArtworkPath)
		case KindSkippedExisting, KindSkippedNotFound, KindSkippedHTTPError:
		}
	}

	if m.settings.Tags.Enabled {
		m.tagTracks(ctx, logger, res)
	}

	if m.settings.Playlist.Enabled {
		content := m.playlist.CreatePlaylist(album)
		if err := ioutils.WriteFile(ctx, album.PlaylistPath, []byte(content)); err != nil {
			logger.Warn().Err(err).Msg("Failed to create playlist")
		} else {
			logger.Info().Str("playlist", album.PlaylistPath).Msg("Created playlist")
		}
	}

	return res, nil
}

func (m *Manager) settle(index int, out Outcome) {
	m.settledFiles.Add(1)
	m.receivedBytes.Add(out.Bytes)

	if m.hooks.OnOutcome != nil {
		m.hooks.OnOutcome(index, out)
	}
}

// processCover resizes and converts the saved cover in place. Failures
// leave the downloaded file as it is.
func (m *Manager) processCover(ctx context.Context, logger zerolog.Logger, path string) {
	if m.settings.Cover.MaxSize <= 0 && !m.settings.Cover.ConvertToJPG {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read cover")
		return
	}

	processed, err := m.prepareCover(ctx, data, m.settings.Cover.MaxSize, m.settings.Cover.ConvertToJPG)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to process cover")
		return
	}
	if bytes.Equal(processed, data) {
		return
	}

	if err := ioutils.WriteFile(ctx, path, processed); err != nil {
		logger.Warn().Err(err).Msg("Failed to save processed cover")
	}
}

func (m *Manager) prepareCover(ctx context.Context, data []byte, maxSize int, toJPEG bool) ([]byte, error) {
	var err error

	if maxSize > 0 {
		data, err = m.imageService.ResizeImage(ctx, data, maxSize, maxSize)
		if err != nil {
			return nil, fmt.Errorf("resize cover: %w", err)
		}
	}

	if toJPEG {
		data, err = m.imageService.ConvertToJPEG(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("convert cover: %w", err)
		}
	}

	return data, nil
}

// tagTracks writes ID3 tags into the tracks downloaded by this run.
// Skipped files are left untouched.
func (m *Manager) tagTracks(ctx context.Context, logger zerolog.Logger, res *Result) {
	var cover []byte
	if m.settings.Tags.EmbedCover {
		cover = m.coverForTags(ctx, logger, res.Album)
	}

	for i, out := range res.Tracks {
		if out.Kind != KindDownloaded {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Msg("Tagging interrupted")
			return
		}

		if err := m.tagger.SaveTags(out.Task.Path, res.Album.Tracks[i], res.Album, cover); err != nil {
			logger.Warn().Err(err).Str("track", out.Task.Path).Msg("Failed to write tags")
		}
	}
}

// coverForTags returns JPEG cover bytes from the saved cover, falling back
// to fetching the artwork into memory.
func (m *Manager) coverForTags(ctx context.Context, logger zerolog.Logger, album *model.Album) []byte {
	if !album.HasArtwork() {
		return nil
	}

	data, err := os.ReadFile(album.ArtworkPath)
	if err != nil {
		data, err = m.httpClient.Get(ctx, album.ArtworkURL)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to fetch cover for tags")
			return nil
		}
	}

	data, err = m.prepareCover(ctx, data, 0, true)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to prepare cover for tags")
		return nil
	}

	return data
}
