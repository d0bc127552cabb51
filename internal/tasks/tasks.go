// package tasks implements the playlist dataset pipeline.
//
// The core abstraction is FetchEngine, which walks the configured playlists
// in order, fetches each one start-to-finish (snapshot, full track listing,
// audio-feature batches), joins the results against the artist table, and
// accumulates run metadata. Operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/tobiolu/afrocharts/internal/dataset"
	"github.com/tobiolu/afrocharts/internal/formatter"
	"github.com/tobiolu/afrocharts/internal/services"
	"github.com/tobiolu/afrocharts/internal/shared"
)

// FetchEngineOpts contains dependencies and settings for a FetchEngine.
type FetchEngineOpts struct {
	Catalog   services.CatalogService
	Playlists dataset.PlaylistTable
	Artists   dataset.ArtistTable
	RawDir    string // Directory for per-playlist raw payloads
	Market    string // Default market, overridden per entry
	Logger    *log.Logger
}

// FetchEngine orchestrates one pipeline run. Execution is strictly
// sequential: one playlist completes before the next begins.
type FetchEngine struct {
	catalog   services.CatalogService
	playlists dataset.PlaylistTable
	artists   dataset.ArtistTable
	rawDir    string
	market    string
	logger    *log.Logger
}

// NewFetchEngine creates a new FetchEngine with the provided dependencies.
func NewFetchEngine(opts FetchEngineOpts) *FetchEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &FetchEngine{
		catalog:   opts.Catalog,
		playlists: opts.Playlists,
		artists:   opts.Artists,
		rawDir:    opts.RawDir,
		market:    opts.Market,
		logger:    opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *FetchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run executes the pipeline over every configured playlist in order and
// returns the assembled dataset.
//
// A failed snapshot fetch is recorded as a skip and the run continues; a
// pagination failure after a successful snapshot aborts the run. Failed
// audio-feature batches are logged as warnings and their tracks simply lack
// feature data.
func (e *FetchEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*dataset.Dataset, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	startedAt := shared.UTCTimestamp()
	total := len(e.playlists)

	playlists := make([]dataset.PlaylistRecord, 0, total)
	missing := make(map[string]struct{})
	skipped := make(map[string]dataset.SkippedPlaylist)

	for i, entry := range e.playlists {
		step := i + 1
		e.sendProgress(progress, fetchSnapshotUpdate(step, total, entry.Slug, entry.ID))
		e.logger.Info("fetching playlist", "slug", entry.Slug, "id", entry.ID)

		snapshot, err := e.catalog.PlaylistSnapshot(ctx, entry.ID, e.marketFor(entry))
		if err != nil {
			var apiErr *services.APIError
			if errors.As(err, &apiErr) {
				e.logger.Warn("failed to fetch playlist, skipping", "slug", entry.Slug, "status", apiErr.StatusCode)
				skipped[entry.Slug] = dataset.SkippedPlaylist{
					PlaylistID: entry.ID,
					Status:     strconv.Itoa(apiErr.StatusCode),
					Message:    shared.Truncate(apiErr.Body, 200),
				}
				e.sendProgress(progress, skipPlaylistUpdate(step, total, entry.Slug, apiErr.StatusCode))
				continue
			}
			return nil, fmt.Errorf("%w: snapshot fetch for %q: %v", shared.ErrAPIRequest, entry.Slug, err)
		}

		items, err := e.catalog.AllPlaylistTracks(ctx, snapshot)
		if err != nil {
			return nil, fmt.Errorf("%w: track pagination for %q: %v", shared.ErrAPIRequest, entry.Slug, err)
		}
		e.sendProgress(progress, fetchTracksUpdate(step, total, entry.Slug, len(items)))

		trackIDs := dataset.CollectTrackIDs(items)
		features := make(map[string]services.AudioFeatures)
		if len(trackIDs) > 0 {
			var failures []services.BatchError
			features, failures, err = e.catalog.AudioFeatures(ctx, trackIDs)
			if err != nil {
				return nil, err
			}
			for _, failure := range failures {
				e.logger.Warn("audio-features request failed",
					"slug", entry.Slug, "batch", failure.Batch, "status", failure.StatusCode, "body", failure.Body)
			}
			e.sendProgress(progress, fetchFeaturesUpdate(step, total, entry.Slug, len(features), len(trackIDs)))
		}

		playlistMissing := make(map[string]struct{})
		record := dataset.BuildPlaylistRecord(entry.Slug, entry, snapshot, items, features, e.artists, playlistMissing)
		playlists = append(playlists, record)
		for name := range playlistMissing {
			missing[name] = struct{}{}
		}

		rawPath, err := e.writeRawPayload(entry, snapshot, items, features, playlistMissing)
		if err != nil {
			return nil, err
		}
		e.sendProgress(progress, writeRawUpdate(step, total, entry.Slug, rawPath))
	}

	e.sendProgress(progress, assembleUpdate(len(playlists), len(skipped)))

	ds := &dataset.Dataset{
		Playlists: playlists,
		RunMetadata: dataset.RunMetadata{
			RunID:            shared.GenerateID(),
			StartedAt:        startedAt,
			GeneratedAt:      shared.UTCTimestamp(),
			PlaylistCount:    len(playlists),
			MissingArtists:   sortedNames(missing),
			SkippedPlaylists: skipped,
		},
	}

	return ds, nil
}

// marketFor resolves the market for an entry: the entry's own market wins,
// then the engine-wide default.
func (e *FetchEngine) marketFor(entry dataset.PlaylistEntry) string {
	if entry.Market != "" {
		return entry.Market
	}
	return e.market
}

// writeRawPayload persists a playlist's unprocessed API responses to
// <rawDir>/<slug>.json as an audit trail.
func (e *FetchEngine) writeRawPayload(
	entry dataset.PlaylistEntry,
	snapshot *services.PlaylistSnapshot,
	items []services.PlaylistTrackItem,
	features map[string]services.AudioFeatures,
	playlistMissing map[string]struct{},
) (string, error) {
	trackItems := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		trackItems = append(trackItems, item.Raw)
	}

	payload := &dataset.RawPayload{
		Slug:           entry.Slug,
		PlaylistID:     entry.ID,
		FetchedAt:      shared.UTCTimestamp(),
		Config:         entry,
		Snapshot:       snapshot.Raw,
		TrackItems:     trackItems,
		AudioFeatures:  features,
		MissingArtists: sortedNames(playlistMissing),
	}

	path := filepath.Join(e.rawDir, entry.Slug+".json")
	size, err := formatter.WriteRawPayload(payload, path)
	if err != nil {
		return "", fmt.Errorf("failed to write raw payload for %q: %w", entry.Slug, err)
	}

	e.logger.Info("raw payload written", "slug", entry.Slug, "file", path, "size", humanize.Bytes(uint64(size)))
	return path, nil
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
