package main

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tobiolu/afrocharts/internal/dataset"
	"github.com/tobiolu/afrocharts/internal/formatter"
	"github.com/tobiolu/afrocharts/internal/services"
	"github.com/tobiolu/afrocharts/internal/shared"
	"github.com/tobiolu/afrocharts/internal/tasks"
	"github.com/urfave/cli/v3"
)

func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch the configured playlists and write the dashboard dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "playlists",
				Usage: "Path to the playlist config JSON (overrides config)",
			},
			&cli.StringFlag{
				Name:  "artists",
				Usage: "Path to the artist metadata CSV (overrides config)",
			},
			&cli.StringFlag{
				Name:  "market",
				Usage: "Default market passed to snapshot requests (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print run metadata as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Fetch,
	}
}

// Fetch runs the full pipeline: load configuration, authenticate, fetch and
// normalize every configured playlist, and write the three output files.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if path := cmd.String("playlists"); path != "" {
		config.Data.PlaylistConfig = path
	}
	if path := cmd.String("artists"); path != "" {
		config.Data.ArtistMetadata = path
	}
	if market := cmd.String("market"); market != "" {
		config.Catalog.Market = market
	}

	if err := shared.LoadDotenv(".env"); err != nil {
		r.logger.Warnf("failed to load .env %v", err)
	}
	if err := config.ResolveCredentials(); err != nil {
		return err
	}

	playlists, err := dataset.LoadPlaylistTable(config.Data.PlaylistConfig)
	if err != nil {
		return err
	}

	artists, err := dataset.LoadArtistTable(config.Data.ArtistMetadata)
	if err != nil {
		return err
	}

	catalog := r.catalog
	if catalog == nil {
		catalog, err = services.NewSpotifyService(services.SpotifyOpts{
			ClientID:       config.Credentials.Spotify.ClientID,
			ClientSecret:   config.Credentials.Spotify.ClientSecret,
			AuthTimeout:    time.Duration(config.HTTP.AuthTimeoutSeconds) * time.Second,
			RequestTimeout: time.Duration(config.HTTP.RequestTimeoutSeconds) * time.Second,
			RateLimit:      config.HTTP.RateLimit,
		})
		if err != nil {
			return err
		}
	}

	r.logger.Info("authenticating", "service", catalog.Name())
	if err := catalog.Authenticate(ctx); err != nil {
		return err
	}

	engine := tasks.NewFetchEngine(tasks.FetchEngineOpts{
		Catalog:   catalog,
		Playlists: playlists,
		Artists:   artists,
		RawDir:    config.Data.RawDir,
		Market:    config.Catalog.Market,
		Logger:    r.logger,
	})

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
		close(done)
	}()

	ds, runErr := engine.Run(ctx, progress)
	close(progress)
	<-done
	if runErr != nil {
		return runErr
	}

	size, err := formatter.WriteDataset(ds, config.Data.ProcessedFile)
	if err != nil {
		return err
	}
	r.logger.Info("dataset written", "file", config.Data.ProcessedFile, "size", humanize.Bytes(uint64(size)))

	size, err = formatter.WriteScriptDataset(ds, config.Output.ScriptGlobal, config.Data.ScriptFile)
	if err != nil {
		return err
	}
	r.logger.Info("script dataset written", "file", config.Data.ScriptFile, "size", humanize.Bytes(uint64(size)))

	if cmd.Bool("json") {
		return r.writeJSON(ds.RunMetadata, cmd.Bool("pretty"))
	}

	r.writePlain("\n✓ Run complete\n")
	r.writePlain("  Playlists: %d fetched, %d skipped\n", ds.RunMetadata.PlaylistCount, len(ds.RunMetadata.SkippedPlaylists))
	if len(ds.RunMetadata.MissingArtists) > 0 {
		r.writePlain("  Missing artist metadata (%d):\n", len(ds.RunMetadata.MissingArtists))
		for _, name := range ds.RunMetadata.MissingArtists {
			r.writePlain("    - %s\n", name)
		}
	}
	for slug, skip := range ds.RunMetadata.SkippedPlaylists {
		r.writePlain("  Skipped %s (%s): status %s\n", slug, skip.PlaylistID, skip.Status)
	}
	r.writePlain("  Processed: %s\n", config.Data.ProcessedFile)
	r.writePlain("  Script:    %s\n", config.Data.ScriptFile)

	return nil
}
