package main

import (
	"context"

	"github.com/tobiolu/afrocharts/internal/dataset"
	"github.com/urfave/cli/v3"
)

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "Print the configured playlist table",
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
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print playlists as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Playlists,
	}
}

// Playlists prints the playlist table the fetch command would run over.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	path := cmd.String("playlists")
	if path == "" {
		path = config.Data.PlaylistConfig
	}

	playlists, err := dataset.LoadPlaylistTable(path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make(map[string]dataset.PlaylistEntry, len(playlists))
		for _, entry := range playlists {
			entries[entry.Slug] = entry
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlain("Configured playlists (%d):\n\n", len(playlists))
	for i, entry := range playlists {
		r.writePlain("%d. %s\n", i+1, entry.Slug)
		r.writePlain("   ID: %s\n", entry.ID)
		if entry.Label != "" {
			r.writePlain("   Label: %s\n", entry.Label)
		}
		if entry.CuratorType != "" {
			r.writePlain("   Curator type: %s\n", entry.CuratorType)
		}
		if entry.Market != "" {
			r.writePlain("   Market: %s\n", entry.Market)
		}
		r.writePlain("\n")
	}

	return nil
}
