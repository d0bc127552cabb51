package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tobiolu/afrocharts/internal/services"
	"github.com/tobiolu/afrocharts/internal/shared"
	tu "github.com/tobiolu/afrocharts/internal/testing"
)

// fetchFixture wires a Runner with an injected config, a mock catalog, and
// all output paths under a temp dir.
func fetchFixture(t *testing.T, catalog *tu.MockCatalog) (*Runner, *shared.Config, *bytes.Buffer) {
	t.Helper()
	tmpDir := t.TempDir()

	playlistConfig := filepath.Join(tmpDir, "playlists.json")
	content := `{"test-list": {"id": "pl1", "label": "Test List", "curatorType": "Editorial"}}`
	if err := os.WriteFile(playlistConfig, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write playlist config: %v", err)
	}

	config := shared.DefaultConfig()
	config.Credentials.Spotify.ClientID = "test_id"
	config.Credentials.Spotify.ClientSecret = "test_secret"
	config.Data.PlaylistConfig = playlistConfig
	config.Data.ArtistMetadata = filepath.Join(tmpDir, "missing.csv")
	config.Data.RawDir = filepath.Join(tmpDir, "raw")
	config.Data.ProcessedFile = filepath.Join(tmpDir, "processed", "dataset.json")
	config.Data.ScriptFile = filepath.Join(tmpDir, "scripts", "data.js")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Output:  output,
	})
	return runner, config, output
}

func TestFetch(t *testing.T) {
	t.Run("writes all three outputs", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SnapshotFunc: func(ctx context.Context, catalogID, market string) (*services.PlaylistSnapshot, error) {
				return &services.PlaylistSnapshot{
					ID:   catalogID,
					Name: "Test Playlist",
					Raw:  json.RawMessage(`{"id": "` + catalogID + `"}`),
				}, nil
			},
			TracksFunc: func(ctx context.Context, snapshot *services.PlaylistSnapshot) ([]services.PlaylistTrackItem, error) {
				return []services.PlaylistTrackItem{
					{
						Raw: json.RawMessage(`{"track": {"id": "t1"}}`),
						Track: &services.SpotifyTrack{
							ID:      "t1",
							Name:    "Song",
							Artists: []services.SpotifyArtist{{Name: "Burna Boy"}},
						},
					},
				}, nil
			},
		}

		runner, config, output := fetchFixture(t, catalog)
		if err := runApp(t, runner, "fetch"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(config.Data.RawDir, "test-list.json"))
		tu.AssertFileExists(t, config.Data.ProcessedFile)
		tu.AssertFileExists(t, config.Data.ScriptFile)

		script := tu.MustReadFile(t, config.Data.ScriptFile)
		if !strings.HasPrefix(script, "window.AFROBEATS_DATA = ") {
			t.Error("expected script dataset with default global")
		}

		if !strings.Contains(output.String(), "Run complete") {
			t.Errorf("expected summary output, got %q", output.String())
		}
	})

	t.Run("json flag prints run metadata", func(t *testing.T) {
		runner, _, output := fetchFixture(t, &tu.MockCatalog{})
		if err := runApp(t, runner, "fetch", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// The progress lines precede the metadata object; parse the tail.
		text := output.String()
		start := strings.Index(text, `{"runId"`)
		if start < 0 {
			t.Fatalf("expected run metadata JSON, got %q", text)
		}

		var meta map[string]any
		if err := json.Unmarshal([]byte(text[start:]), &meta); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if meta["runId"] == "" {
			t.Error("expected a run id")
		}
	})

	t.Run("authentication failure aborts", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			AuthenticateFunc: func(ctx context.Context) error {
				return shared.ErrAuthFailed
			},
		}

		runner, _, _ := fetchFixture(t, catalog)
		err := runApp(t, runner, "fetch")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("missing credentials abort before any fetch", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "")

		runner, config, _ := fetchFixture(t, &tu.MockCatalog{})
		config.Credentials.Spotify.ClientID = ""
		config.Credentials.Spotify.ClientSecret = ""

		err := runApp(t, runner, "fetch")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		tu.AssertFileAbsent(t, config.Data.ProcessedFile)
	})

	t.Run("market flag overrides config", func(t *testing.T) {
		var seenMarket string
		catalog := &tu.MockCatalog{
			SnapshotFunc: func(ctx context.Context, catalogID, market string) (*services.PlaylistSnapshot, error) {
				seenMarket = market
				return &services.PlaylistSnapshot{ID: catalogID}, nil
			},
		}

		runner, _, _ := fetchFixture(t, catalog)
		if err := runApp(t, runner, "fetch", "--market", "GH"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if seenMarket != "GH" {
			t.Errorf("expected market GH, got %q", seenMarket)
		}
	})
}

func TestPlaylists(t *testing.T) {
	playlistJSON := `{
		"zeta": {"id": "z1", "label": "Zeta"},
		"alpha": {"id": "a1", "curatorType": "Media Publisher"}
	}`

	t.Run("plain listing in configured order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "playlists.json")
		if err := os.WriteFile(path, []byte(playlistJSON), 0644); err != nil {
			t.Fatalf("failed to write playlist config: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Output: output})

		if err := runApp(t, runner, "playlists", "--playlists", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		text := output.String()
		if !strings.Contains(text, "Configured playlists (2)") {
			t.Errorf("expected count header, got %q", text)
		}
		if strings.Index(text, "zeta") > strings.Index(text, "alpha") {
			t.Error("expected configured order preserved")
		}
	})

	t.Run("json output keyed by slug", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "playlists.json")
		if err := os.WriteFile(path, []byte(playlistJSON), 0644); err != nil {
			t.Fatalf("failed to write playlist config: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Output: output})

		if err := runApp(t, runner, "playlists", "--playlists", path, "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var entries map[string]map[string]any
		if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if entries["zeta"]["id"] != "z1" {
			t.Errorf("expected zeta entry, got %v", entries)
		}
	})

	t.Run("defaults when no table configured", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Data.PlaylistConfig = filepath.Join(t.TempDir(), "missing.json")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := runApp(t, runner, "playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "afrobeats-hits") {
			t.Error("expected default table listing")
		}
	})
}
