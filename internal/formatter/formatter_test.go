package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tobiolu/afrocharts/internal/dataset"
	th "github.com/tobiolu/afrocharts/internal/testing"
)

func testDataset() *dataset.Dataset {
	year := 2021
	return &dataset.Dataset{
		Playlists: []dataset.PlaylistRecord{
			{
				ID:          "afrobeats-hits",
				Name:        "Afrobeats Hits",
				CuratorType: "Editorial",
				Curator:     "Spotify",
				LaunchYear:  &year,
				Tracks: []dataset.TrackRecord{
					{ID: "t1", Title: "Song", Artist: "Rema", ArtistCountry: "Nigeria", RegionGroup: "Nigeria"},
				},
			},
		},
		RunMetadata: dataset.RunMetadata{
			RunID:            "run-1",
			StartedAt:        "2026-08-23T10:00:00Z",
			GeneratedAt:      "2026-08-23T10:01:00Z",
			PlaylistCount:    1,
			MissingArtists:   []string{},
			SkippedPlaylists: map[string]dataset.SkippedPlaylist{},
		},
	}
}

func TestWriteDataset(t *testing.T) {
	t.Run("Creates Directories And Valid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed", "dataset.json")

		size, err := WriteDataset(testDataset(), path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if size == 0 {
			t.Error("expected a nonzero byte count")
		}

		th.AssertFileExists(t, path)

		var parsed dataset.Dataset
		if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(parsed.Playlists) != 1 || parsed.Playlists[0].ID != "afrobeats-hits" {
			t.Errorf("unexpected playlists: %+v", parsed.Playlists)
		}
		if parsed.RunMetadata.RunID != "run-1" {
			t.Errorf("expected run id run-1, got %s", parsed.RunMetadata.RunID)
		}
	})

	t.Run("Nullable Fields Emit Null", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.json")

		ds := testDataset()
		ds.Playlists[0].FollowerCount = nil
		ds.Playlists[0].Description = nil

		if _, err := WriteDataset(ds, path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, `"followerCount": null`) {
			t.Error("expected followerCount emitted as null")
		}
		if !strings.Contains(content, `"description": null`) {
			t.Error("expected description emitted as null")
		}
	})
}

func TestWriteScriptDataset(t *testing.T) {
	t.Run("Wraps Dataset In Global Assignment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scripts", "data.js")

		size, err := WriteScriptDataset(testDataset(), "AFROBEATS_DATA", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := th.MustReadFile(t, path)
		if len(content) != size {
			t.Errorf("reported size %d does not match file size %d", size, len(content))
		}

		if !strings.HasPrefix(content, "window.AFROBEATS_DATA = ") {
			t.Errorf("expected window assignment prefix, got %q", content[:40])
		}
		if !strings.HasSuffix(content, ";\n") {
			t.Error("expected trailing semicolon and newline")
		}

		// The payload between prefix and suffix must be the dataset JSON.
		payload := strings.TrimPrefix(content, "window.AFROBEATS_DATA = ")
		payload = strings.TrimSuffix(payload, ";\n")

		var parsed dataset.Dataset
		if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
			t.Fatalf("script payload is not valid JSON: %v", err)
		}
		if parsed.RunMetadata.PlaylistCount != 1 {
			t.Errorf("expected playlist count 1, got %d", parsed.RunMetadata.PlaylistCount)
		}
	})

	t.Run("Custom Global Name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.js")

		if _, err := WriteScriptDataset(testDataset(), "DASHBOARD_DATA", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.HasPrefix(th.MustReadFile(t, path), "window.DASHBOARD_DATA = ") {
			t.Error("expected configured global name in assignment")
		}
	})
}

func TestWriteRawPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "afrobeats-hits.json")

	payload := &dataset.RawPayload{
		Slug:       "afrobeats-hits",
		PlaylistID: "pl1",
		FetchedAt:  "2026-08-23T10:00:00Z",
		Config:     dataset.PlaylistEntry{Slug: "afrobeats-hits", ID: "pl1"},
		Snapshot:   json.RawMessage(`{"id": "pl1", "name": "Afrobeats Hits"}`),
		TrackItems: []json.RawMessage{
			json.RawMessage(`{"track": {"id": "t1"}}`),
		},
		MissingArtists: []string{},
	}

	if _, err := WriteRawPayload(payload, path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var parsed dataset.RawPayload
	if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &parsed); err != nil {
		t.Fatalf("raw payload is not valid JSON: %v", err)
	}

	if parsed.Slug != "afrobeats-hits" {
		t.Errorf("expected slug afrobeats-hits, got %s", parsed.Slug)
	}
	if len(parsed.TrackItems) != 1 {
		t.Errorf("expected 1 raw track item, got %d", len(parsed.TrackItems))
	}

	var snapshot map[string]any
	if err := json.Unmarshal(parsed.Snapshot, &snapshot); err != nil {
		t.Fatalf("snapshot was not preserved verbatim: %v", err)
	}
	if snapshot["name"] != "Afrobeats Hits" {
		t.Errorf("unexpected snapshot contents: %v", snapshot)
	}
}
