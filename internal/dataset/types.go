// package dataset defines the denormalized output model consumed by the
// dashboard, plus the loaders for the locally maintained configuration that
// feeds it.
package dataset

import (
	"encoding/json"

	"github.com/tobiolu/afrocharts/internal/services"
)

// AudioFeatureSet carries the audio-feature metrics copied onto a track
// record. Metrics stay nullable so absent values are emitted as null.
type AudioFeatureSet struct {
	Danceability *float64 `json:"danceability"`
	Energy       *float64 `json:"energy"`
	Valence      *float64 `json:"valence"`
	Tempo        *float64 `json:"tempo"`
	Acousticness *float64 `json:"acousticness"`
}

// TrackRecord is one denormalized track: catalog metadata joined with artist
// metadata and audio features. Features is nil when no feature entry was
// resolved for the track; it is never a partial object.
type TrackRecord struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Artist        string           `json:"artist"`
	ArtistCountry string           `json:"artistCountry"`
	RegionGroup   string           `json:"regionGroup"`
	Diaspora      bool             `json:"diaspora"`
	ReleaseYear   *int             `json:"releaseYear"`
	Features      *AudioFeatureSet `json:"features"`
}

// PlaylistRecord is one playlist's denormalized output. Tracks preserves the
// catalog return order, duplicates included.
type PlaylistRecord struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	CuratorType   string        `json:"curatorType"`
	Curator       string        `json:"curator"`
	FollowerCount *int          `json:"followerCount"`
	LaunchYear    *int          `json:"launchYear"`
	Description   *string       `json:"description"`
	Tracks        []TrackRecord `json:"tracks"`
}

// SkippedPlaylist records a playlist whose snapshot fetch failed.
type SkippedPlaylist struct {
	PlaylistID string `json:"playlistId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// RunMetadata summarizes a single pipeline run.
type RunMetadata struct {
	RunID            string                     `json:"runId"`
	StartedAt        string                     `json:"startedAt"`
	GeneratedAt      string                     `json:"generatedAt"`
	PlaylistCount    int                        `json:"playlistCount"`
	MissingArtists   []string                   `json:"missingArtists"`
	SkippedPlaylists map[string]SkippedPlaylist `json:"skippedPlaylists"`
}

// Dataset is the full per-run output: playlists in configuration order
// (skipped ones absent) plus run metadata.
type Dataset struct {
	Playlists   []PlaylistRecord `json:"playlists"`
	RunMetadata RunMetadata      `json:"runMetadata"`
}

// RawPayload is the per-playlist audit trail: the unprocessed API responses
// plus fetch timestamp and the playlist's own missing-artist list.
type RawPayload struct {
	Slug           string                            `json:"slug"`
	PlaylistID     string                            `json:"playlistId"`
	FetchedAt      string                            `json:"fetchedAt"`
	Config         PlaylistEntry                     `json:"config"`
	Snapshot       json.RawMessage                   `json:"snapshot"`
	TrackItems     []json.RawMessage                 `json:"trackItems"`
	AudioFeatures  map[string]services.AudioFeatures `json:"audioFeatures"`
	MissingArtists []string                          `json:"missingArtists"`
}
