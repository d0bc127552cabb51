package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/tobiolu/afrocharts/internal/services"
)

// ParseReleaseYear derives a release year from an album's release-date
// string. The first 10 characters are tried as an ISO calendar date, then the
// first 4 as a bare integer year. Returns nil when neither parses.
func ParseReleaseYear(album *services.SpotifyAlbum) *int {
	if album == nil || album.ReleaseDate == "" {
		return nil
	}

	date := album.ReleaseDate
	if len(date) > 10 {
		date = date[:10]
	}
	if parsed, err := time.Parse("2006-01-02", date); err == nil {
		year := parsed.Year()
		return &year
	}

	prefix := album.ReleaseDate
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if year, err := strconv.Atoi(prefix); err == nil {
		return &year
	}

	return nil
}

// BuildTrackRecord joins one track item with its audio features and artist
// metadata into a denormalized record. Returns nil when the item carries no
// track, the track is a local (non-catalog) file, or it has no catalog id;
// such items contribute nothing to the output.
//
// An unmatched non-empty primary artist is recorded into missing and the
// record falls back to the Unknown metadata.
func BuildTrackRecord(item services.PlaylistTrackItem, feature *services.AudioFeatures, artists ArtistTable, missing map[string]struct{}) *TrackRecord {
	track := item.Track
	if track == nil || track.IsLocal || track.ID == "" {
		return nil
	}

	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	artistNames := strings.Join(names, ", ")
	if artistNames == "" {
		artistNames = "Unknown"
	}

	info := UnknownArtist
	if len(track.Artists) > 0 {
		if primary := track.Artists[0].Name; primary != "" {
			if found, ok := artists[primary]; ok {
				info = found
			} else {
				missing[primary] = struct{}{}
			}
		}
	}

	title := track.Name
	if title == "" {
		title = "Unknown"
	}

	var features *AudioFeatureSet
	if feature != nil {
		features = &AudioFeatureSet{
			Danceability: feature.Danceability,
			Energy:       feature.Energy,
			Valence:      feature.Valence,
			Tempo:        feature.Tempo,
			Acousticness: feature.Acousticness,
		}
	}

	return &TrackRecord{
		ID:            track.ID,
		Title:         title,
		Artist:        artistNames,
		ArtistCountry: info.Country,
		RegionGroup:   info.RegionGroup,
		Diaspora:      info.Diaspora,
		ReleaseYear:   ParseReleaseYear(track.Album),
		Features:      features,
	}
}

// BuildPlaylistRecord assembles a playlist's denormalized record from its
// snapshot, full track listing, and resolved audio features. Track order and
// duplicates are preserved; items dropped by BuildTrackRecord are absent.
//
// The launch year is the release year of the first item in the original,
// unfiltered order that has one, so a track excluded from the final listing
// can still set it.
func BuildPlaylistRecord(
	slug string,
	entry PlaylistEntry,
	snapshot *services.PlaylistSnapshot,
	items []services.PlaylistTrackItem,
	features map[string]services.AudioFeatures,
	artists ArtistTable,
	missing map[string]struct{},
) PlaylistRecord {
	tracks := make([]TrackRecord, 0, len(items))
	for _, item := range items {
		var feature *services.AudioFeatures
		if item.Track != nil {
			if found, ok := features[item.Track.ID]; ok {
				feature = &found
			}
		}
		if record := BuildTrackRecord(item, feature, artists, missing); record != nil {
			tracks = append(tracks, *record)
		}
	}

	var launchYear *int
	for _, item := range items {
		if item.Track == nil {
			continue
		}
		if year := ParseReleaseYear(item.Track.Album); year != nil {
			launchYear = year
			break
		}
	}

	name := snapshot.Name
	if name == "" {
		name = entry.Label
	}
	if name == "" {
		name = slug
	}

	curatorType := entry.CuratorType
	if curatorType == "" {
		curatorType = "Unknown"
	}

	curator := snapshot.Owner.DisplayName
	if curator == "" {
		curator = snapshot.Owner.ID
	}
	if curator == "" {
		curator = "Unknown"
	}

	return PlaylistRecord{
		ID:            slug,
		Name:          name,
		CuratorType:   curatorType,
		Curator:       curator,
		FollowerCount: snapshot.FollowerCount(),
		LaunchYear:    launchYear,
		Description:   snapshot.Description,
		Tracks:        tracks,
	}
}

// CollectTrackIDs gathers the catalog ids eligible for feature lookups:
// items with a parsed, non-local, id-bearing track. Order is preserved and
// duplicates are kept.
func CollectTrackIDs(items []services.PlaylistTrackItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Track == nil || item.Track.IsLocal || item.Track.ID == "" {
			continue
		}
		ids = append(ids, item.Track.ID)
	}
	return ids
}
