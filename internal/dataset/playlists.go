package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tobiolu/afrocharts/internal/shared"
)

// PlaylistEntry is one configured playlist: the dashboard slug plus the
// catalog id and curator labeling.
type PlaylistEntry struct {
	Slug        string `json:"-"`
	ID          string `json:"id"`
	CuratorType string `json:"curatorType,omitempty"`
	Label       string `json:"label,omitempty"`
	Market      string `json:"market,omitempty"`
}

// PlaylistTable is an ordered set of playlist entries. Order follows the
// configuration file's object key order and drives output ordering.
type PlaylistTable []PlaylistEntry

// defaultPlaylistTable is the built-in fallback used when no playlist
// configuration file exists.
var defaultPlaylistTable = PlaylistTable{
	{Slug: "afrobeats-hits", ID: "25Y75ozl2aI0NylFToefO5", CuratorType: "Independent Curator", Label: "Afrobeats Hits"},
	{Slug: "afrobeats-2026", ID: "5myeBzohhCVewaK2Thqmo5", CuratorType: "Independent Curator", Label: "Afrobeats 2026"},
	{Slug: "ginja", ID: "4XtoXt98uSrnUbMz7JtWZk", CuratorType: "User-Generated", Label: "Ginja"},
	{Slug: "viral-afrobeats", ID: "6ebiO5veMmbIWL5aGvalgQ", CuratorType: "Media Publisher", Label: "Viral Afrobeats"},
	{Slug: "top-afrobeats-hits", ID: "0RChPss4CYl5LTfK0CRgOZ", CuratorType: "Media Publisher", Label: "Top Afrobeats Hits"},
	{Slug: "afrobeats-gold", ID: "1UFBYLsMwB2q0EypxWdBLO", CuratorType: "Independent Curator", Label: "Afrobeats Gold"},
	{Slug: "amapiano-2025", ID: "4Ymf8eaPQGT7HMTymoX82f", CuratorType: "Independent Curator", Label: "Amapiano 2025"},
	{Slug: "top-picks-afrobeats", ID: "1ynsIf7ZgpEFxIvuDBlUcK", CuratorType: "Media Publisher", Label: "Top Picks: Afrobeats"},
	{Slug: "afrobeats-hits-indie", ID: "2DfNaw9Z1nuddjI6NczTXS", CuratorType: "Independent Curator", Label: "Afrobeats Hits (Indie)"},
}

// DefaultPlaylistTable returns a copy of the built-in playlist table.
func DefaultPlaylistTable() PlaylistTable {
	table := make(PlaylistTable, len(defaultPlaylistTable))
	copy(table, defaultPlaylistTable)
	return table
}

// LoadPlaylistTable reads the playlist configuration from a JSON file. An
// absent file yields the built-in default table; an empty, malformed, or
// invalid file is an error.
func LoadPlaylistTable(path string) (PlaylistTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPlaylistTable(), nil
		}
		return nil, fmt.Errorf("failed to read playlist config at %s: %w", path, err)
	}

	table, err := ParsePlaylistTable(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse playlist config at %s: %w", path, err)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

// ParsePlaylistTable decodes a playlist configuration document. Both a
// {"playlists": {...}} wrapper and a bare slug-to-entry object are accepted.
// Key order is preserved.
func ParsePlaylistTable(data []byte) (PlaylistTable, error) {
	var wrapper struct {
		Playlists json.RawMessage `json:"playlists"`
	}

	object := data
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Playlists) > 0 {
		object = wrapper.Playlists
	}

	dec := json.NewDecoder(bytes.NewReader(object))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: playlist config must map playlist slugs to configuration objects", shared.ErrInvalidConfig)
	}

	var table PlaylistTable
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		slug, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token in playlist config", shared.ErrInvalidConfig)
		}

		var entry PlaylistEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("%w: entry for %q: %v", shared.ErrInvalidConfig, slug, err)
		}
		entry.Slug = slug
		table = append(table, entry)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: playlist config is empty, populate it with playlist entries before running", shared.ErrInvalidConfig)
	}

	return table, nil
}

// Validate checks every entry carries a catalog id. Runs at load time so a
// bad entry aborts before any network call is made.
func (t PlaylistTable) Validate() error {
	for _, entry := range t {
		if entry.ID == "" {
			return fmt.Errorf("%w: playlist config for %q is missing an \"id\"", shared.ErrInvalidConfig, entry.Slug)
		}
	}
	return nil
}

// Lookup returns the entry for slug, if present.
func (t PlaylistTable) Lookup(slug string) (PlaylistEntry, bool) {
	for _, entry := range t {
		if entry.Slug == slug {
			return entry, true
		}
	}
	return PlaylistEntry{}, false
}
