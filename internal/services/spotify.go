// Spotify API implementation of [CatalogService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tobiolu/afrocharts/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// featureBatchSize is the Spotify audio-features endpoint's id limit.
	featureBatchSize = 100
)

type followers struct {
	Total *int `json:"total"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	IsLocal bool            `json:"is_local"`
	Artists []SpotifyArtist `json:"artists"`
	Album   *SpotifyAlbum   `json:"album"`
}

// Owner represents a playlist owner.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// trackPage is one page of a playlist's track feed. Items are kept verbatim
// so raw payloads can be persisted byte-for-byte.
type trackPage struct {
	Items []json.RawMessage `json:"items"`
	Next  *string           `json:"next"`
}

// PlaylistSnapshot represents playlist metadata plus the first page of
// tracks, along with the verbatim response body.
type PlaylistSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Owner       Owner      `json:"owner"`
	Followers   *followers `json:"followers"`
	Tracks      trackPage  `json:"tracks"`

	Raw json.RawMessage `json:"-"`
}

// FollowerCount returns the snapshot's follower total, nil when absent.
func (s *PlaylistSnapshot) FollowerCount() *int {
	if s.Followers == nil {
		return nil
	}
	return s.Followers.Total
}

// PlaylistTrackItem is one entry of a playlist's track feed: the verbatim
// item plus the parsed nested track. Track is nil when the entry carries no
// track object.
type PlaylistTrackItem struct {
	Raw   json.RawMessage
	Track *SpotifyTrack
}

// AudioFeatures represents the audio-feature metrics for a single track.
// Metrics are pointers so absent values survive the round trip as null.
type AudioFeatures struct {
	ID           string   `json:"id"`
	Danceability *float64 `json:"danceability"`
	Energy       *float64 `json:"energy"`
	Valence      *float64 `json:"valence"`
	Tempo        *float64 `json:"tempo"`
	Acousticness *float64 `json:"acousticness"`
}

// SpotifyOpts contains configuration for creating a SpotifyService.
type SpotifyOpts struct {
	ClientID       string
	ClientSecret   string
	TokenURL       string        // Defaults to the Spotify accounts endpoint
	BaseURL        string        // Defaults to the Spotify Web API
	AuthTimeout    time.Duration // Defaults to 15s
	RequestTimeout time.Duration // Defaults to 20s
	RateLimit      float64       // Requests per second, defaults to 5
}

// SpotifyService implements [CatalogService] for the Spotify Web API.
// Authenticates via the OAuth2 client-credentials grant and paces requests
// with an inline rate limiter; execution stays strictly sequential.
type SpotifyService struct {
	opts       SpotifyOpts
	token      *oauth2.Token
	httpClient *http.Client
	authClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service with the given credentials.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client secret", shared.ErrMissingCredentials)
	}

	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = 15 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 20 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &SpotifyService{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.RequestTimeout},
		authClient: &http.Client{Timeout: opts.AuthTimeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate performs the client-credentials token exchange.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	conf := &clientcredentials.Config{
		ClientID:     s.opts.ClientID,
		ClientSecret: s.opts.ClientSecret,
		TokenURL:     s.opts.TokenURL,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.authClient)
	token, err := conf.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: token response missing access_token", shared.ErrAuthFailed)
	}

	s.token = token
	return nil
}

// doRequest performs an authenticated GET against the given absolute URL and
// returns the verbatim response body. Non-2xx responses become an [*APIError].
func (s *SpotifyService) doRequest(ctx context.Context, apiURL string, result any) ([]byte, error) {
	if s.token == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return body, nil
}

// PlaylistSnapshot retrieves playlist metadata plus the first page of tracks.
func (s *SpotifyService) PlaylistSnapshot(ctx context.Context, catalogID, market string) (*PlaylistSnapshot, error) {
	endpoint := fmt.Sprintf("%s/playlists/%s", s.opts.BaseURL, catalogID)
	if market != "" {
		endpoint += "?market=" + url.QueryEscape(market)
	}

	var snapshot PlaylistSnapshot
	raw, err := s.doRequest(ctx, endpoint, &snapshot)
	if err != nil {
		return nil, err
	}

	snapshot.Raw = raw
	return &snapshot, nil
}

// AllPlaylistTracks walks the paginated track feed starting from the
// snapshot's embedded first page. Entries are appended in encounter order;
// no reordering, no deduplication. Pagination failures propagate.
func (s *SpotifyService) AllPlaylistTracks(ctx context.Context, snapshot *PlaylistSnapshot) ([]PlaylistTrackItem, error) {
	items, err := parseTrackItems(snapshot.Tracks.Items)
	if err != nil {
		return nil, err
	}

	next := snapshot.Tracks.Next
	for next != nil {
		var page trackPage
		if _, err := s.doRequest(ctx, *next, &page); err != nil {
			return nil, err
		}

		parsed, err := parseTrackItems(page.Items)
		if err != nil {
			return nil, err
		}

		items = append(items, parsed...)
		next = page.Next
	}

	return items, nil
}

// parseTrackItems decodes each verbatim item's nested track, tolerating
// entries where the track itself is null.
func parseTrackItems(raw []json.RawMessage) ([]PlaylistTrackItem, error) {
	items := make([]PlaylistTrackItem, 0, len(raw))
	for _, entry := range raw {
		var parsed struct {
			Track *SpotifyTrack `json:"track"`
		}
		if err := json.Unmarshal(entry, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode track item: %w", err)
		}
		items = append(items, PlaylistTrackItem{Raw: entry, Track: parsed.Track})
	}
	return items, nil
}

// AudioFeatures resolves audio features for the given ids in batches of 100,
// preserving input order. A failed batch is recorded and skipped; its ids
// simply have no feature entry. Empty input issues no requests.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, []BatchError, error) {
	features := make(map[string]AudioFeatures)
	var failures []BatchError

	for i, batch := range chunked(trackIDs, featureBatchSize) {
		if err := ctx.Err(); err != nil {
			return features, failures, err
		}

		endpoint := fmt.Sprintf("%s/audio-features?ids=%s", s.opts.BaseURL, url.QueryEscape(strings.Join(batch, ",")))

		var response struct {
			AudioFeatures []*AudioFeatures `json:"audio_features"`
		}

		if _, err := s.doRequest(ctx, endpoint, &response); err != nil {
			if apiErr, ok := err.(*APIError); ok {
				failures = append(failures, BatchError{Batch: i, StatusCode: apiErr.StatusCode, Body: apiErr.Body})
			} else {
				failures = append(failures, BatchError{Batch: i, Body: err.Error()})
			}
			continue
		}

		for _, entry := range response.AudioFeatures {
			if entry == nil || entry.ID == "" {
				continue
			}
			features[entry.ID] = *entry
		}
	}

	return features, failures, nil
}

// chunked partitions ids into fixed-size batches preserving order.
func chunked(ids []string, size int) [][]string {
	var batches [][]string
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		batches = append(batches, ids[:n])
		ids = ids[n:]
	}
	return batches
}
