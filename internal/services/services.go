// package services defines interface CatalogService for interacting with HTTP music catalog APIs
package services

import (
	"context"
	"fmt"
)

// CatalogService defines the interface for a music catalog provider that can
// authenticate, fetch playlist snapshots, walk paginated track listings, and
// resolve audio features in batches.
type CatalogService interface {
	// Authenticate exchanges client credentials for a short-lived bearer token.
	// Returns an error if the exchange fails; there is no retry.
	Authenticate(ctx context.Context) error

	// PlaylistSnapshot retrieves playlist metadata plus the first page of
	// tracks. market narrows regional availability when non-empty and is
	// passed through unmodified.
	PlaylistSnapshot(ctx context.Context, catalogID, market string) (*PlaylistSnapshot, error)

	// AllPlaylistTracks walks the paginated track feed starting from the
	// snapshot's embedded first page and collects entries in encounter order.
	AllPlaylistTracks(ctx context.Context, snapshot *PlaylistSnapshot) ([]PlaylistTrackItem, error)

	// AudioFeatures resolves audio features for the given track ids in
	// fixed-size batches. Failed batches are reported, not fatal.
	AudioFeatures(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, []BatchError, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// APIError represents a non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error: status %d", e.StatusCode)
}

// BatchError records a failed audio-feature batch request.
type BatchError struct {
	Batch      int    // Zero-based batch index
	StatusCode int    // HTTP status, 0 for transport failures
	Body       string // Response body or transport error text
}

func (e BatchError) Error() string {
	return fmt.Sprintf("audio-features batch %d failed: status %d", e.Batch, e.StatusCode)
}
