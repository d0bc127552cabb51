package tasks

import "fmt"

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchSnapshot Phase = iota
	SkipPlaylist
	FetchTracks
	FetchFeatures
	WriteRaw
	Assemble
)

func (p Phase) String() string {
	switch p {
	case FetchSnapshot:
		return "fetch_snapshot"
	case SkipPlaylist:
		return "skip_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case FetchFeatures:
		return "fetch_features"
	case WriteRaw:
		return "write_raw"
	case Assemble:
		return "assemble"
	default:
		return ""
	}
}

func fetchSnapshotUpdate(step, total int, slug, catalogID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching playlist %s (%s)...", step, total, slug, catalogID),
	}
}

func skipPlaylistUpdate(step, total int, slug string, status int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: snapshot fetch failed (status %d), skipping", step, total, slug, status),
	}
}

func fetchTracksUpdate(step, total int, slug string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: collected %d track items", step, total, slug, count),
	}
}

func fetchFeaturesUpdate(step, total int, slug string, resolved, requested int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: resolved audio features for %d of %d tracks", step, total, slug, resolved, requested),
	}
}

func writeRawUpdate(step, total int, slug, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteRaw,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: raw payload -> %s", step, total, slug, path),
	}
}

func assembleUpdate(fetched, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Assemble,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Assembling dataset: %d playlists, %d skipped", fetched, skipped),
	}
}
