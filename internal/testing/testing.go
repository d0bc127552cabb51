// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/tobiolu/afrocharts/internal/services"
)

// MockCatalog is a configurable test double for [services.CatalogService].
// Unset function fields fall back to benign defaults.
type MockCatalog struct {
	AuthenticateFunc func(ctx context.Context) error
	SnapshotFunc     func(ctx context.Context, catalogID, market string) (*services.PlaylistSnapshot, error)
	TracksFunc       func(ctx context.Context, snapshot *services.PlaylistSnapshot) ([]services.PlaylistTrackItem, error)
	FeaturesFunc     func(ctx context.Context, trackIDs []string) (map[string]services.AudioFeatures, []services.BatchError, error)
}

func (m *MockCatalog) Authenticate(ctx context.Context) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return nil
}

func (m *MockCatalog) PlaylistSnapshot(ctx context.Context, catalogID, market string) (*services.PlaylistSnapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, catalogID, market)
	}
	return &services.PlaylistSnapshot{}, nil
}

func (m *MockCatalog) AllPlaylistTracks(ctx context.Context, snapshot *services.PlaylistSnapshot) ([]services.PlaylistTrackItem, error) {
	if m.TracksFunc != nil {
		return m.TracksFunc(ctx, snapshot)
	}
	return nil, nil
}

func (m *MockCatalog) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]services.AudioFeatures, []services.BatchError, error) {
	if m.FeaturesFunc != nil {
		return m.FeaturesFunc(ctx, trackIDs)
	}
	return map[string]services.AudioFeatures{}, nil, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
