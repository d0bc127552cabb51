package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Data        DataConfig        `toml:"data"`
	Output      OutputConfig      `toml:"output"`
	HTTP        HTTPConfig        `toml:"http"`
	Catalog     CatalogConfig     `toml:"catalog"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DataConfig contains input and output file locations.
type DataConfig struct {
	PlaylistConfig string `toml:"playlist_config"`
	ArtistMetadata string `toml:"artist_metadata"`
	RawDir         string `toml:"raw_dir"`
	ProcessedFile  string `toml:"processed_file"`
	ScriptFile     string `toml:"script_file"`
}

// OutputConfig contains dataset output settings.
type OutputConfig struct {
	// ScriptGlobal is the window-scoped variable name the script output
	// assigns the dataset to.
	ScriptGlobal string `toml:"script_global"`
}

// HTTPConfig contains request timeout and pacing settings.
type HTTPConfig struct {
	AuthTimeoutSeconds    int     `toml:"auth_timeout_seconds"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
	RateLimit             float64 `toml:"rate_limit"`
}

// CatalogConfig contains catalog query settings.
type CatalogConfig struct {
	// Market narrows regional track availability when set. Per-playlist
	// markets in the playlist config take precedence.
	Market string `toml:"market"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotenv populates the process environment from a KEY=VALUE .env file
// when one exists at path. A missing file is not an error.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// ResolveCredentials fills empty Spotify credentials from the environment
// (SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET) and returns an error when either
// is still missing afterwards.
func (c *Config) ResolveCredentials() error {
	if c.Credentials.Spotify.ClientID == "" {
		c.Credentials.Spotify.ClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		c.Credentials.Spotify.ClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	}

	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set", ErrMissingCredentials)
	}

	return nil
}
