package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/tobiolu/afrocharts/internal/shared"
)

// ArtistInfo is the locally maintained metadata for one artist.
type ArtistInfo struct {
	Country     string `json:"artistCountry"`
	RegionGroup string `json:"regionGroup"`
	Diaspora    bool   `json:"diaspora"`
}

// ArtistTable maps artist display names (exact, case-sensitive) to metadata.
type ArtistTable map[string]ArtistInfo

// UnknownArtist is the fallback applied when a primary artist has no entry.
var UnknownArtist = ArtistInfo{Country: "Unknown", RegionGroup: "Unknown", Diaspora: false}

// artistColumns are the required CSV header columns.
var artistColumns = []string{"artist", "artistCountry", "regionGroup", "diaspora"}

// defaultArtistTable is the built-in fallback used when no artist metadata
// file exists or the file yields no usable rows.
var defaultArtistTable = ArtistTable{
	"Rema":         {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Ayra Starr":   {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Burna Boy":    {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Wizkid":       {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Davido":       {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Tems":         {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Omah Lay":     {Country: "Nigeria", RegionGroup: "Nigeria"},
	"CKay":         {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Lojay":        {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Fireboy DML":  {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Joeboy":       {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Oxlade":       {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Tyla":         {Country: "South Africa", RegionGroup: "Southern Africa"},
	"Rotimi":       {Country: "United States", RegionGroup: "US Diaspora", Diaspora: true},
	"Chris Brown":  {Country: "United States", RegionGroup: "US Diaspora", Diaspora: true},
	"Don Toliver":  {Country: "United States", RegionGroup: "US Diaspora", Diaspora: true},
	"Ed Sheeran":   {Country: "United Kingdom", RegionGroup: "UK Collaborator", Diaspora: true},
	"Sarz":         {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Victony":      {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Mack H.D":     {Country: "Canada", RegionGroup: "Diaspora Collective", Diaspora: true},
	"Black Sherif": {Country: "Ghana", RegionGroup: "Ghana"},
	"King Promise": {Country: "Ghana", RegionGroup: "Ghana"},
	"Amaarae":      {Country: "Ghana", RegionGroup: "Ghana", Diaspora: true},
	"Stonebwoy":    {Country: "Ghana", RegionGroup: "Ghana"},
	"Kuami Eugene": {Country: "Ghana", RegionGroup: "Ghana"},
	"Lasmid":       {Country: "Ghana", RegionGroup: "Ghana"},
	"Shatta Wale":  {Country: "Ghana", RegionGroup: "Ghana"},
	"Teni":         {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Tiwa Savage":  {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Kizz Daniel":  {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Mr Eazi":      {Country: "Nigeria", RegionGroup: "Nigeria"},
	"Yemi Alade":   {Country: "Nigeria", RegionGroup: "Nigeria"},
}

// DefaultArtistTable returns a copy of the built-in artist table.
func DefaultArtistTable() ArtistTable {
	table := make(ArtistTable, len(defaultArtistTable))
	for name, info := range defaultArtistTable {
		table[name] = info
	}
	return table
}

// LoadArtistTable reads artist metadata from a CSV file with columns artist,
// artistCountry, regionGroup, diaspora. An absent file or a file with no
// usable rows yields the built-in defaults; missing required columns are an
// error naming them.
func LoadArtistTable(path string) (ArtistTable, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultArtistTable(), nil
		}
		return nil, fmt.Errorf("failed to open artist metadata at %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read artist metadata header: %v", shared.ErrInvalidConfig, err)
	}

	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.TrimSpace(column)] = i
	}

	var missing []string
	for _, column := range artistColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: artist metadata file is missing required columns: %s", shared.ErrInvalidConfig, strings.Join(missing, ", "))
	}

	table := make(ArtistTable)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read artist metadata row: %v", shared.ErrInvalidConfig, err)
		}

		name := strings.TrimSpace(field(row, index["artist"]))
		if name == "" {
			continue
		}

		country := strings.TrimSpace(field(row, index["artistCountry"]))
		if country == "" {
			country = "Unknown"
		}
		region := strings.TrimSpace(field(row, index["regionGroup"]))
		if region == "" {
			region = "Unknown"
		}

		table[name] = ArtistInfo{
			Country:     country,
			RegionGroup: region,
			Diaspora:    truthy(field(row, index["diaspora"])),
		}
	}

	if len(table) == 0 {
		return DefaultArtistTable(), nil
	}

	return table, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// truthy reports whether a diaspora column value counts as true.
// Accepted (case-insensitive): "true", "1", "yes", "y".
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
