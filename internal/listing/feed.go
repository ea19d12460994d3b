package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// ErrMissingSourceData is returned when a feed or site-data document cannot be found.
var ErrMissingSourceData = ferrors.NotFoundError("source data missing").Build()

// ErrInvalidSourceData is returned when a document cannot be decoded.
var ErrInvalidSourceData = ferrors.ValidationError("source data invalid").Build()

// Feed is the FeatureCollection-shaped listings document.
type Feed struct {
	Type     string   `json:"type"`
	Features []Record `json:"features"`
}

// LoadFeed reads a listings feed. Features with a duplicate mlsId after the
// first occurrence are dropped with a warning.
func LoadFeed(path string) ([]Record, error) {
	var feed Feed
	if err := decodeFile(path, &feed); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(feed.Features))
	records := make([]Record, 0, len(feed.Features))
	for _, rec := range feed.Features {
		if rec.Properties == nil {
			rec.Properties = map[string]any{}
		}
		if id := rec.MLSID(); id != "" {
			if seen[id] {
				slog.Warn("Dropping duplicate listing", slog.String("mls_id", id), logfields.Path(path))
				continue
			}
			seen[id] = true
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeFile(path string, into any) error {
	// #nosec G304 -- data file paths are operator supplied.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrMissingSourceData.WithContext("path", path)
		}
		return ferrors.FileSystemError("read source data").Fatal().WithCause(err).WithContext("path", path).Build()
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(into); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, ErrInvalidSourceData.Message()).
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
