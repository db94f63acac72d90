package pokedex

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/agentstation/basesync/pkg/errors"
)

// SourceRecord is one entry of the upstream dataset. Members other than
// base and url are ignored.
type SourceRecord struct {
	Base map[string]json.Number `json:"base" yaml:"base"`
	URL  string                 `json:"url" yaml:"url"`
}

// Source is the upstream dataset keyed by string-encoded numeric ID.
type Source map[string]SourceRecord

// LoadSource reads a source dataset from path.
func LoadSource(path string) (Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var src Source
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if src == nil {
		return nil, errors.NewParseError("json", path, "source dataset must be a JSON object", nil)
	}
	return src, nil
}

// Lookup returns the record for a numeric ID.
func (s Source) Lookup(id int) (SourceRecord, error) {
	key := strconv.Itoa(id)
	rec, ok := s[key]
	if !ok {
		return SourceRecord{}, errors.NewNotFoundError("source record", key)
	}
	return rec, nil
}

// Expected returns the base block the singularity should hold for this record.
func (r SourceRecord) Expected() (BaseStats, error) {
	return Transform(r.Base)
}
