package pokedex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentstation/basesync/pkg/constants"
	"github.com/agentstation/basesync/pkg/errors"
)

// Singularity is the curated dataset file, kept in memory in file order.
type Singularity struct {
	Path    string
	Records []*Record
}

// LoadSingularity reads the singularity array from path.
func LoadSingularity(path string) (*Singularity, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if records == nil {
		return nil, errors.NewParseError("json", path, "singularity dataset must be a JSON array", nil)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, errors.NewParseError("json", path, fmt.Sprintf("element %d is null", i), nil)
		}
	}

	return &Singularity{Path: path, Records: records}, nil
}

// Encode returns the whole array as 2-space indented JSON with
// non-ASCII characters and HTML characters left unescaped.
func (s *Singularity) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", constants.JSONIndent)

	records := s.Records
	if records == nil {
		records = []*Record{}
	}
	if err := enc.Encode(records); err != nil {
		return nil, errors.WrapResource("encode", "singularity", s.Path, err)
	}
	return buf.Bytes(), nil
}

// Save overwrites the file at s.Path with the current records.
func (s *Singularity) Save() error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", s.Path, err)
	}
	return nil
}
