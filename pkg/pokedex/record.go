package pokedex

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/agentstation/basesync/pkg/errors"
)

// Member keys read by basesync.
const (
	KeyID   = "id"
	KeyName = "name"
	KeyBase = "base"
)

// member is one key/value pair of a record object.
type member struct {
	Key   string
	Value json.RawMessage
}

// Record is one element of the singularity array. Members are kept in
// file order and untouched members are written back byte-for-byte
// (modulo indentation).
type Record struct {
	members []member
}

// NewRecord builds a record from key/value pairs, mainly for tests.
// Values are marshalled with encoding/json.
func NewRecord(kv ...any) (*Record, error) {
	if len(kv)%2 != 0 {
		return nil, errors.NewValidationError("kv", len(kv), "expected key/value pairs")
	}
	r := &Record{}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, errors.NewValidationError("kv", kv[i], "keys must be strings")
		}
		if err := r.Set(key, kv[i+1]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	r.members = r.members[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode member %q: %w", key, err)
		}
		r.put(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range r.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the member keys in file order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.members))
	for i, m := range r.members {
		keys[i] = m.Key
	}
	return keys
}

// Raw returns the raw JSON of a member.
func (r *Record) Raw(key string) (json.RawMessage, bool) {
	if i := r.index(key); i >= 0 {
		return r.members[i].Value, true
	}
	return nil, false
}

// Set marshals value and stores it under key. An existing member keeps
// its position; a new member is appended.
func (r *Record) Set(key string, value any) error {
	raw, err := marshalNoEscape(value)
	if err != nil {
		return errors.WrapResource("encode", "record member", key, err)
	}
	r.put(key, raw)
	return nil
}

// ID returns the numeric record identifier.
func (r *Record) ID() (int, error) {
	raw, ok := r.Raw(KeyID)
	if !ok {
		return 0, errors.NewNotFoundError("record field", KeyID)
	}
	var id int
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, errors.NewValidationError(KeyID, string(raw), "must be an integer")
	}
	return id, nil
}

// EnglishName returns name.english.
func (r *Record) EnglishName() (string, error) {
	raw, ok := r.Raw(KeyName)
	if !ok {
		return "", errors.NewNotFoundError("record field", KeyName)
	}
	var name struct {
		English *string `json:"english"`
	}
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", errors.NewValidationError(KeyName, string(raw), "must be an object")
	}
	if name.English == nil {
		return "", errors.NewNotFoundError("record field", KeyName+".english")
	}
	return *name.English, nil
}

// Base returns the current base object. present is false when the member
// is missing or null. A present value that is not an object of JSON number
// literals is reported through err with present set to true; a quoted
// number such as "45" counts as not a number. stats then holds only the
// labels whose values are numbers.
func (r *Record) Base() (stats map[string]json.Number, present bool, err error) {
	raw, ok := r.Raw(KeyBase)
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false, nil
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return nil, true, errors.NewValidationError(KeyBase, string(raw), "must be an object of numbers")
	}

	stats = make(map[string]json.Number, len(values))
	for label, value := range values {
		value = bytes.TrimSpace(value)
		if !isNumberLiteral(value) {
			err = errors.NewValidationError(KeyBase+"."+label, string(value), "must be a number")
			continue
		}
		stats[label] = json.Number(value)
	}
	return stats, true, err
}

// isNumberLiteral reports whether raw is a bare JSON number. raw comes out
// of a successful decode, so checking the first byte is enough.
func isNumberLiteral(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// SetBase replaces the whole base member with b.
func (r *Record) SetBase(b BaseStats) error {
	return r.Set(KeyBase, b)
}

func (r *Record) index(key string) int {
	for i, m := range r.members {
		if m.Key == key {
			return i
		}
	}
	return -1
}

// put replaces an existing member in place or appends a new one.
// Duplicate keys in the input collapse onto the first position with the
// last value, matching how a JSON object is usually interpreted.
func (r *Record) put(key string, value json.RawMessage) {
	if i := r.index(key); i >= 0 {
		r.members[i].Value = value
		return
	}
	r.members = append(r.members, member{Key: key, Value: value})
}

// marshalNoEscape marshals v without escaping <, > and &.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
