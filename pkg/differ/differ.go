package differ

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/agentstation/basesync/pkg/errors"
	"github.com/agentstation/basesync/pkg/pokedex"
)

// Differ handles change detection between singularity records and the source.
type Differ struct {
	tracking bool
}

// New creates a Differ with default settings.
func New(opts ...Option) *Differ {
	d := &Differ{tracking: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compare returns the change needed to bring rec in line with src, or nil
// when the record's base already matches. rec is not modified.
func (d *Differ) Compare(rec *pokedex.Record, src pokedex.SourceRecord) (*Change, error) {
	id, err := rec.ID()
	if err != nil {
		return nil, err
	}
	name, err := rec.EnglishName()
	if err != nil {
		return nil, err
	}

	expected, err := src.Expected()
	if err != nil {
		return nil, errors.WrapResource("transform", "source record", strconv.Itoa(id), err)
	}

	current, present, baseErr := rec.Base()

	change := &Change{
		ID:        id,
		Name:      name,
		DisplayID: pokedex.DisplayID(name, id),
		URL:       src.URL,
		New:       expected,
	}

	slug := pokedex.Slug(name)
	switch {
	case !present:
		change.Type = ChangeTypeAdd
		change.Title = fmt.Sprintf("Add base to `%s`", slug)
	case baseErr != nil || !expected.Equal(current):
		change.Type = ChangeTypeUpdate
		change.Title = fmt.Sprintf("Update base of `%s`", slug)
		change.Old = current
	default:
		return nil, nil
	}

	if d.tracking {
		change.Fields = fieldChanges(current, expected)
	}
	return change, nil
}

// Singularity compares every record of s against src in file order.
// Nothing is modified; the result is what a sync run would commit.
func (d *Differ) Singularity(s *pokedex.Singularity, src pokedex.Source) (*Changeset, error) {
	cs := &Changeset{Changes: []Change{}}
	for i, rec := range s.Records {
		id, err := rec.ID()
		if err != nil {
			return nil, errors.WrapResource("read", "record", strconv.Itoa(i), err)
		}
		srcRec, err := src.Lookup(id)
		if err != nil {
			return nil, err
		}
		change, err := d.Compare(rec, srcRec)
		if err != nil {
			return nil, err
		}
		if change != nil {
			change.Index = i
		}
		cs.Record(change)
	}
	return cs, nil
}

// Compare is a convenience wrapper around a default Differ.
func Compare(rec *pokedex.Record, src pokedex.SourceRecord) (*Change, error) {
	return New().Compare(rec, src)
}

// fieldChanges lists per-label differences in write order, followed by
// labels that only exist in the current block.
func fieldChanges(current map[string]json.Number, expected pokedex.BaseStats) []FieldChange {
	var changes []FieldChange
	for _, sm := range pokedex.StatMappings {
		want, _ := expected.Get(sm.Label)
		have, ok := current[sm.Label]
		switch {
		case !ok:
			changes = append(changes, FieldChange{Path: sm.Label, NewValue: want.String(), Type: ChangeTypeAdd})
		case !pokedex.NumbersEqual(have, want):
			changes = append(changes, FieldChange{Path: sm.Label, OldValue: have.String(), NewValue: want.String(), Type: ChangeTypeUpdate})
		}
	}

	var extra []string
	for label := range current {
		if _, known := expected.Get(label); !known {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	for _, label := range extra {
		changes = append(changes, FieldChange{Path: label, OldValue: current[label].String(), Type: ChangeTypeRemove})
	}
	return changes
}
