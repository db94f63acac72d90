package pokedex

import (
	"encoding/json"
	"strconv"

	"github.com/agentstation/basesync/pkg/errors"
)

// Stat labels used by the singularity dataset, in file order.
const (
	LabelHP        = "HP"
	LabelAttack    = "Attack"
	LabelDefense   = "Defense"
	LabelSpAttack  = "Sp. Attack"
	LabelSpDefense = "Sp. Defense"
	LabelSpeed     = "Speed"
)

// StatMapping pairs a source stat key with its singularity label.
type StatMapping struct {
	Source string
	Label  string
}

// StatMappings lists the six stats in the order they are written.
var StatMappings = []StatMapping{
	{Source: "hp", Label: LabelHP},
	{Source: "attack", Label: LabelAttack},
	{Source: "defense", Label: LabelDefense},
	{Source: "special_attack", Label: LabelSpAttack},
	{Source: "special_defense", Label: LabelSpDefense},
	{Source: "speed", Label: LabelSpeed},
}

// BaseStats is the base-stat block as stored in the singularity file.
// Field order is the serialisation order. Values are kept as the literal
// number from the source so nothing is converted on the way through.
type BaseStats struct {
	HP        json.Number `json:"HP" yaml:"HP"`
	Attack    json.Number `json:"Attack" yaml:"Attack"`
	Defense   json.Number `json:"Defense" yaml:"Defense"`
	SpAttack  json.Number `json:"Sp. Attack" yaml:"Sp. Attack"`
	SpDefense json.Number `json:"Sp. Defense" yaml:"Sp. Defense"`
	Speed     json.Number `json:"Speed" yaml:"Speed"`
}

// Transform maps a source base object onto the singularity labels.
// Every source key must be present; values are not range checked.
func Transform(base map[string]json.Number) (BaseStats, error) {
	values := make(map[string]json.Number, len(StatMappings))
	for _, m := range StatMappings {
		v, ok := base[m.Source]
		if !ok {
			return BaseStats{}, errors.NewNotFoundError("base stat", m.Source)
		}
		values[m.Label] = v
	}

	return BaseStats{
		HP:        values[LabelHP],
		Attack:    values[LabelAttack],
		Defense:   values[LabelDefense],
		SpAttack:  values[LabelSpAttack],
		SpDefense: values[LabelSpDefense],
		Speed:     values[LabelSpeed],
	}, nil
}

// Get returns the value stored under a singularity label.
func (b BaseStats) Get(label string) (json.Number, bool) {
	switch label {
	case LabelHP:
		return b.HP, true
	case LabelAttack:
		return b.Attack, true
	case LabelDefense:
		return b.Defense, true
	case LabelSpAttack:
		return b.SpAttack, true
	case LabelSpDefense:
		return b.SpDefense, true
	case LabelSpeed:
		return b.Speed, true
	}
	return "", false
}

// Map returns the block keyed by label.
func (b BaseStats) Map() map[string]json.Number {
	m := make(map[string]json.Number, len(StatMappings))
	for _, sm := range StatMappings {
		m[sm.Label], _ = b.Get(sm.Label)
	}
	return m
}

// Equal reports whether stats holds exactly the six labels with
// numerically equal values. Extra or missing labels make it unequal.
func (b BaseStats) Equal(stats map[string]json.Number) bool {
	if len(stats) != len(StatMappings) {
		return false
	}
	for _, sm := range StatMappings {
		have, ok := stats[sm.Label]
		if !ok {
			return false
		}
		want, _ := b.Get(sm.Label)
		if !NumbersEqual(have, want) {
			return false
		}
	}
	return true
}

// NumbersEqual compares two JSON numbers by value, so 45 and 45.0 match.
func NumbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(a.String(), 64)
	fb, errB := strconv.ParseFloat(b.String(), 64)
	if errA != nil || errB != nil {
		return false
	}
	return fa == fb
}
