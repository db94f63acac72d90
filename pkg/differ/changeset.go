// Package differ compares singularity records against the source dataset
// and describes what has to change.
package differ

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentstation/basesync/pkg/pokedex"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates the base block was missing and is added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates the base block differs and is replaced.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a label present in the record is dropped.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a single stat label.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`
	OldValue string     `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty" yaml:"new_value,omitempty"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// Change describes the base update for one record.
type Change struct {
	Index     int                    `json:"index" yaml:"index"` // position in the singularity array
	ID        int                    `json:"id" yaml:"id"`
	Name      string                 `json:"name" yaml:"name"`
	DisplayID string                 `json:"display_id" yaml:"display_id"`
	Type      ChangeType             `json:"type" yaml:"type"`
	Title     string                 `json:"title" yaml:"title"`
	URL       string                 `json:"url" yaml:"url"`
	Old       map[string]json.Number `json:"old,omitempty" yaml:"old,omitempty"`
	New       pokedex.BaseStats      `json:"new" yaml:"new"`
	Fields    []FieldChange          `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Message returns the full commit message for the change.
func (c *Change) Message() string {
	return fmt.Sprintf("%s\n\nValue is from <%s>", c.Title, c.URL)
}

// Changeset represents all pending changes for a singularity file.
type Changeset struct {
	Changes []Change         `json:"changes" yaml:"changes"`
	Summary ChangesetSummary `json:"summary" yaml:"summary"`
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	Scanned      int `json:"scanned" yaml:"scanned"`
	Added        int `json:"added" yaml:"added"`
	Updated      int `json:"updated" yaml:"updated"`
	Unchanged    int `json:"unchanged" yaml:"unchanged"`
	TotalChanges int `json:"total_changes" yaml:"total_changes"`
}

// Record counts one scanned record and its change, if any.
func (c *Changeset) Record(change *Change) {
	c.Summary.Scanned++
	if change == nil {
		c.Summary.Unchanged++
		return
	}
	c.Changes = append(c.Changes, *change)
	switch change.Type {
	case ChangeTypeAdd:
		c.Summary.Added++
	case ChangeTypeUpdate:
		c.Summary.Updated++
	}
	c.Summary.TotalChanges = c.Summary.Added + c.Summary.Updated
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return fmt.Sprintf("No changes detected (%d records scanned)", c.Summary.Scanned)
	}

	var parts []string
	if c.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", c.Summary.Added))
	}
	if c.Summary.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", c.Summary.Updated))
	}
	return fmt.Sprintf("Base: %s (%d records scanned)", strings.Join(parts, ", "), c.Summary.Scanned)
}
