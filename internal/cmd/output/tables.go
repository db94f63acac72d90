package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/basesync/pkg/differ"
	"github.com/agentstation/basesync/pkg/reconciler"
)

var titleCaser = cases.Title(language.English)

// ChangesetToTableData lists one row per pending change.
func ChangesetToTableData(cs *differ.Changeset) Data {
	data := Data{
		Headers:         []string{"#", "Record", "Change", "Fields", "Title"},
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, c := range cs.Changes {
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(c.Index),
			c.DisplayID,
			titleCaser.String(string(c.Type)),
			formatFields(c.Fields),
			c.Title,
		})
	}
	return data
}

// SummaryToTableData renders changeset counts as a property table.
func SummaryToTableData(s differ.ChangesetSummary) Data {
	return Data{
		Headers:         []string{"Property", "Value"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
		Rows: [][]string{
			{"Scanned", strconv.Itoa(s.Scanned)},
			{"Added", strconv.Itoa(s.Added)},
			{"Updated", strconv.Itoa(s.Updated)},
			{"Unchanged", strconv.Itoa(s.Unchanged)},
		},
	}
}

// ResultToTableData renders a sync run report as a property table.
func ResultToTableData(r *reconciler.Result) Data {
	data := SummaryToTableData(r.Changeset.Summary)
	data.Rows = append(data.Rows,
		[]string{"Committed", strconv.Itoa(r.Committed)},
		[]string{"Format failures", strconv.Itoa(r.FormatFailures)},
		[]string{"Dry run", strconv.FormatBool(r.DryRun)},
		[]string{"Duration", r.Duration.Round(time.Millisecond).String()},
	)
	return data
}

// formatFields renders field changes as "HP 1→45, Total -".
func formatFields(fields []differ.FieldChange) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Type {
		case differ.ChangeTypeAdd:
			parts = append(parts, fmt.Sprintf("%s +%s", f.Path, f.NewValue))
		case differ.ChangeTypeRemove:
			parts = append(parts, fmt.Sprintf("%s -", f.Path))
		default:
			parts = append(parts, fmt.Sprintf("%s %s→%s", f.Path, f.OldValue, f.NewValue))
		}
	}
	return strings.Join(parts, ", ")
}
