// Package matrix aggregates parsed documentation tables into ordered
// compatibility matrices.
package matrix

import (
	"encoding/json"

	"github.com/fyrsmithlabs/muledocd/internal/markup"
	"github.com/fyrsmithlabs/muledocd/internal/version"
)

// Row pairs one subject (a connector name or a runtime version) with the
// versions it is compatible with. CompatibleWith is never empty; rows
// that resolve no versions are dropped during Build.
type Row struct {
	Subject        string           `json:"subject_id"`
	CompatibleWith []version.Record `json:"compatible_with"`
}

// Matrix maps subject ids to compatibility rows. Iteration order is
// insertion order, which is source document order. A matrix is built
// fresh on every query and never persisted.
type Matrix struct {
	subjects []string
	rows     map[string]*Row
}

// Build walks the tables row by row in document order. The first cell of
// each row is the subject; remaining cells are classified independently,
// and cells that do not classify are skipped rather than stored as
// placeholders. A subject appearing again, in the same table or a later
// one, has the new versions appended to its existing row.
func Build(tables []markup.Table) *Matrix {
	m := &Matrix{rows: make(map[string]*Row)}

	for _, table := range tables {
		for _, cells := range table.Rows {
			if len(cells) < 2 {
				continue
			}
			subject := cells[0]
			if subject == "" {
				continue
			}

			var compatible []version.Record
			for _, cell := range cells[1:] {
				if rec := version.Classify(cell); rec != nil {
					compatible = append(compatible, *rec)
				}
			}
			if len(compatible) == 0 {
				continue
			}

			if row, ok := m.rows[subject]; ok {
				row.CompatibleWith = append(row.CompatibleWith, compatible...)
				continue
			}
			m.subjects = append(m.subjects, subject)
			m.rows[subject] = &Row{Subject: subject, CompatibleWith: compatible}
		}
	}

	return m
}

// Len returns the number of subjects.
func (m *Matrix) Len() int {
	return len(m.subjects)
}

// Subjects returns subject ids in insertion order. The returned slice is
// a copy.
func (m *Matrix) Subjects() []string {
	out := make([]string, len(m.subjects))
	copy(out, m.subjects)
	return out
}

// Get returns the row for a subject.
func (m *Matrix) Get(subject string) (Row, bool) {
	row, ok := m.rows[subject]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

// Rows returns all rows in insertion order.
func (m *Matrix) Rows() []Row {
	out := make([]Row, 0, len(m.subjects))
	for _, subject := range m.subjects {
		out = append(out, *m.rows[subject])
	}
	return out
}

// MarshalJSON renders the matrix as an ordered array of rows. A JSON
// object would lose the document order that callers rely on.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Rows())
}
