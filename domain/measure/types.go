package measure

import (
	"fmt"
	"sort"
	"strings"

	"imgquant/domain/core"
)

// Measurement is a single ROI-level row: one image (cluster), one group,
// and the numeric response values measured for that region.
type Measurement struct {
	ImageID string             `json:"image_id"`
	File    string             `json:"file"`
	Series  string             `json:"series"`
	Group   string             `json:"group"`
	Values  map[string]float64 `json:"values"`
}

// Response returns the named response value for this measurement
func (m Measurement) Response(name string) (float64, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// Dataset holds the measurement rows together with the response variables
// the source declared. Images contribute multiple correlated rows; a given
// image id belongs to exactly one group.
type Dataset struct {
	ResponseVars []string
	Rows         []Measurement
}

// NewDataset validates the cluster invariant and builds a dataset
func NewDataset(responseVars []string, rows []Measurement) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}

	groupOf := make(map[string]string, len(rows))
	for _, row := range rows {
		if prev, seen := groupOf[row.ImageID]; seen && prev != row.Group {
			return nil, fmt.Errorf("%w: %s in groups %s and %s",
				core.ErrClusterSpansGroups, row.ImageID, prev, row.Group)
		}
		groupOf[row.ImageID] = row.Group
	}

	return &Dataset{ResponseVars: responseVars, Rows: rows}, nil
}

// HasResponse reports whether name is one of the declared response variables
func (d *Dataset) HasResponse(name string) bool {
	for _, v := range d.ResponseVars {
		if v == name {
			return true
		}
	}
	return false
}

// Groups returns the distinct group labels in lexicographic order.
// The first element is the baseline level for fixed-effect coding.
func (d *Dataset) Groups() GroupSet {
	seen := make(map[string]bool)
	var groups []string
	for _, row := range d.Rows {
		if !seen[row.Group] {
			seen[row.Group] = true
			groups = append(groups, row.Group)
		}
	}
	sort.Strings(groups)
	return GroupSet(groups)
}

// FilterGroups returns a dataset restricted to the given group labels.
// An empty filter returns the receiver unchanged.
func (d *Dataset) FilterGroups(groups []string) *Dataset {
	if len(groups) == 0 {
		return d
	}
	keep := make(map[string]bool, len(groups))
	for _, g := range groups {
		keep[g] = true
	}
	rows := make([]Measurement, 0, len(d.Rows))
	for _, row := range d.Rows {
		if keep[row.Group] {
			rows = append(rows, row)
		}
	}
	return &Dataset{ResponseVars: d.ResponseVars, Rows: rows}
}

// Fingerprint computes a provenance hash over the rows in their input order
func (d *Dataset) Fingerprint() core.DatasetHash {
	var b strings.Builder
	for _, v := range d.ResponseVars {
		b.WriteString(v)
		b.WriteByte('|')
	}
	for _, row := range d.Rows {
		b.WriteString(row.ImageID)
		b.WriteByte(';')
		b.WriteString(row.Group)
		names := make([]string, 0, len(row.Values))
		for name := range row.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, ";%s=%.17g", name, row.Values[name])
		}
		b.WriteByte('\n')
	}
	return core.DatasetHash(core.NewHash([]byte(b.String())))
}

// GroupSet is the ordered set of distinct group labels in a dataset
type GroupSet []string

// Baseline returns the reference level (first label in order)
func (g GroupSet) Baseline() string {
	if len(g) == 0 {
		return ""
	}
	return g[0]
}

// Contains reports whether the label is a member of the set
func (g GroupSet) Contains(label string) bool {
	for _, l := range g {
		if l == label {
			return true
		}
	}
	return false
}

// Index returns the position of the label, or -1 if absent
func (g GroupSet) Index(label string) int {
	for i, l := range g {
		if l == label {
			return i
		}
	}
	return -1
}
