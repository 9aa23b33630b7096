package analysis

import (
	"bytes"
	"sort"
)

// ApplyEdits applies non-overlapping edits to src and returns the result
// with the number of edits applied. Duplicate edits collapse into one; an
// edit overlapping an earlier one is dropped.
func ApplyEdits(src []byte, edits []Edit) ([]byte, int) {
	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var out bytes.Buffer
	out.Grow(len(src) + len(sorted))

	applied := 0
	cursor := uint32(0)
	var last *Edit
	for i := range sorted {
		e := &sorted[i]
		if last != nil && *e == *last {
			continue
		}
		if e.Start < cursor || e.End < e.Start || int(e.End) > len(src) {
			continue
		}
		if last != nil && e.Start == last.End && last.Start == last.End && e.Start == e.End {
			// Two different insertions at one offset would be ordered arbitrarily.
			continue
		}
		out.Write(src[cursor:e.Start])
		out.WriteString(e.With)
		cursor = e.End
		last = e
		applied++
	}
	out.Write(src[cursor:])

	return out.Bytes(), applied
}

// Edits gathers the fix edits of diags.
func Edits(diags []Diagnostic) []Edit {
	var edits []Edit
	for _, d := range diags {
		edits = append(edits, d.Fix...)
	}
	return edits
}
