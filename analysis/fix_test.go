package analysis_test

import (
	"testing"

	"stylesense/analysis"

	"github.com/stretchr/testify/assert"
)

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		edits   []analysis.Edit
		want    string
		applied int
	}{
		{
			name:    "none",
			src:     "x=1;",
			want:    "x=1;",
			applied: 0,
		},
		{
			name: "insertions out of order",
			src:  "x=1;",
			edits: []analysis.Edit{
				{Start: 2, End: 2, With: " "},
				{Start: 1, End: 1, With: " "},
			},
			want:    "x = 1;",
			applied: 2,
		},
		{
			name: "duplicates collapse",
			src:  "if(a)",
			edits: []analysis.Edit{
				{Start: 2, End: 2, With: " "},
				{Start: 2, End: 2, With: " "},
			},
			want:    "if (a)",
			applied: 1,
		},
		{
			name: "second insertion at one offset is dropped",
			src:  "ab",
			edits: []analysis.Edit{
				{Start: 1, End: 1, With: "x"},
				{Start: 1, End: 1, With: "y"},
			},
			want:    "axb",
			applied: 1,
		},
		{
			name: "overlap is dropped",
			src:  "abcdef",
			edits: []analysis.Edit{
				{Start: 1, End: 4, With: "X"},
				{Start: 2, End: 5, With: "Y"},
			},
			want:    "aXef",
			applied: 1,
		},
		{
			name: "replacement then adjacent insertion",
			src:  "abc",
			edits: []analysis.Edit{
				{Start: 0, End: 1, With: "A"},
				{Start: 1, End: 1, With: "-"},
			},
			want:    "A-bc",
			applied: 2,
		},
		{
			name:    "out of range",
			src:     "abc",
			edits:   []analysis.Edit{{Start: 2, End: 9, With: "z"}},
			want:    "abc",
			applied: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := analysis.ApplyEdits([]byte(tt.src), tt.edits)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.applied, applied)
		})
	}
}

func TestApplyEditsLeavesInputAlone(t *testing.T) {
	src := []byte("x=1;")
	edits := []analysis.Edit{{Start: 2, End: 2, With: " "}, {Start: 1, End: 1, With: " "}}
	_, _ = analysis.ApplyEdits(src, edits)
	assert.Equal(t, "x=1;", string(src))
	assert.Equal(t, uint32(2), edits[0].Start)
}
