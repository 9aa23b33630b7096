package analysis_test

import (
	"testing"

	"stylesense/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		comment string
		ok      bool
		scope   string
		rules   []string
		reason  string
	}{
		{comment: "// stylesense: disable", ok: true, scope: "disable"},
		{comment: "//stylesense:disable-line", ok: true, scope: "disable-line"},
		{comment: "/* stylesense: disable-next-line */", ok: true, scope: "disable-next-line"},
		{
			comment: "// stylesense: disable-next-line space-around-assignment, space-after-keyword",
			ok:      true,
			scope:   "disable-next-line",
			rules:   []string{"space-around-assignment", "space-after-keyword"},
		},
		{
			comment: "// stylesense: disable-line space-before-body -- generated code",
			ok:      true,
			scope:   "disable-line",
			rules:   []string{"space-before-body"},
			reason:  "-- generated code",
		},
		{comment: "// an ordinary comment"},
		{comment: "// stylesense: enable"},
		{comment: "// stylesense disable"},
		{comment: "// stylesense: disable a,"},
	}
	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			d, ok := analysis.ParseDirective(tt.comment)
			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.Nil(t, d)
				return
			}
			assert.Equal(t, tt.scope, d.Scope)
			assert.Equal(t, tt.rules, d.Rules)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}
