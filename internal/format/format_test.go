package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"atools", ATools},
		{"ATools", ATools},
		{"ATOOLS", ATools},
		{"csv", CSV},
		{"Csv", CSV},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, in := range []string{"", "xml", "csvx", " csv"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrUnknownFormat, in)
	}
}

func TestFormat_StringAndExt(t *testing.T) {
	assert.Equal(t, "atools", ATools.String())
	assert.Equal(t, "csv", CSV.String())
	assert.Equal(t, "Format(0)", Format(0).String())
	assert.Equal(t, ".txt", ATools.Ext())
	assert.Equal(t, ".csv", CSV.Ext())
	assert.Equal(t, "", Format(9).Ext())
}

func TestFormat_Set(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("CSV"))
	assert.Equal(t, CSV, f)
	assert.Error(t, f.Set("yaml"))
	assert.Equal(t, CSV, f, "failed Set keeps the previous value")
	assert.Equal(t, "format", f.Type())
}
