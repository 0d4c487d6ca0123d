package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/domain"
)

func TestOutputFormatResolver_Determine(t *testing.T) {
	r := NewOutputFormatResolver()

	tests := []struct {
		name            string
		json, csv, yaml bool
		wantFormat      domain.OutputFormat
		wantExt         string
		wantErr         bool
	}{
		{name: "text by default", wantFormat: domain.OutputFormatText},
		{name: "json", json: true, wantFormat: domain.OutputFormatJSON, wantExt: "json"},
		{name: "csv", csv: true, wantFormat: domain.OutputFormatCSV, wantExt: "csv"},
		{name: "yaml", yaml: true, wantFormat: domain.OutputFormatYAML, wantExt: "yaml"},
		{name: "conflict", json: true, yaml: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ext, err := r.Determine(tt.json, tt.csv, tt.yaml)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestOutputFormatResolver_DetermineGraph(t *testing.T) {
	r := NewOutputFormatResolver()

	format, err := r.DetermineGraph("", "")
	require.NoError(t, err)
	assert.Equal(t, domain.OutputFormatDOT, format)

	format, err = r.DetermineGraph("", "json")
	require.NoError(t, err)
	assert.Equal(t, domain.OutputFormatJSON, format)

	format, err = r.DetermineGraph("text", "json")
	require.NoError(t, err)
	assert.Equal(t, domain.OutputFormatText, format)

	_, err = r.DetermineGraph("svg", "")
	assert.True(t, domain.HasCode(err, domain.ErrCodeUnsupportedFormat))
}
