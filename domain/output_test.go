package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	for _, name := range []string{"text", "json", "yaml", "csv", "dot"} {
		format, err := ParseOutputFormat(name)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(name), format)
	}

	format, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatText, format)

	_, err = ParseOutputFormat("html")
	assert.True(t, HasCode(err, ErrCodeUnsupportedFormat))
}

func TestOutputFormat_Extension(t *testing.T) {
	assert.Equal(t, "txt", OutputFormatText.Extension())
	assert.Equal(t, "dot", OutputFormatDOT.Extension())
	assert.Equal(t, "json", OutputFormatJSON.Extension())
	assert.Equal(t, "yaml", OutputFormatYAML.Extension())
}

func TestBoolValue(t *testing.T) {
	assert.True(t, BoolValue(nil, true))
	assert.False(t, BoolValue(BoolPtr(false), true))
	assert.True(t, BoolValue(BoolPtr(true), false))
}

func TestExitPointRequest_Validate(t *testing.T) {
	req := DefaultExitPointRequest()
	assert.True(t, HasCode(req.Validate(), ErrCodeInvalidInput), "paths are required")

	req.Paths = []string{"src"}
	assert.NoError(t, req.Validate())

	req.SortBy = "size"
	assert.Error(t, req.Validate())
}

func TestCFGRequest_Validate(t *testing.T) {
	req := &CFGRequest{FilePath: "src/lib.rs", OutputFormat: OutputFormatDOT}
	assert.NoError(t, req.Validate())

	req.OutputFormat = "svg"
	assert.True(t, HasCode(req.Validate(), ErrCodeUnsupportedFormat))

	assert.Error(t, (&CFGRequest{OutputFormat: OutputFormatText}).Validate())
}

func TestCheckResponse_Passed(t *testing.T) {
	assert.True(t, (&CheckResponse{Ignored: 3}).Passed())
	assert.False(t, (&CheckResponse{Violations: []CheckViolation{{Rule: CheckRuleDeadCode}}}).Passed())
}
