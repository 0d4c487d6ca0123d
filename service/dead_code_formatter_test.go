package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/rsscn/domain"
)

func createTestDeadCodeResponse() *domain.DeadCodeResponse {
	return &domain.DeadCodeResponse{
		RunID: "run-1",
		Files: []domain.FileDeadCode{
			{
				FilePath: "src/lib.rs",
				Functions: []domain.FunctionDeadCode{
					{
						Name:     "after_return",
						FilePath: "src/lib.rs",
						Findings: []domain.DeadCodeFinding{
							{
								Location:     domain.DeadCodeLocation{FilePath: "src/lib.rs", StartLine: 10, EndLine: 12},
								FunctionName: "after_return",
								Code:         "let y = x + 1;",
								Reason:       "unreachable_after_return",
								Severity:     domain.DeadCodeSeverityCritical,
								Description:  "Code after a return statement can never execute",
								Context:      []string{"return x;"},
							},
							{
								Location:     domain.DeadCodeLocation{FilePath: "src/lib.rs", StartLine: 20, EndLine: 20},
								FunctionName: "after_return",
								Code:         "cleanup();",
								Reason:       "unreachable_after_infinite_loop",
								Severity:     domain.DeadCodeSeverityWarning,
								Description:  "Code after a loop that never breaks",
							},
						},
						CriticalCount: 1,
						WarningCount:  1,
					},
				},
				TotalFindings:     2,
				TotalFunctions:    3,
				AffectedFunctions: 1,
			},
		},
		Summary: domain.DeadCodeSummary{
			TotalFiles:            1,
			TotalFunctions:        3,
			TotalFindings:         2,
			FilesWithDeadCode:     1,
			FunctionsWithDeadCode: 1,
			CriticalFindings:      1,
			WarningFindings:       1,
			FindingsByReason:      map[string]int{"unreachable_after_return": 1, "unreachable_after_infinite_loop": 1},
			TotalNodes:            20,
			DeadNodes:             2,
			OverallDeadRatio:      0.1,
		},
		Warnings: []string{"[src/empty.rs] No functions found in file"},
	}
}

func TestDeadCodeFormatter_Text(t *testing.T) {
	formatter := NewDeadCodeFormatter()
	output, err := formatter.Format(createTestDeadCodeResponse(), domain.OutputFormatText)
	require.NoError(t, err)

	assert.Contains(t, output, "Dead Code Detection Results")
	assert.Contains(t, output, "Files analyzed: 1")
	assert.Contains(t, output, "Dead nodes: 2 of 20 (10.0%)")
	assert.Contains(t, output, "File: src/lib.rs")
	assert.Contains(t, output, "Function: after_return")
	assert.Contains(t, output, "[CRITICAL] Line 10-12: Code after a return statement can never execute (unreachable_after_return)")
	assert.Contains(t, output, "[WARNING] Line 20-20")
	assert.Contains(t, output, "No functions found in file")
	assert.NotContains(t, output, "| return x;", "context is hidden by default")
	assert.NotContains(t, output, ColorRed)
}

func TestDeadCodeFormatter_TextOptions(t *testing.T) {
	formatter := NewDeadCodeFormatter()
	formatter.SetShowContext(true)
	formatter.SetColor(true)

	output, err := formatter.Format(createTestDeadCodeResponse(), domain.OutputFormatText)
	require.NoError(t, err)

	assert.Contains(t, output, "    | return x;")
	assert.Contains(t, output, ColorRed+"CRITICAL"+ColorReset)
	assert.Contains(t, output, ColorYellow+"WARNING"+ColorReset)
}

func TestDeadCodeFormatter_StructuredFormats(t *testing.T) {
	formatter := NewDeadCodeFormatter()
	response := createTestDeadCodeResponse()

	t.Run("json", func(t *testing.T) {
		output, err := formatter.Format(response, domain.OutputFormatJSON)
		require.NoError(t, err)

		var decoded domain.DeadCodeResponse
		require.NoError(t, json.Unmarshal([]byte(output), &decoded))
		assert.Equal(t, "run-1", decoded.RunID)
		assert.Equal(t, "unreachable_after_return", decoded.Files[0].Functions[0].Findings[0].Reason)
		assert.Equal(t, []string{"return x;"}, decoded.Files[0].Functions[0].Findings[0].Context)
	})

	t.Run("yaml", func(t *testing.T) {
		output, err := formatter.Format(response, domain.OutputFormatYAML)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
		assert.Equal(t, "run-1", decoded["run_id"])
		assert.Contains(t, output, "critical_findings: 1")
	})

	t.Run("csv", func(t *testing.T) {
		output, err := formatter.Format(response, domain.OutputFormatCSV)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(output), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "File,Function,Severity,StartLine,EndLine,Reason,Description,Code", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "src/lib.rs,after_return,critical,10,12,unreachable_after_return"))
	})
}

func TestDeadCodeFormatter_Write(t *testing.T) {
	formatter := NewDeadCodeFormatter()

	var buf bytes.Buffer
	require.NoError(t, formatter.Write(createTestDeadCodeResponse(), domain.OutputFormatJSON, &buf))
	assert.True(t, json.Valid(buf.Bytes()))

	buf.Reset()
	require.NoError(t, formatter.Write(createTestDeadCodeResponse(), domain.OutputFormatText, &buf))
	assert.Contains(t, buf.String(), "Dead Code Detection Results")
}

func TestDeadCodeFormatter_UnsupportedFormat(t *testing.T) {
	formatter := NewDeadCodeFormatter()

	_, err := formatter.Format(createTestDeadCodeResponse(), domain.OutputFormatDOT)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeUnsupportedFormat))
}

func TestDeadCodeFormatter_EmptyResponse(t *testing.T) {
	formatter := NewDeadCodeFormatter()
	response := &domain.DeadCodeResponse{}

	output, err := formatter.Format(response, domain.OutputFormatText)
	require.NoError(t, err)
	assert.Contains(t, output, "Total findings: 0")
	assert.NotContains(t, output, "WARNINGS")

	output, err = formatter.Format(response, domain.OutputFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(output, "\n"), "header only")
}
