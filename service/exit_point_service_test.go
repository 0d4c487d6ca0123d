package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/domain"
)

const exitSample = `fn classify(x: i32) -> &'static str {
    if x < 0 {
        return "negative";
    }
    if x == 0 {
        return "zero";
    }
    "positive"
}

fn read(path: &str) -> Result<String, Error> {
    let s = std::fs::read_to_string(path)?;
    Ok(s)
}

fn log(msg: &str) {
    println!("{}", msg);
}
`

func exitRequest(paths ...string) domain.ExitPointRequest {
	req := *domain.DefaultExitPointRequest()
	req.Paths = paths
	return req
}

func exitKinds(fn domain.FunctionExitPoints) []string {
	kinds := make([]string, 0, len(fn.ExitPoints))
	for _, ep := range fn.ExitPoints {
		kinds = append(kinds, ep.Kind)
	}
	return kinds
}

func TestExitPointService_Analyze(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "lib.rs", exitSample)

	resp, err := NewExitPointService().Analyze(context.Background(), exitRequest(path))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RunID)
	assert.Empty(t, resp.Errors)
	require.Len(t, resp.Files, 1)
	functions := resp.Files[0].Functions
	require.Len(t, functions, 3)

	classify := functions[0]
	assert.Equal(t, "classify", classify.Name)
	assert.Equal(t, 1, classify.StartLine)
	assert.Equal(t, 9, classify.EndLine)
	assert.Equal(t, []string{"return", "return", "tail_expr"}, exitKinds(classify))
	assert.Equal(t, 2, classify.Returns)
	assert.True(t, classify.HasMultipleReturns)
	assert.Equal(t, 3, classify.ExitPoints[0].StartLine)
	assert.Equal(t, `return "negative"`, classify.ExitPoints[0].Code)
	assert.Equal(t, 8, classify.ExitPoints[2].StartLine)

	read := functions[1]
	assert.Equal(t, "read", read.Name)
	assert.Equal(t, []string{"try", "tail_expr"}, exitKinds(read))
	assert.False(t, read.HasMultipleReturns, "one try and a tail is a single early exit")
	assert.Equal(t, 1, read.Counts["try"])

	logFn := functions[2]
	assert.Equal(t, "log", logFn.Name)
	assert.Equal(t, []string{"tail_statement"}, exitKinds(logFn))
	assert.False(t, logFn.HasMultipleReturns)

	assert.Equal(t, 1, resp.Summary.TotalFiles)
	assert.Equal(t, 3, resp.Summary.TotalFunctions)
	assert.Equal(t, 6, resp.Summary.TotalExitPoints)
	assert.Equal(t, 1, resp.Summary.FunctionsWithMultipleReturns)
	assert.Equal(t, 2, resp.Summary.MaxReturns)
	assert.Equal(t, 2, resp.Summary.ExitPointsByKind["return"])
	assert.Equal(t, 2, resp.Summary.ExitPointsByKind["tail_expr"])
}

func TestExitPointService_Filtering(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "lib.rs", exitSample)

	tests := []struct {
		name       string
		modify     func(*domain.ExitPointRequest)
		wantNames  []string
		wantTotal  int
		wantByKind map[string]int
	}{
		{
			name:      "only multiple",
			modify:    func(r *domain.ExitPointRequest) { r.OnlyMultiple = true },
			wantNames: []string{"classify"},
			wantTotal: 3,
		},
		{
			name:       "without tail exits",
			modify:     func(r *domain.ExitPointRequest) { r.ReportTail = domain.BoolPtr(false) },
			wantNames:  []string{"classify", "read", "log"},
			wantTotal:  3,
			wantByKind: map[string]int{"return": 2, "try": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := exitRequest(path)
			tt.modify(&req)

			resp, err := NewExitPointService().Analyze(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, resp.Files, 1)

			var names []string
			for _, fn := range resp.Files[0].Functions {
				names = append(names, fn.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, resp.Summary.TotalExitPoints)
			if tt.wantByKind != nil {
				assert.Equal(t, tt.wantByKind, resp.Summary.ExitPointsByKind)
			}
			// Function statistics ignore report filters
			assert.Equal(t, 3, resp.Summary.TotalFunctions)
		})
	}
}

func TestExitPointService_SortBy(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "lib.rs", exitSample)

	tests := []struct {
		sortBy domain.ExitPointSortCriteria
		want   []string
	}{
		{domain.ExitPointSortByLocation, []string{"classify", "read", "log"}},
		{domain.ExitPointSortByName, []string{"classify", "log", "read"}},
		{domain.ExitPointSortByExits, []string{"classify", "read", "log"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sortBy), func(t *testing.T) {
			req := exitRequest(path)
			req.SortBy = tt.sortBy

			resp, err := NewExitPointService().Analyze(context.Background(), req)
			require.NoError(t, err)

			var names []string
			for _, fn := range resp.Files[0].Functions {
				names = append(names, fn.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestExitPointService_ErrorsAndWarnings(t *testing.T) {
	dir := t.TempDir()
	good := createTestFile(t, dir, "good.rs", exitSample)
	broken := createTestFile(t, dir, "broken.rs", "fn broken( {")
	empty := createTestFile(t, dir, "empty.rs", "struct Empty;\n")

	resp, err := NewExitPointService().Analyze(context.Background(), exitRequest(good, broken, empty))
	require.NoError(t, err)

	assert.Len(t, resp.Files, 1)
	assert.Equal(t, 2, resp.Summary.TotalFiles)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "Parse error")
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "No functions found")
}

func TestExitPointService_DivergingExit(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "lib.rs", `fn check(x: i32) -> i32 {
    if x < 0 {
        fail!("negative");
    }
    x
}
`)

	svc := NewExitPointService()
	resp, err := svc.Analyze(context.Background(), exitRequest(path))
	require.NoError(t, err)
	assert.Equal(t, []string{"tail_expr"}, exitKinds(resp.Files[0].Functions[0]))

	req := exitRequest(path)
	req.DivergingMacros = []string{"fail"}
	resp, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"diverging", "tail_expr"}, exitKinds(resp.Files[0].Functions[0]))
}

func TestExitPointService_ResultCache(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "lib.rs", exitSample)
	cache := NewResultCache(filepath.Join(dir, "cache"))

	svc := NewExitPointService()
	svc.SetResultCache(cache)

	first, err := svc.Analyze(context.Background(), exitRequest(path))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := svc.Analyze(context.Background(), exitRequest(path))
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)

	// Different oracle settings use a different entry
	req := exitRequest(path)
	req.DivergingMacros = []string{"fail"}
	_, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestExitPointService_AnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "lib.rs", exitSample)

	req := exitRequest(path)
	req.OnlyMultiple = true
	file, err := NewExitPointService().AnalyzeFile(context.Background(), path, req)
	require.NoError(t, err)
	assert.Len(t, file.Functions, 3)

	_, err = NewExitPointService().AnalyzeFile(context.Background(), filepath.Join(dir, "missing.rs"), req)
	assert.True(t, domain.HasCode(err, domain.ErrCodeAnalysisError))
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single line", "  return x  ", "return x"},
		{"multi line", "return match x {\n    _ => 1,\n}", "return match x { ..."},
		{"long line", "return " + strings.Repeat("a", 100), "return " + strings.Repeat("a", 70) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snippet(tt.text)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), maxSnippetLength)
		})
	}
}
