package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

func detectDeadCode(t *testing.T, source string) *DeadCodeResult {
	t.Helper()
	cfg := buildCFG(t, source)
	return NewDeadCodeDetector(cfg, WithFilePath("lib.rs")).Detect()
}

func TestDeadCodeDetection(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		reasons   []DeadCodeReason
		startLine int
		endLine   int
	}{
		{
			name: "UnreachableAfterReturn",
			code: `fn foo() -> i32 {
    let x = 1;
    return x;
    let y = 2;
    y
}`,
			reasons:   []DeadCodeReason{ReasonUnreachableAfterReturn},
			startLine: 4,
			endLine:   5,
		},
		{
			name: "UnreachableAfterBothBranchesReturn",
			code: `fn foo(c: bool) -> i32 {
    if c {
        return 1;
    } else {
        return 2;
    }
    3
}`,
			reasons:   []DeadCodeReason{ReasonUnreachableAfterReturn},
			startLine: 7,
			endLine:   7,
		},
		{
			name: "UnreachableInsideBranch",
			code: `fn foo(c: bool) {
    if c {
        return;
        a();
    }
    b();
}`,
			reasons:   []DeadCodeReason{ReasonUnreachableAfterReturn},
			startLine: 4,
			endLine:   4,
		},
		{
			name: "UnreachableAfterInfiniteLoop",
			code: `fn foo() {
    loop {
        tick();
    }
    done();
}`,
			reasons:   []DeadCodeReason{ReasonUnreachableAfterInfiniteLoop},
			startLine: 5,
			endLine:   5,
		},
		{
			name: "UnreachableAfterPanic",
			code: `fn foo() {
    panic!("boom");
    cleanup();
}`,
			reasons:   []DeadCodeReason{ReasonUnreachableAfterDiverging},
			startLine: 3,
			endLine:   3,
		},
		{
			name: "UnreachableAfterProcessExit",
			code: `fn foo() {
    std::process::exit(1);
    cleanup();
}`,
			reasons:   []DeadCodeReason{ReasonUnreachableAfterDiverging},
			startLine: 3,
			endLine:   3,
		},
		{
			name: "NoDeadCode",
			code: `fn foo(c: bool) -> i32 {
    if c {
        return 1;
    }
    2
}`,
		},
		{
			name: "LoopWithBreakIsNotReported",
			code: `fn foo() {
    loop {
        break;
    }
    done();
}`,
		},
		{
			name: "WhileLoopFallsThrough",
			code: `fn foo(c: bool) {
    while c {
        tick();
    }
    done();
}`,
		},
		{
			name: "TryDoesNotEndBlock",
			code: `fn foo() -> Option<i32> {
    let v = g()?;
    Some(v)
}`,
		},
		{
			name: "ReturnAsLastStatement",
			code: `fn foo() -> i32 {
    return 1;
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detectDeadCode(t, tt.code)

			var reasons []DeadCodeReason
			for _, f := range result.Findings {
				reasons = append(reasons, f.Reason)
			}
			assert.Equal(t, tt.reasons, reasons)

			if len(tt.reasons) > 0 {
				finding := result.Findings[0]
				assert.Equal(t, tt.startLine, finding.StartLine)
				assert.Equal(t, tt.endLine, finding.EndLine)
				assert.Equal(t, "lib.rs", finding.FilePath)
				assert.Equal(t, "foo", finding.FunctionName)
				assert.NotEmpty(t, finding.Description)
				assert.Len(t, finding.Context, 1)
			}
		})
	}
}

func TestDeadCodeFindingDetails(t *testing.T) {
	result := detectDeadCode(t, `fn foo() -> i32 {
    return 1;
    let y = 2;
    y
}`)

	require.Len(t, result.Findings, 1)
	finding := result.Findings[0]
	assert.Equal(t, SeverityLevelCritical, finding.Severity)
	assert.Equal(t, "let y = 2;\ny", finding.Code)
	assert.Equal(t, []string{"return 1;"}, finding.Context)
	assert.Regexp(t, `^N\d+$`, finding.NodeID)

	assert.Greater(t, result.DeadNodes, 0)
	assert.Less(t, result.ReachableRatio, 1.0)
	assert.Equal(t, result.TotalNodes, buildCFG(t, `fn foo() -> i32 {
    return 1;
    let y = 2;
    y
}`).Graph.NodeCount())
}

func TestDeadCodeSeverity(t *testing.T) {
	loop := detectDeadCode(t, `fn foo() {
    loop {}
    done();
}`)
	require.Len(t, loop.Findings, 1)
	assert.Equal(t, SeverityLevelWarning, loop.Findings[0].Severity)

	panicked := detectDeadCode(t, `fn foo() {
    unreachable!();
    done();
}`)
	require.Len(t, panicked.Findings, 1)
	assert.Equal(t, SeverityLevelWarning, panicked.Findings[0].Severity)
}

func TestDeadCodeCustomOracle(t *testing.T) {
	cfg := buildCFG(t, `fn foo() {
    fail!("stop");
    done();
}`)

	assert.Empty(t, NewDeadCodeDetector(cfg).Detect().Findings)

	oracle := parser.NewNeverOracle([]string{"fail"}, nil)
	assert.Len(t, NewDeadCodeDetector(cfg, WithOracle(oracle)).Detect().Findings, 1)
}

func TestDeadCodeNilCFG(t *testing.T) {
	result := NewDeadCodeDetector(nil).Detect()
	assert.Empty(t, result.Findings)
	assert.Equal(t, 0, result.TotalNodes)
	assert.False(t, NewDeadCodeDetector(nil).HasDeadCode())
}

func TestDetectInFile(t *testing.T) {
	root := parseRust(t, `
fn clean() -> i32 { 1 }

fn dirty() -> i32 {
    return 1;
    2
}

fn closure_dirty() {
    let f = || {
        return;
        gone();
    };
}
`)
	cfgs, err := NewCFGBuilder().BuildAll(root)
	require.NoError(t, err)

	results := DetectInFile(cfgs, "src/lib.rs", nil)
	require.Len(t, results, 2)
	assert.Equal(t, "dirty", results[0].FunctionName)
	assert.Equal(t, "closure_dirty::{closure#1}", results[1].FunctionName)
	assert.Equal(t, "src/lib.rs", results[1].Findings[0].FilePath)
}

func TestFilterFindingsBySeverity(t *testing.T) {
	findings := []*DeadCodeFinding{
		{Severity: SeverityLevelCritical},
		{Severity: SeverityLevelWarning},
		{Severity: SeverityLevelInfo},
	}

	assert.Len(t, FilterFindingsBySeverity(findings, SeverityLevelInfo), 3)
	assert.Len(t, FilterFindingsBySeverity(findings, SeverityLevelWarning), 2)
	assert.Len(t, FilterFindingsBySeverity(findings, SeverityLevelCritical), 1)
}

func TestGroupFindingsByReason(t *testing.T) {
	findings := []*DeadCodeFinding{
		{Reason: ReasonUnreachableAfterReturn},
		{Reason: ReasonUnreachableAfterReturn},
		{Reason: ReasonUnreachableAfterInfiniteLoop},
	}

	groups := GroupFindingsByReason(findings)
	assert.Len(t, groups[ReasonUnreachableAfterReturn], 2)
	assert.Len(t, groups[ReasonUnreachableAfterInfiniteLoop], 1)
	assert.Empty(t, groups[ReasonUnreachableAfterDiverging])
}
