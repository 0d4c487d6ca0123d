package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

type exitSummary struct {
	kind ExitPointKind
	text string
}

func summarizeExits(points []ExitPoint) []exitSummary {
	var result []exitSummary
	for _, p := range points {
		result = append(result, exitSummary{kind: p.Kind, text: strings.TrimSpace(p.Node.Text)})
	}
	return result
}

func TestProcessExitPoints(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []exitSummary
	}{
		{
			name:     "explicit return",
			source:   `fn f() -> i32 { return 1; }`,
			expected: []exitSummary{{ExitReturn, "return 1"}},
		},
		{
			name:     "tail expression",
			source:   `fn f() -> i32 { 1 + 1 }`,
			expected: []exitSummary{{ExitTailExpr, "1 + 1"}},
		},
		{
			name:     "try statement is not also a tail statement",
			source:   `fn f() -> Result<(), E> { foo()?; }`,
			expected: []exitSummary{{ExitTryExpr, "foo()?"}},
		},
		{
			name:     "tail statement",
			source:   `fn f() { a(); }`,
			expected: []exitSummary{{ExitTailStatement, "a();"}},
		},
		{
			name:     "only the last statement is a tail statement",
			source:   `fn f() { a(); b(); }`,
			expected: []exitSummary{{ExitTailStatement, "b();"}},
		},
		{
			name:     "last let is not a tail statement",
			source:   `fn f() { let x = 1; }`,
			expected: nil,
		},
		{
			name: "early return and tail",
			source: `fn f(x: bool) -> i32 {
    if x { return 1; }
    2
}`,
			expected: []exitSummary{{ExitReturn, "return 1"}, {ExitTailExpr, "2"}},
		},
		{
			name: "if branches in tail position",
			source: `fn f(c: bool) -> i32 {
    if c { a() } else { b() }
}`,
			expected: []exitSummary{{ExitTailExpr, "a()"}, {ExitTailExpr, "b()"}},
		},
		{
			name: "tail statements in branches",
			source: `fn f(c: bool) {
    if c { a(); } else { b(); }
}`,
			expected: []exitSummary{{ExitTailStatement, "a();"}, {ExitTailStatement, "b();"}},
		},
		{
			name: "match arms",
			source: `fn f(x: Option<i32>) -> i32 {
    match x {
        Some(v) => v,
        None => panic!("none"),
    }
}`,
			expected: []exitSummary{{ExitTailExpr, "v"}, {ExitDivergingExpr, `panic!("none")`}},
		},
		{
			name:     "match scrutinee is not a tail",
			source:   `fn f() -> i32 { match g() { _ => 0 } }`,
			expected: []exitSummary{{ExitTailExpr, "0"}},
		},
		{
			name:     "diverging statement",
			source:   `fn f() { panic!("boom"); }`,
			expected: []exitSummary{{ExitDivergingExpr, `panic!("boom")`}},
		},
		{
			name:     "diverging function call is not a tail statement",
			source:   `fn f() { std::process::exit(1); }`,
			expected: nil,
		},
		{
			name:     "tail macro",
			source:   `fn f() -> Vec<i32> { vec![1, 2] }`,
			expected: []exitSummary{{ExitTailExpr, "vec![1, 2]"}},
		},
		{
			name:     "try in tail",
			source:   `fn f() -> Option<i32> { g()? }`,
			expected: []exitSummary{{ExitTryExpr, "g()?"}},
		},
		{
			name:     "tail expression is not searched further",
			source:   `fn f() -> Result<i32, E> { Ok(g(h()?)?) }`,
			expected: []exitSummary{{ExitTailExpr, "Ok(g(h()?)?)"}},
		},
		{
			name:     "nested try is found before the outer try",
			source:   `fn f() -> Result<i32, E> { let v = g(h()?)?; Ok(v) }`,
			expected: []exitSummary{{ExitTryExpr, "h()?"}, {ExitTryExpr, "g(h()?)?"}, {ExitTailExpr, "Ok(v)"}},
		},
		{
			name: "closures and nested functions are skipped",
			source: `fn f() -> i32 {
    let g = |x: i32| { return x; };
    fn inner() -> i32 { return 2; }
    3
}`,
			expected: []exitSummary{{ExitTailExpr, "3"}},
		},
		{
			name: "loop in tail position",
			source: `fn f(c: bool) {
    while c { if done() { return; } }
}`,
			expected: []exitSummary{{ExitTailExpr, "while c { if done() { return; } }"}},
		},
		{
			name: "return inside loop statement",
			source: `fn f(c: bool) {
    while c { if done() { return; } }
    finish();
}`,
			expected: []exitSummary{{ExitReturn, "return"}, {ExitTailStatement, "finish();"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := firstFunction(t, tt.source)
			points := CollectExitPoints(fn, nil)
			assert.Equal(t, tt.expected, summarizeExits(points))
		})
	}
}

func TestProcessExitPointsClosure(t *testing.T) {
	root := parseRust(t, `fn f() { let g = |x: i32| x + 1; }`)
	closure := root.FindByType(parser.NodeClosure)[0]

	points := CollectExitPoints(closure, nil)
	assert.Equal(t, []exitSummary{{ExitTailExpr, "x + 1"}}, summarizeExits(points))
}

// newFunction builds `fn f() { stmts...; tail }` by hand
func newFunction(stmts []*parser.Node, tail *parser.Node) *parser.Node {
	fn := parser.NewNode(parser.NodeFunction)
	fn.Name = "f"
	body := parser.NewNode(parser.NodeBlock)
	fn.Body = fn.AddChild(body)
	for _, stmt := range stmts {
		body.Stmts = append(body.Stmts, body.AddChild(stmt))
	}
	if tail != nil {
		body.Tail = body.AddChild(tail)
	}
	return fn
}

func newExprStmt(expr *parser.Node) *parser.Node {
	stmt := parser.NewNode(parser.NodeExprStmt)
	stmt.Text = expr.Text + ";"
	stmt.Expr = stmt.AddChild(expr)
	stmt.HasSemi = true
	return stmt
}

func newMacroCall(name, text string) *parser.Node {
	mac := parser.NewNode(parser.NodeMacroCall)
	mac.Name = name
	mac.Text = text
	return mac
}

func TestProcessExitPointsTryMacro(t *testing.T) {
	t.Run("last statement", func(t *testing.T) {
		mac := newMacroCall("try", "try!(foo())")
		fn := newFunction([]*parser.Node{newExprStmt(mac)}, nil)

		points := CollectExitPoints(fn, nil)
		require.Len(t, points, 1)
		assert.Equal(t, ExitPoint{Kind: ExitTryExpr, Node: mac}, points[0])
	})

	t.Run("followed by tail", func(t *testing.T) {
		mac := newMacroCall("try", "try!(foo())")
		tail := parser.NewNode(parser.NodeCall)
		tail.Text = "Ok(())"
		fn := newFunction([]*parser.Node{newExprStmt(mac)}, tail)

		assert.Equal(t, []ExitPoint{
			{Kind: ExitTryExpr, Node: mac},
			{Kind: ExitTailExpr, Node: tail},
		}, CollectExitPoints(fn, nil))
	})
}

func TestProcessExitPointsCustomOracle(t *testing.T) {
	fn := firstFunction(t, `fn f() { fail!("x"); }`)

	assert.Equal(t, []exitSummary{{ExitTailStatement, `fail!("x");`}},
		summarizeExits(CollectExitPoints(fn, nil)))

	oracle := parser.NewNeverOracle([]string{"fail"}, nil)
	assert.Equal(t, []exitSummary{{ExitDivergingExpr, `fail!("x")`}},
		summarizeExits(CollectExitPoints(fn, oracle)))
}

func TestProcessExitPointsNil(t *testing.T) {
	called := false
	ProcessExitPoints(nil, nil, func(ExitPoint) { called = true })
	ProcessExitPoints(parser.NewNode(parser.NodeFunction), nil, func(ExitPoint) { called = true })
	assert.False(t, called)
}

func TestExitPointKindString(t *testing.T) {
	assert.Equal(t, "return", ExitReturn.String())
	assert.Equal(t, "try", ExitTryExpr.String())
	assert.Equal(t, "diverging", ExitDivergingExpr.String())
	assert.Equal(t, "tail_expr", ExitTailExpr.String())
	assert.Equal(t, "tail_statement", ExitTailStatement.String())
	assert.Equal(t, "unknown", ExitPointKind(42).String())
}

func TestExitPointAnalyzer(t *testing.T) {
	root := parseRust(t, `
fn single() -> i32 { 1 }

fn early(x: i32) -> i32 {
    if x < 0 { return 0; }
    x
}

fn tries() -> Result<i32, E> {
    let a = g()?;
    let b = h()?;
    Ok(a + b)
}

fn one_try() -> Result<i32, E> {
    Ok(g()?)
}
`)

	analyzer := NewExitPointAnalyzer(nil)
	summaries := analyzer.AnalyzeFile(root)
	require.Len(t, summaries, 4)

	byName := make(map[string]*ExitPointSummary)
	for _, s := range summaries {
		byName[s.FunctionName] = s
	}

	assert.False(t, byName["single"].HasMultipleReturns)
	assert.Equal(t, 1, byName["single"].Counts[ExitTailExpr])

	assert.True(t, byName["early"].HasMultipleReturns)
	assert.Equal(t, 1, byName["early"].Returns())

	assert.True(t, byName["tries"].HasMultipleReturns)
	assert.Equal(t, 2, byName["tries"].Counts[ExitTryExpr])

	// exits nested in the tail expression are not searched
	assert.False(t, byName["one_try"].HasMultipleReturns)
	assert.Len(t, byName["one_try"].ExitPoints, 1)
}
