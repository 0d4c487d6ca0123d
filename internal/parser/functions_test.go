package parser

import (
	"context"
	"testing"
)

func TestFunctions(t *testing.T) {
	source := `
fn top() {
    let add = |a, b| a + b;
    let twice = |f: fn(i32) -> i32| move |x| f(f(x));
}

mod util {
    pub fn helper() {
        fn inner() {}
    }
}

impl Widget {
    fn draw(&self) {}
}

trait Shape {
    fn area(&self) -> f64;
    fn describe(&self) -> String { String::new() }
}
`
	result, err := New().Parse(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	var names []string
	for _, fn := range Functions(result.AST) {
		names = append(names, fn.Name)
	}

	expected := []string{
		"top",
		"top::{closure#1}",
		"top::{closure#2}",
		"top::{closure#2}::{closure#1}",
		"util::helper",
		"util::helper::inner",
		"Widget::draw",
		"Shape::describe",
	}
	if len(names) != len(expected) {
		t.Fatalf("Functions() = %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Functions()[%d] = %q, want %q", i, names[i], expected[i])
		}
	}
}

func TestFunctionsNilRoot(t *testing.T) {
	if got := Functions(nil); got != nil {
		t.Errorf("Functions(nil) = %v, want nil", got)
	}
}
