package parser

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestVisitorPattern(t *testing.T) {
	source := `
fn hello(name: &str) {
    println!("Hello, {}!", name);
}

impl Greeter {
    fn greet(&self, name: &str) -> bool {
        hello(name);
        for i in 0..5 {
            if i % 2 == 0 {
                return true;
            }
        }
        false
    }
}
`

	parser := New()
	result, err := parser.Parse(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	t.Run("FuncVisitor", func(t *testing.T) {
		count := 0
		visitor := NewFuncVisitor(func(node *Node) bool {
			count++
			return true
		})
		result.AST.Accept(visitor)
		if count == 0 {
			t.Error("FuncVisitor didn't visit any nodes")
		}
	})

	t.Run("FuncVisitor stops descent", func(t *testing.T) {
		count := 0
		result.AST.Accept(NewFuncVisitor(func(node *Node) bool {
			count++
			return node.Type == NodeSourceFile
		}))
		if count != 3 { // file, hello, impl
			t.Errorf("expected 3 visited nodes, got %d", count)
		}
	})

	t.Run("CollectorVisitor", func(t *testing.T) {
		collector := NewCollectorVisitor(func(node *Node) bool {
			return node.Type == NodeFunction
		})
		result.AST.Accept(collector)
		if got := len(collector.GetNodes()); got != 2 {
			t.Errorf("Expected 2 functions, got %d", got)
		}
	})

	t.Run("PrinterVisitor", func(t *testing.T) {
		var buf bytes.Buffer
		result.AST.Accept(NewPrinterVisitor(&buf))
		output := buf.String()
		for _, want := range []string{"SourceFile", "  Function: hello", "Return", "Binary: %"} {
			if !strings.Contains(output, want) {
				t.Errorf("printer output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ValidatorVisitor", func(t *testing.T) {
		validator := NewValidatorVisitor()
		result.AST.Accept(validator)
		if !validator.IsValid() {
			t.Errorf("unexpected validation errors: %v", validator.GetErrors())
		}
	})
}

func TestValidatorVisitorReportsBrokenNodes(t *testing.T) {
	fn := NewNode(NodeFunction)
	orphan := NewNode(NodeBlock)
	fn.Children = append(fn.Children, orphan)

	bin := NewNode(NodeBinary)
	fn.AddChild(bin)

	validator := NewValidatorVisitor()
	fn.Accept(validator)

	if validator.IsValid() {
		t.Fatal("expected validation errors")
	}
	if got := len(validator.GetErrors()); got != 4 {
		t.Errorf("expected 4 errors (name, parent, operand, operator), got %d: %v", got, validator.GetErrors())
	}
}
