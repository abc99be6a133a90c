package stdlib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"github.com/minqlang/minq/pkg/minq/parser"
)

func quoted(s string) string {
	return `"` + s + `"`
}

func TestFileReadWriteAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	input := `
import file
file.write(` + quoted(path) + `, "a")
file.append(` + quoted(path) + `, "b")
file.read(` + quoted(path) + `)
`
	expectString(t, testEval(t, input).value, "ab")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ab" {
		t.Errorf("file content = %q", data)
	}
}

func TestFileErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	tests := []struct {
		input    string
		fragment string
	}{
		{`file.read(` + quoted(missing) + `)`, "read():"},
		{`file.write(` + quoted(filepath.Join(missing, "x")) + `, "a")`, "write():"},
		{`file.read(1)`, "read(): invalid arguments"},
		{`file.require(` + quoted(missing) + `)`, "require():"},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			expectReported(t, testEval(t, "import file "+tt.input), tt.fragment)
		})
	}
}

func TestFileRequire(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.mq")
	if err := os.WriteFile(lib, []byte("var inner = 2\ninner * base"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := testEval(t, `import file var base = 21 file.require(`+quoted(lib)+`)`)
	expectNumber(t, res.value, 42)

	broken := filepath.Join(dir, "broken.mq")
	if err := os.WriteFile(broken, []byte("var = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	res = testEval(t, `import file file.require(`+quoted(broken)+`)`)
	errObj, ok := res.value.(*evaluator.Error)
	if !ok {
		t.Fatalf("expected Error, got %s", res.value.Inspect())
	}
	if errObj.File != broken {
		t.Errorf("error file = %q, want %q", errObj.File, broken)
	}
}

func TestQueryModuleReference(t *testing.T) {
	res := testEval(t, `minq("@math").then(function(m) { m.sqrt(9) })`)
	expectNumber(t, res.value, 3)

	input := `
var x = 1
minq("@math").then(function(m) { x = m.pow(2, 3) })
x
`
	expectNumber(t, testEval(t, input).value, 8)

	res = testEval(t, `minq("@math").sqrt(16)`)
	expectNumber(t, res.value, 4)
}

func TestQueryDoesNotMutateRegisteredModule(t *testing.T) {
	rt := evaluator.NewRuntime(evaluator.WithWarnLogger(evaluator.NewBufferedLogger()))
	Register(rt, Options{})
	program, err := parser.Parse(`minq("@math")`)
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := evaluator.Eval(program, rt.NewGlobalEnvironment()).(*evaluator.Module)
	if !ok {
		t.Fatal("expected a module reference")
	}
	if _, ok := ref.Members["then"]; !ok {
		t.Errorf("reference should have a then member")
	}
	mod, _ := rt.Modules.Get("math")
	if _, ok := mod.Members["then"]; ok {
		t.Errorf("registered module gained a then member")
	}
}

func TestQueryFileReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ref := quoted("#" + path)
	input := `
minq(` + ref + `).write("{\"a\": 5, ")
minq(` + ref + `).append("\"b\": [1]}")
var data = minq(` + ref + `).json()
var text = minq(` + ref + `).then(function(f) { f.read() })
var out = [data.a, text]
out
`
	res := testEval(t, input)
	list, ok := res.value.(*evaluator.List)
	if !ok {
		t.Fatalf("expected List, got %s (warnings %q)", res.value.Inspect(), res.warn.String())
	}
	expectNumber(t, list.Elements[0], 5)
	expectString(t, list.Elements[1], `{"a": 5, "b": [1]}`)
}

func TestQueryUnknownModuleIsFatal(t *testing.T) {
	res := testEval(t, `minq("@nope") 1`)
	errObj, ok := res.value.(*evaluator.Error)
	if !ok {
		t.Fatalf("expected Error, got %s", res.value.Inspect())
	}
	if errObj.Code != "IMPORT-0001" || !strings.Contains(errObj.Message, "unknown module 'nope'") {
		t.Errorf("unexpected error %s: %s", errObj.Code, errObj.Message)
	}
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		input    string
		fragment string
	}{
		{`minq("?x")`, "invalid query"},
		{`minq("")`, "empty query"},
		{`minq(1)`, "expected exactly one query string"},
		{`minq("@math").then(function() { 1 })`, "at least one parameter"},
		{`minq("@math").then(1)`, "then(): invalid arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectReported(t, testEval(t, tt.input), tt.fragment)
		})
	}
}
