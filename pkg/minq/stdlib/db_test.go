package stdlib

import (
	"path/filepath"
	"testing"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

func TestDBSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")
	input := `
import db
var c = db.open("sqlite", ` + quoted(dsn) + `)
c.exec("CREATE TABLE people (id INTEGER, name TEXT, score REAL)")
c.exec("INSERT INTO people VALUES (?, ?, ?)", 1, "ada", 9.5)
c.exec("INSERT INTO people VALUES (?, ?, ?)", 2, "bob", null)
var rows = c.query("SELECT id, name, score FROM people WHERE id > ? ORDER BY id", 0)
var updated = c.exec("UPDATE people SET score = 1 WHERE id = ?", 2)
c.close()
var out = [rows, updated]
out
`
	res := testEval(t, input)
	result, ok := res.value.(*evaluator.List)
	if !ok {
		t.Fatalf("expected List, got %s (warnings %q)", res.value.Inspect(), res.warn.String())
	}
	rows := result.Elements[0].(*evaluator.List)
	if len(rows.Elements) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows.Elements))
	}

	first := rows.Elements[0].(*evaluator.Dictionary)
	expectNumber(t, first.Pairs["id"], 1)
	expectString(t, first.Pairs["name"], "ada")
	expectNumber(t, first.Pairs["score"], 9.5)

	second := rows.Elements[1].(*evaluator.Dictionary)
	expectString(t, second.Pairs["name"], "bob")
	if second.Pairs["score"] != evaluator.NULL {
		t.Errorf("NULL column should read as NULL, got %s", second.Pairs["score"].Inspect())
	}
	if got := len(first.Keys); got != 3 || first.Keys[0] != "id" {
		t.Errorf("columns should keep select order, got %v", first.Keys)
	}

	expectNumber(t, result.Elements[1], 1)
}

func TestDBPoolIsShared(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "shared.db")
	before := dbCache.size()
	input := `
import db
var a = db.open("sqlite3", ` + quoted(dsn) + `)
a.exec("CREATE TABLE t (v TEXT)")
a.exec("INSERT INTO t VALUES (?)", "kept")
var b = db.open("sqlite", ` + quoted(dsn) + `)
b.query("SELECT v FROM t")
`
	res := testEval(t, input)
	rows := res.value.(*evaluator.List)
	expectString(t, rows.Elements[0].(*evaluator.Dictionary).Pairs["v"], "kept")
	if got := dbCache.size(); got != before+1 {
		t.Errorf("expected one new pooled connection, cache size %d -> %d", before, got)
	}
	if err := dbCache.remove("sqlite:" + dsn); err != nil {
		t.Fatal(err)
	}
}

func TestDBErrors(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "errors.db")
	tests := []struct {
		name     string
		input    string
		fragment string
	}{
		{"unknown driver", `db.open("oracle", "x")`, "unsupported driver"},
		{"bad arguments", `db.open("sqlite")`, "open(): invalid arguments"},
		{"bad sql", `db.open("sqlite", ` + quoted(dsn) + `).query("SELEC nothing")`, "query():"},
		{"bad exec", `db.open("sqlite", ` + quoted(dsn) + `).exec("DROP TABLE missing")`, "exec():"},
		{"unsupported argument", `db.open("sqlite", ` + quoted(dsn) + `).exec("SELECT ?", [1])`, "exec(): invalid arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectReported(t, testEval(t, "import db "+tt.input), tt.fragment)
		})
	}
	dbCache.remove("sqlite:" + dsn)
}

func TestSQLArgs(t *testing.T) {
	args := sqlArgs([]evaluator.Object{
		&evaluator.Number{Value: 3},
		&evaluator.Number{Value: 2.5},
		evaluator.TRUE,
		&evaluator.String{Value: "s"},
		evaluator.NULL,
	})
	if v, ok := args[0].(int64); !ok || v != 3 {
		t.Errorf("integral number should pass as int64, got %#v", args[0])
	}
	if v, ok := args[1].(float64); !ok || v != 2.5 {
		t.Errorf("fraction should pass as float64, got %#v", args[1])
	}
	if args[2] != true || args[3] != "s" || args[4] != nil {
		t.Errorf("unexpected conversions %#v", args[2:])
	}
}
