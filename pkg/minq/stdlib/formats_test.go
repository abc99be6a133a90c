package stdlib

import (
	"math"
	"strings"
	"testing"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

func TestJSONSerialize(t *testing.T) {
	res := testEval(t, `import json json.serialize({ b: 1.5, a: [true, null, "x<y"], c: { d: "q\"uote" } })`)
	expectString(t, res.value, `{"b":1.5,"a":[true,null,"x<y"],"c":{"d":"q\"uote"}}`)
}

func TestJSONDeserialize(t *testing.T) {
	res := testEval(t, `import json json.deserialize("{\"n\": 2, \"list\": [1, \"two\"]}").n`)
	expectNumber(t, res.value, 2)

	obj, err := UnmarshalJSON([]byte(`{"z": 1, "a": {"k": [1, 2]}, "m": null}`))
	if err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	dict := obj.(*evaluator.Dictionary)
	if got := strings.Join(dict.Keys, ","); got != "z,a,m" {
		t.Errorf("keys = %s, want z,a,m", got)
	}
	if dict.Pairs["m"] != evaluator.NULL {
		t.Errorf("null should decode to NULL")
	}
}

func TestJSONErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fragment string
	}{
		{"malformed", `json.deserialize("{\"a\":")`, "deserialize():"},
		{"trailing data", `json.deserialize("1 2")`, "unexpected data after top-level value"},
		{"function at top level", `json.serialize(time)`, "serialize(): invalid arguments"},
		{"nested function", `json.serialize({ f: time })`, "cannot serialize value of type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectReported(t, testEval(t, "import json "+tt.input), tt.fragment)
		})
	}
}

func TestMarshalJSONNonFinite(t *testing.T) {
	list := &evaluator.List{Elements: []evaluator.Object{
		&evaluator.Number{Value: math.NaN()},
		&evaluator.Number{Value: math.Inf(1)},
		&evaluator.Number{Value: 3},
	}}
	out, err := MarshalJSON(list)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[null,null,3]" {
		t.Errorf("got %s", out)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	dict := evaluator.NewDictionary()
	dict.Set("name", &evaluator.String{Value: "minq"})
	dict.Set("flag", &evaluator.String{Value: "true"})
	dict.Set("values", &evaluator.List{Elements: []evaluator.Object{
		&evaluator.Number{Value: 1},
		&evaluator.Number{Value: 2.5},
		evaluator.TRUE,
		evaluator.NULL,
	}})

	out, err := MarshalYAML(dict)
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	back, err := UnmarshalYAML(out)
	if err != nil {
		t.Fatalf("UnmarshalYAML(%q): %v", out, err)
	}
	got, _ := MarshalJSON(back)
	want := `{"name":"minq","flag":"true","values":[1,2.5,true,null]}`
	if string(got) != want {
		t.Errorf("round trip = %s, want %s (yaml %q)", got, want, out)
	}
}

func TestYAMLDeserialize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a: 1\nb: [x, true, null]\n", `{"a":1,"b":["x",true,null]}`},
		{"- 0x10\n- 1e3\n- '5'\n", `[16,1000,"5"]`},
		{"base: &b {k: v}\ncopy: *b\n", `{"base":{"k":"v"},"copy":{"k":"v"}}`},
		{"", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			obj, err := UnmarshalYAML([]byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			got, _ := MarshalJSON(obj)
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	res := testEval(t, `import yaml yaml.deserialize("a: [1")`)
	expectReported(t, res, "deserialize():")
}

func TestMarkdownRender(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`# Hi`, "<h1>Hi</h1>"},
		{`~~gone~~`, "<del>gone</del>"},
		{`<b>raw</b>`, "<b>raw</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			src := strings.ReplaceAll(tt.input, `"`, `\"`)
			res := testEval(t, `import markdown markdown.render("`+src+`")`)
			s, ok := res.value.(*evaluator.String)
			if !ok {
				t.Fatalf("expected String, got %s", res.value.Inspect())
			}
			if !strings.Contains(s.Value, tt.want) {
				t.Errorf("render = %q, want it to contain %q", s.Value, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	res := testEval(t, `import date date.format(date.parse("2024-03-15 10:30:00"), "2006-01-02 15:04")`)
	expectString(t, res.value, "2024-03-15 10:30")

	res = testEval(t, `import date date.format(date.parse("2024-03-15 10:30:00"), "Monday 2 January", "fr_FR")`)
	expectString(t, res.value, "vendredi 15 mars")

	res = testEval(t, `import date date.now()`)
	if n, ok := res.value.(*evaluator.Number); !ok || n.Value <= 0 {
		t.Errorf("now() = %s", res.value.Inspect())
	}
}

func TestDateErrors(t *testing.T) {
	tests := []struct {
		input    string
		fragment string
	}{
		{`date.parse("not a date at all")`, "parse():"},
		{`date.format(0, "2006", "xx_XX")`, "unsupported locale"},
		{`date.format("0", "2006")`, "format(): invalid arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectReported(t, testEval(t, "import date "+tt.input), tt.fragment)
		})
	}
}

func TestLookupLocale(t *testing.T) {
	for _, name := range []string{"fr_FR", "fr-FR", "fr", "DE_de"} {
		if _, ok := lookupLocale(name); !ok {
			t.Errorf("locale %s not found", name)
		}
	}
	if _, ok := lookupLocale("tlh"); ok {
		t.Errorf("unexpected locale tlh")
	}
}

func TestCryptoPasswords(t *testing.T) {
	input := `
import crypto
var h = crypto.hash_password("secret")
var out = [crypto.check_password(h, "secret"), crypto.check_password(h, "guess")]
out
`
	res := testEval(t, input)
	list := res.value.(*evaluator.List)
	expectBool(t, list.Elements[0], true)
	expectBool(t, list.Elements[1], false)

	res = testEval(t, `import crypto crypto.check_password("not-a-hash", "x")`)
	expectReported(t, res, "check_password():")
}
