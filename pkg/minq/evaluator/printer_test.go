package evaluator

import (
	"math"
	"testing"
)

func TestValueToString(t *testing.T) {
	nested := NewDictionary()
	nested.Set("b", &List{Elements: []Object{&Number{Value: 1}}})
	obj := NewDictionary()
	obj.Set("a", &String{Value: "x"})
	obj.Set("n", nested)

	tests := []struct {
		name     string
		obj      Object
		expected string
	}{
		{"string", &String{Value: "hi"}, `"hi"`},
		{"integer", &Number{Value: 7}, "7"},
		{"float", &Number{Value: 2.5}, "2.5"},
		{"null", NULL, "NULL"},
		{"boolean", TRUE, "true"},
		{"function", &Function{}, "[FUNCTION]"},
		{"native function", NewNativeFunction("f", nil), "[FUNCTION]"},
		{"class", &Class{}, "[CLASS]"},
		{"native class", &NativeClass{}, "[CLASS]"},
		{"module", NewModule("m"), "[MODULE]"},
		{"enum", &Enum{}, "[ENUM]"},
		{"object", obj, "{\n  a: \"x\",\n  n: {\n    b: [\n      1\n]\n  }\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueToString(tt.obj, 0); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{-3, "-3"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789, "123456789"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := formatNumber(tt.value); got != tt.expected {
				t.Errorf("formatNumber(%v) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestStructuralHash(t *testing.T) {
	a := NewDictionary()
	a.Set("k", &Number{Value: 1})
	b := NewDictionary()
	b.Set("k", &Number{Value: 1})

	ha, _ := structuralHash(a)
	hb, _ := structuralHash(b)
	if ha != hb {
		t.Errorf("equal objects hash differently")
	}

	h1, _ := structuralHash(&Number{Value: 1})
	h2, _ := structuralHash(&Number{Value: 2})
	if h1 == h2 {
		t.Errorf("different numbers hash equal")
	}

	// keys only contribute their code sum, so anagram keys collide
	c := NewDictionary()
	c.Set("ab", NULL)
	d := NewDictionary()
	d.Set("ba", NULL)
	hc, _ := structuralHash(c)
	hd, _ := structuralHash(d)
	if hc != hd {
		t.Errorf("expected collision for anagram keys")
	}

	if _, ok := structuralHash(&Function{}); ok {
		t.Errorf("functions must not be hashable")
	}
	list := &List{Elements: []Object{NewNativeFunction("f", nil)}}
	if _, ok := structuralHash(list); ok {
		t.Errorf("lists holding functions must not be hashable")
	}
}

func TestValidateArgs(t *testing.T) {
	num := &Number{Value: 1}
	str := &String{Value: "s"}

	tests := []struct {
		name     string
		args     []Object
		rules    []Param
		expected bool
	}{
		{"exact match", []Object{num}, []Param{{Types: Types(NUMBER_OBJ), Count: 1}}, true},
		{"too few", nil, []Param{{Types: Types(NUMBER_OBJ), Count: 1}}, false},
		{"too many", []Object{num, num}, []Param{{Types: Types(NUMBER_OBJ), Count: 1}}, false},
		{"wrong type", []Object{str}, []Param{{Types: Types(NUMBER_OBJ), Count: 1}}, false},
		{"union type", []Object{str}, []Param{{Types: Types(NUMBER_OBJ, STRING_OBJ), Count: 1}}, true},
		{"unlimited none", nil, []Param{{Types: Types(STRING_OBJ), Count: Unlimited}}, true},
		{"unlimited many", []Object{str, str, str}, []Param{{Types: Types(STRING_OBJ), Count: Unlimited}}, true},
		{"unlimited stops at mismatch", []Object{str, num}, []Param{{Types: Types(STRING_OBJ), Count: Unlimited}}, false},
		{
			"sequence",
			[]Object{str, num, num},
			[]Param{{Types: Types(STRING_OBJ), Count: 1}, {Types: Types(NUMBER_OBJ), Count: Unlimited}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateArgs(tt.args, tt.rules...); got != tt.expected {
				t.Errorf("ValidateArgs = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"42", 42},
		{"4.2.1", 4.2},
		{"1e3x", 1000},
		{"1e", 1},
		{"-Infinity", math.Inf(-1)},
		{"+7", 7},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFloatPrefix(tt.input); got != tt.expected {
				t.Errorf("ParseFloatPrefix(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
