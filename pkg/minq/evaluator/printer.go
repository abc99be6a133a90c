package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// ValueToString renders a value the way to_string, console.log and the REPL
// show it. indent is the current nesting depth in spaces.
func ValueToString(obj Object, indent int) string {
	indentation := strings.Repeat(" ", indent)
	nested := strings.Repeat(" ", indent+2)

	switch obj := obj.(type) {
	case *String:
		return `"` + obj.Value + `"`
	case *Number:
		return formatNumber(obj.Value)
	case *Null:
		return "NULL"
	case *Function, *NativeFunction:
		return "[FUNCTION]"
	case *Boolean:
		if obj.Value {
			return "true"
		}
		return "false"
	case *Dictionary:
		props := make([]string, len(obj.Keys))
		for i, key := range obj.Keys {
			props[i] = nested + key + ": " + ValueToString(obj.Pairs[key], indent+2)
		}
		return "{\n" + strings.Join(props, ",\n") + "\n" + indentation + "}"
	case *Class, *NativeClass:
		return "[CLASS]"
	case *List:
		items := make([]string, len(obj.Elements))
		for i, el := range obj.Elements {
			items[i] = nested + ValueToString(el, indent+1)
		}
		return "[\n" + strings.Join(items, ",\n") + "\n]"
	case *Module:
		return "[MODULE]"
	case *Enum:
		return "[ENUM]"
	case *Error:
		return obj.Inspect()
	default:
		return "<UNPRINTABLE>"
	}
}

// formatNumber prints a float64 the way scripts expect: integers without a
// fraction, shortest round-trip digits otherwise, exponent form outside
// [1e-6, 1e21).
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
