package evaluator

import "unicode/utf16"

// structuralHash is the equality key used by == and !=. Two values are equal
// when their hashes are equal, collisions included.
func structuralHash(obj Object) (float64, bool) {
	h := 1.0
	for _, c := range string(obj.Type()) {
		h *= float64(c)
	}

	switch obj := obj.(type) {
	case *Boolean:
		if obj.Value {
			h *= 2
		} else {
			h *= 3
		}
	case *String:
		for _, c := range utf16.Encode([]rune(obj.Value)) {
			h *= float64(c)
		}
	case *Dictionary:
		for _, key := range obj.Keys {
			for _, c := range utf16.Encode([]rune(key)) {
				h += float64(c)
			}
			inner, ok := structuralHash(obj.Pairs[key])
			if !ok {
				return 0, false
			}
			h += inner
		}
	case *List:
		for _, el := range obj.Elements {
			inner, ok := structuralHash(el)
			if !ok {
				return 0, false
			}
			h *= inner
		}
	case *Number:
		h += obj.Value
	case *Function, *NativeFunction:
		return 0, false
	}
	return h, true
}
