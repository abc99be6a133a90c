package stdlib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

var serializable = evaluator.Types(
	evaluator.NULL_OBJ, evaluator.BOOLEAN_OBJ, evaluator.NUMBER_OBJ,
	evaluator.STRING_OBJ, evaluator.OBJECT_OBJ, evaluator.LIST_OBJ,
)

func jsonModule() *evaluator.Module {
	m := evaluator.NewModule("json")

	m.Define("serialize", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, evaluator.Param{Types: serializable, Count: 1}) {
			return evaluator.InvalidArgs(env, "serialize")
		}
		out, err := MarshalJSON(args[0])
		if err != nil {
			return fail(env, "FORMAT-0001", "serialize", err)
		}
		return str(string(out))
	})

	m.Define("deserialize", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, evaluator.Param{Types: evaluator.Types(evaluator.STRING_OBJ), Count: 1}) {
			return evaluator.InvalidArgs(env, "deserialize")
		}
		obj, err := UnmarshalJSON([]byte(stringArg(args, 0)))
		if err != nil {
			return fail(env, "FORMAT-0001", "deserialize", err)
		}
		return obj
	})

	return m
}

// MarshalJSON encodes a value as compact JSON. Object keys keep their
// insertion order.
func MarshalJSON(obj evaluator.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, obj evaluator.Object) error {
	switch obj := obj.(type) {
	case *evaluator.Null:
		buf.WriteString("null")
	case *evaluator.Boolean:
		buf.WriteString(strconv.FormatBool(obj.Value))
	case *evaluator.Number:
		if math.IsNaN(obj.Value) || math.IsInf(obj.Value, 0) {
			buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(obj.Value)
		if err != nil {
			return err
		}
		buf.Write(b)
	case *evaluator.String:
		encodeJSONString(buf, obj.Value)
	case *evaluator.Dictionary:
		buf.WriteByte('{')
		for i, key := range obj.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeJSONString(buf, key)
			buf.WriteByte(':')
			if err := encodeJSON(buf, obj.Pairs[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *evaluator.List:
		buf.WriteByte('[')
		for i, el := range obj.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("cannot serialize value of type %s", obj.Type())
	}
	return nil
}

func encodeJSONString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// strings always encode
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// UnmarshalJSON decodes a single JSON document, keeping object key order.
func UnmarshalJSON(data []byte) (evaluator.Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	obj, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return obj, nil
}

func decodeJSON(dec *json.Decoder) (evaluator.Object, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			dict := evaluator.NewDictionary()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				dict.Set(keyTok.(string), val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return dict, nil
		case '[':
			list := &evaluator.List{Elements: []evaluator.Object{}}
			for dec.More() {
				val, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", strings.TrimSpace(v.String()))
	case string:
		return str(v), nil
	case float64:
		return num(v), nil
	case bool:
		return boolean(v), nil
	case nil:
		return evaluator.NULL, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
