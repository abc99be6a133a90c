package stdlib

import (
	"fmt"
	"math"
	"strconv"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"gopkg.in/yaml.v3"
)

func yamlModule() *evaluator.Module {
	m := evaluator.NewModule("yaml")

	m.Define("serialize", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, evaluator.Param{Types: serializable, Count: 1}) {
			return evaluator.InvalidArgs(env, "serialize")
		}
		out, err := MarshalYAML(args[0])
		if err != nil {
			return fail(env, "FORMAT-0001", "serialize", err)
		}
		return str(string(out))
	})

	m.Define("deserialize", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, evaluator.Param{Types: evaluator.Types(evaluator.STRING_OBJ), Count: 1}) {
			return evaluator.InvalidArgs(env, "deserialize")
		}
		obj, err := UnmarshalYAML([]byte(stringArg(args, 0)))
		if err != nil {
			return fail(env, "FORMAT-0001", "deserialize", err)
		}
		return obj
	})

	return m
}

// MarshalYAML encodes a value as a YAML document, keeping object key order.
func MarshalYAML(obj evaluator.Object) ([]byte, error) {
	node, err := toYAMLNode(obj)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func toYAMLNode(obj evaluator.Object) (*yaml.Node, error) {
	switch obj := obj.(type) {
	case *evaluator.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *evaluator.Boolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(obj.Value)}, nil
	case *evaluator.Number:
		return yamlNumber(obj.Value), nil
	case *evaluator.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: obj.Value}, nil
	case *evaluator.Dictionary:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range obj.Keys {
			val, err := toYAMLNode(obj.Pairs[key])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
		}
		return node, nil
	case *evaluator.List:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range obj.Elements {
			val, err := toYAMLNode(el)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, val)
		}
		return node, nil
	}
	return nil, fmt.Errorf("cannot serialize value of type %s", obj.Type())
}

func yamlNumber(v float64) *yaml.Node {
	switch {
	case math.IsNaN(v):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
	case math.IsInf(v, 1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
	case math.IsInf(v, -1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// UnmarshalYAML decodes the first YAML document. An empty document is null.
func UnmarshalYAML(data []byte) (evaluator.Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return evaluator.NULL, nil
	}
	return fromYAMLNode(doc.Content[0])
}

func fromYAMLNode(node *yaml.Node) (evaluator.Object, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return evaluator.NULL, nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		dict := evaluator.NewDictionary()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			dict.Set(node.Content[i].Value, val)
		}
		return dict, nil
	case yaml.SequenceNode:
		list := &evaluator.List{Elements: make([]evaluator.Object, 0, len(node.Content))}
		for _, child := range node.Content {
			val, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, val)
		}
		return list, nil
	}

	switch node.ShortTag() {
	case "!!null":
		return evaluator.NULL, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return boolean(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return num(f), nil
	}
	return str(node.Value), nil
}
